package seed

import (
	"context"
	"testing"
	"time"

	"foodorder/internal/store/memory"
)

func TestRunSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := Run(ctx, s, now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Run(ctx, s, now); err != nil {
		t.Fatalf("second run: %v", err)
	}

	foods, _ := s.CountFoods(ctx)
	if foods != int64(len(sampleFoods())) {
		t.Errorf("expected %d foods, got %d", len(sampleFoods()), foods)
	}
	promos, _ := s.CountPromoCodes(ctx)
	if promos != 3 {
		t.Errorf("expected 3 promo codes, got %d", promos)
	}

	welcome, err := s.FindRedeemable(ctx, "WELCOME", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("WELCOME must be redeemable: %v", err)
	}
	if welcome.MaximumDiscount == nil || *welcome.MaximumDiscount != 50 {
		t.Errorf("unexpected WELCOME cap %v", welcome.MaximumDiscount)
	}
	if _, err := s.FindRedeemable(ctx, "SAVE50", now.Add(16*day)); err == nil {
		t.Error("SAVE50 must expire after 15 days")
	}
}
