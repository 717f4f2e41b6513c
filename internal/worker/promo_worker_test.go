package worker

import (
	"context"
	"testing"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/service"
	"foodorder/internal/store/memory"
)

func TestSweepDeactivatesStaleCodes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	s := memory.New()

	promos := []model.PromoCode{
		{ID: "promo_1", Code: "LIVE", DiscountType: model.DiscountTypeFixed, DiscountValue: 5,
			UsageLimit: 10, IsActive: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour)},
		{ID: "promo_2", Code: "OLD", DiscountType: model.DiscountTypeFixed, DiscountValue: 5,
			UsageLimit: 10, IsActive: true, ValidFrom: now.Add(-48 * time.Hour), ValidUntil: now.Add(-time.Hour)},
		{ID: "promo_3", Code: "SPENT", DiscountType: model.DiscountTypeFixed, DiscountValue: 5,
			UsageLimit: 2, UsedCount: 2, IsActive: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour)},
	}
	for i := range promos {
		if err := s.CreatePromoCode(ctx, &promos[i]); err != nil {
			t.Fatal(err)
		}
	}

	w := NewPromoExpiryWorker(service.NewPricingService(s), time.Minute)
	w.now = func() time.Time { return now }
	w.sweep(ctx)

	want := map[string]bool{"LIVE": true, "OLD": false, "SPENT": false}
	for code, active := range want {
		p, err := s.GetPromoCode(ctx, code)
		if err != nil {
			t.Fatalf("get %s: %v", code, err)
		}
		if p.IsActive != active {
			t.Errorf("%s: expected active=%v, got %v", code, active, p.IsActive)
		}
	}

	n, err := s.DeactivateExpired(ctx, now)
	if err != nil || n != 0 {
		t.Errorf("second sweep must be a no-op, got %d, %v", n, err)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewPromoExpiryWorker(service.NewPricingService(memory.New()), time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
