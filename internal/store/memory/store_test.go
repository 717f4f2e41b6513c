package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func promo(code string, used, limit int) *model.PromoCode {
	return &model.PromoCode{
		ID:            "promo_" + code,
		Code:          code,
		DiscountType:  model.DiscountTypeFixed,
		DiscountValue: 10,
		UsageLimit:    limit,
		UsedCount:     used,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		IsActive:      true,
	}
}

func TestFindRedeemable(t *testing.T) {
	ctx := context.Background()
	s := New()

	inactive := promo("OFF", 0, 10)
	inactive.IsActive = false
	expired := promo("OLD", 0, 10)
	expired.ValidUntil = now.Add(-time.Minute)

	for _, p := range []*model.PromoCode{promo("OK", 0, 10), promo("FULL", 10, 10), inactive, expired} {
		if err := s.CreatePromoCode(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.Code, err)
		}
	}

	tests := []struct {
		code    string
		wantErr bool
	}{
		{"OK", false},
		{"FULL", true},
		{"OFF", true},
		{"OLD", true},
		{"MISSING", true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := s.FindRedeemable(ctx, tt.code, now)
			if tt.wantErr && !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	list, err := s.ListRedeemable(ctx, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Code != "OK" {
		t.Errorf("expected only OK to be redeemable, got %+v", list)
	}
}

func TestRedeemStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreatePromoCode(ctx, promo("RACE", 0, 5)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Redeem(ctx, "RACE", now); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Errorf("expected 5 successful redemptions, got %d", succeeded)
	}
	p, _ := s.GetPromoCode(ctx, "RACE")
	if p.UsedCount != 5 {
		t.Errorf("expected usedCount 5, got %d", p.UsedCount)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreatePromoCode(ctx, promo("TX", 0, 5)); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Redeem(ctx, "TX", now); err != nil {
			return err
		}
		if err := s.CreateOrder(ctx, &model.Order{ID: "order_1", UserID: "u"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	p, _ := s.GetPromoCode(ctx, "TX")
	if p.UsedCount != 0 {
		t.Errorf("expected usedCount rolled back to 0, got %d", p.UsedCount)
	}
	if _, err := s.GetOrder(ctx, "order_1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected order to be rolled back, got %v", err)
	}
}

func TestWithinTxRollbackKeepsOutsideWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreatePromoCode(ctx, promo("TX", 0, 5)); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOrder(ctx, &model.Order{ID: "order_1", UserID: "alice", Status: model.OrderStatusPending}); err != nil {
		t.Fatal(err)
	}

	inTx := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")
	txErr := make(chan error, 1)
	go func() {
		txErr <- s.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.Redeem(ctx, "TX", now); err != nil {
				return err
			}
			if err := s.CreateOrder(ctx, &model.Order{ID: "order_2", UserID: "bob"}); err != nil {
				return err
			}
			close(inTx)
			<-release
			return boom
		})
	}()

	<-inTx
	if _, err := s.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID: "order_1", Status: model.OrderStatusCancelled, At: now,
	}); err != nil {
		t.Fatalf("update outside tx: %v", err)
	}
	if err := s.Redeem(ctx, "TX", now); err != nil {
		t.Fatalf("redeem outside tx: %v", err)
	}
	close(release)

	if err := <-txErr; !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	o, err := s.GetOrder(ctx, "order_1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != model.OrderStatusCancelled {
		t.Errorf("expected committed cancel to survive rollback, got %s", o.Status)
	}
	p, _ := s.GetPromoCode(ctx, "TX")
	if p.UsedCount != 1 {
		t.Errorf("expected only the tx redemption rolled back, usedCount=%d", p.UsedCount)
	}
	if _, err := s.GetOrder(ctx, "order_2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected order created in tx to be rolled back, got %v", err)
	}
}

func TestUpdateOrderStatusConditions(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := &model.Order{ID: "order_1", UserID: "alice", Status: model.OrderStatusPreparing}
	if err := s.CreateOrder(ctx, o); err != nil {
		t.Fatal(err)
	}

	_, err := s.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID: "order_1", UserID: "bob", Status: model.OrderStatusCancelled, At: now,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}

	_, err = s.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID: "order_1", Status: model.OrderStatusCancelled,
		From: []model.OrderStatus{model.OrderStatusPending}, At: now,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unmatched status, got %v", err)
	}

	got, err := s.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID: "order_1", UserID: "alice", Status: model.OrderStatusCancelled, At: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.OrderStatusCancelled || !got.UpdatedAt.Equal(now) {
		t.Errorf("unexpected order after update: %+v", got)
	}
}

func TestListFoods(t *testing.T) {
	ctx := context.Background()
	s := New()

	foods := []model.Food{
		{ID: "food_1", Name: "Margherita", Price: 250, Category: "pizza", Availability: true, IsVegetarian: true, CreatedAt: now},
		{ID: "food_2", Name: "Burger", Price: 180, Category: "burger", Availability: true, CreatedAt: now.Add(time.Minute)},
		{ID: "food_3", Name: "Salad", Price: 120, Category: "salad", Availability: false, IsVegetarian: true, CreatedAt: now},
		{ID: "food_4", Name: "Pepperoni", Price: 300, Category: "pizza", Availability: true, CreatedAt: now.Add(2 * time.Minute)},
	}
	for i := range foods {
		if err := s.CreateFood(ctx, &foods[i]); err != nil {
			t.Fatal(err)
		}
	}

	maxPrice := 260.0
	tests := []struct {
		name    string
		filter  model.FoodFilter
		wantIDs []string
		total   int64
	}{
		{"default newest first", model.FoodFilter{Page: 1, Limit: 10}, []string{"food_4", "food_2", "food_1"}, 3},
		{"category", model.FoodFilter{Category: "pizza", Page: 1, Limit: 10}, []string{"food_4", "food_1"}, 2},
		{"vegetarian skips unavailable", model.FoodFilter{Vegetarian: true, Page: 1, Limit: 10}, []string{"food_1"}, 1},
		{"price asc", model.FoodFilter{SortBy: "price", SortAsc: true, Page: 1, Limit: 10}, []string{"food_2", "food_1", "food_4"}, 3},
		{"max price", model.FoodFilter{MaxPrice: &maxPrice, SortBy: "name", SortAsc: true, Page: 1, Limit: 10}, []string{"food_2", "food_1"}, 2},
		{"second page", model.FoodFilter{Page: 2, Limit: 2}, []string{"food_1"}, 3},
		{"search", model.FoodFilter{Search: "pepp", Page: 1, Limit: 10}, []string{"food_4"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.ListFoods(ctx, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, total)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d foods, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}

	categories, err := s.FoodCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 3 || categories[0] != "burger" || categories[2] != "salad" {
		t.Errorf("unexpected categories %v", categories)
	}
}
