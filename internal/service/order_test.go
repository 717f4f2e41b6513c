package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/store"
	"foodorder/internal/store/memory"
)

type fixture struct {
	store *memory.Store
	svc   *OrderService
}

func newFixture(t *testing.T, promos ...model.PromoCode) *fixture {
	t.Helper()
	s := memory.New()
	seedPromos(t, s, promos...)
	svc := NewOrderService(s, s, NewPricingService(s))
	svc.now = func() time.Time { return now }
	return &fixture{store: s, svc: svc}
}

var address = &model.Address{Street: "Bole Rd 1", City: "Addis Ababa", State: "AA", ZipCode: "1000", Country: "ET"}

func cart() []model.CartItem {
	return []model.CartItem{
		{ID: "food_a", Name: "Margherita", Price: 120, Quantity: 2, RequiresCutlery: true},
		{ID: "food_b", Name: "Lemonade", Price: 60, Quantity: 1},
	}
}

func (f *fixture) createOrder(t *testing.T, user string, status model.OrderStatus) *model.Order {
	t.Helper()
	o, err := f.svc.Create(context.Background(), user, CreateOrderInput{
		Items:         cart(),
		DeliveryType:  model.DeliveryTypePickup,
		PaymentMethod: model.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if status != model.OrderStatusPending {
		o.Status = status
		if _, err := f.store.UpdateOrderStatus(context.Background(), store.StatusUpdate{
			OrderID: o.ID, Status: status, At: now,
		}); err != nil {
			t.Fatalf("force status: %v", err)
		}
	}
	return o
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t, welcome10)

	o, err := f.svc.Create(context.Background(), "alice", CreateOrderInput{
		Items:           cart(),
		DeliveryFee:     20,
		DeliveryType:    model.DeliveryTypeDelivery,
		DeliveryAddress: address,
		PaymentMethod:   model.PaymentMethodCard,
		PromoCode:       "welcome10",
		CutleryCount:    2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(o.ID, "order_") {
		t.Errorf("unexpected id %q", o.ID)
	}
	if o.TotalPrice != 300 || o.Discount != 30 || o.DeliveryFee != 20 || o.FinalTotal != 290 {
		t.Errorf("unexpected totals %v/%v/%v/%v", o.TotalPrice, o.Discount, o.DeliveryFee, o.FinalTotal)
	}
	if o.Status != model.OrderStatusPending || o.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("unexpected initial state %s/%s", o.Status, o.PaymentStatus)
	}
	if o.PromoCode != "WELCOME10" {
		t.Errorf("expected applied code WELCOME10, got %q", o.PromoCode)
	}
	if !o.EstimatedDeliveryTime.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("unexpected ETA %v", o.EstimatedDeliveryTime)
	}
	if o.ActualDeliveryTime != nil || o.Rating != nil {
		t.Error("new order must not carry delivery time or rating")
	}

	stored, err := f.store.GetUserOrder(context.Background(), "alice", o.ID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if stored.FinalTotal != 290 {
		t.Errorf("stored final total %v", stored.FinalTotal)
	}
	p, _ := f.store.GetPromoCode(context.Background(), "WELCOME10")
	if p.UsedCount != 1 {
		t.Errorf("expected usedCount 1, got %d", p.UsedCount)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		in      CreateOrderInput
		wantErr error
	}{
		{"unauthenticated", "", CreateOrderInput{Items: cart(), DeliveryType: model.DeliveryTypePickup}, ErrUnauthenticated},
		{"empty cart", "alice", CreateOrderInput{DeliveryType: model.DeliveryTypePickup}, ErrEmptyCart},
		{"delivery without address", "alice", CreateOrderInput{Items: cart(), DeliveryType: model.DeliveryTypeDelivery}, ErrDeliveryAddressRequired},
		{"delivery with partial address", "alice", CreateOrderInput{
			Items: cart(), DeliveryType: model.DeliveryTypeDelivery, DeliveryAddress: &model.Address{Street: "x"},
		}, ErrDeliveryAddressRequired},
		{"bad promo", "alice", CreateOrderInput{Items: cart(), DeliveryType: model.DeliveryTypePickup, PromoCode: "NOPE"}, ErrInvalidOrExpiredPromoCode},
		{"minimum not met", "alice", CreateOrderInput{
			Items: []model.CartItem{{ID: "food_a", Price: 40, Quantity: 2}}, DeliveryType: model.DeliveryTypePickup, PromoCode: "WELCOME10",
		}, ErrMinimumOrderValueNotMet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, welcome10)
			_, err := f.svc.Create(context.Background(), tt.user, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			orders, _, _ := f.store.ListOrders(context.Background(), model.OrderFilter{UserID: "alice", Page: 1, Limit: 10})
			if len(orders) != 0 {
				t.Errorf("no order may be stored on failure, found %d", len(orders))
			}
			p, _ := f.store.GetPromoCode(context.Background(), "WELCOME10")
			if p.UsedCount != 0 {
				t.Errorf("no redemption on failure, usedCount=%d", p.UsedCount)
			}
		})
	}
}

type failingOrders struct {
	*memory.Store
}

func (failingOrders) CreateOrder(context.Context, *model.Order) error {
	return errors.New("disk full")
}

func TestCreateOrderRollsBackRedemption(t *testing.T) {
	s := memory.New()
	seedPromos(t, s, welcome10)
	svc := NewOrderService(failingOrders{s}, s, NewPricingService(s))
	svc.now = func() time.Time { return now }

	_, err := svc.Create(context.Background(), "alice", CreateOrderInput{
		Items: cart(), DeliveryType: model.DeliveryTypePickup, PromoCode: "WELCOME10",
	})
	if !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got %v", err)
	}
	p, _ := s.GetPromoCode(context.Background(), "WELCOME10")
	if p.UsedCount != 0 {
		t.Errorf("redemption must roll back with the insert, usedCount=%d", p.UsedCount)
	}
}

func TestCancelOrder(t *testing.T) {
	cancellable := []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing,
		model.OrderStatusReady, model.OrderStatusOutForDelivery,
	}
	for _, status := range cancellable {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			o := f.createOrder(t, "alice", status)

			got, err := f.svc.Cancel(context.Background(), "alice", o.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != model.OrderStatusCancelled {
				t.Errorf("expected cancelled, got %s", got.Status)
			}
		})
	}

	for _, status := range []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			o := f.createOrder(t, "alice", status)

			if _, err := f.svc.Cancel(context.Background(), "alice", o.ID); !errors.Is(err, ErrInvalidCancellation) {
				t.Errorf("expected ErrInvalidCancellation, got %v", err)
			}
		})
	}
}

func TestCancelTwice(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, "alice", model.OrderStatusPreparing)

	if _, err := f.svc.Cancel(context.Background(), "alice", o.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "alice", o.ID); !errors.Is(err, ErrInvalidCancellation) {
		t.Errorf("second cancel: expected ErrInvalidCancellation, got %v", err)
	}
}

func TestCancelForeignOrder(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, "alice", model.OrderStatusPending)

	if _, err := f.svc.Cancel(context.Background(), "bob", o.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "alice", "order_missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	delivered := now.Add(25 * time.Minute)

	t.Run("any open status is accepted", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusReady)

		got, err := f.svc.SetStatus(context.Background(), o.ID, model.OrderStatusConfirmed, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != model.OrderStatusConfirmed {
			t.Errorf("expected confirmed, got %s", got.Status)
		}
	})

	t.Run("delivered stamps delivery time", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusOutForDelivery)

		got, err := f.svc.SetStatus(context.Background(), o.ID, model.OrderStatusDelivered, &delivered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ActualDeliveryTime == nil || !got.ActualDeliveryTime.Equal(delivered) {
			t.Errorf("unexpected delivery time %v", got.ActualDeliveryTime)
		}
	})

	t.Run("delivery time ignored for other statuses", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusPending)

		got, err := f.svc.SetStatus(context.Background(), o.ID, model.OrderStatusPreparing, &delivered)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ActualDeliveryTime != nil {
			t.Errorf("delivery time must only be set on delivered, got %v", got.ActualDeliveryTime)
		}
	})

	tests := []struct {
		name    string
		from    model.OrderStatus
		to      model.OrderStatus
		at      *time.Time
		wantErr error
	}{
		{"delivered without time", model.OrderStatusReady, model.OrderStatusDelivered, nil, ErrDeliveryTimeRequired},
		{"unknown status", model.OrderStatusReady, model.OrderStatus("eaten"), nil, ErrInvalidStatus},
		{"leave delivered", model.OrderStatusDelivered, model.OrderStatusPending, nil, ErrInvalidStatusTransition},
		{"leave cancelled", model.OrderStatusCancelled, model.OrderStatusConfirmed, nil, ErrInvalidStatusTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			o := f.createOrder(t, "alice", tt.from)

			if _, err := f.svc.SetStatus(context.Background(), o.ID, tt.to, tt.at); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("missing order", func(t *testing.T) {
		f := newFixture(t)
		if _, err := f.svc.SetStatus(context.Background(), "order_missing", model.OrderStatusReady, nil); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestRateOrder(t *testing.T) {
	rating := RateInput{Food: 5, Delivery: 4, Overall: 5, Comment: "hot and fast"}

	t.Run("pending order is not found", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusPending)

		if _, err := f.svc.Rate(context.Background(), "alice", o.ID, rating); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("foreign order is not found", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusDelivered)

		if _, err := f.svc.Rate(context.Background(), "bob", o.ID, rating); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusDelivered)

		bad := rating
		bad.Delivery = 6
		if _, err := f.svc.Rate(context.Background(), "alice", o.ID, bad); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("expected ErrInvalidRating, got %v", err)
		}
	})

	t.Run("delivered order overwrites rating", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusDelivered)

		if _, err := f.svc.Rate(context.Background(), "alice", o.ID, rating); err != nil {
			t.Fatalf("first rating: %v", err)
		}
		second := RateInput{Food: 2, Delivery: 3, Overall: 2}
		got, err := f.svc.Rate(context.Background(), "alice", o.ID, second)
		if err != nil {
			t.Fatalf("second rating: %v", err)
		}
		if got.Rating == nil || got.Rating.Food != 2 || got.Rating.Comment != "" {
			t.Errorf("expected rating to be replaced, got %+v", got.Rating)
		}
	})

	t.Run("fractional scores are kept", func(t *testing.T) {
		f := newFixture(t)
		o := f.createOrder(t, "alice", model.OrderStatusDelivered)

		got, err := f.svc.Rate(context.Background(), "alice", o.ID, RateInput{Food: 4.5, Delivery: 3.5, Overall: 4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Rating.Food != 4.5 || got.Rating.Delivery != 3.5 {
			t.Errorf("unexpected rating %+v", got.Rating)
		}

		bad := RateInput{Food: 0.5, Delivery: 3, Overall: 3}
		if _, err := f.svc.Rate(context.Background(), "alice", o.ID, bad); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("expected ErrInvalidRating for 0.5, got %v", err)
		}
	})
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.svc.now = func() time.Time { return now.Add(time.Duration(i) * time.Minute) }
		f.createOrder(t, "alice", model.OrderStatusPending)
	}
	f.createOrder(t, "bob", model.OrderStatusPending)

	page, err := f.svc.List(context.Background(), model.OrderFilter{UserID: "alice", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 3 || len(page.Orders) != 2 {
		t.Fatalf("expected 2 of 3 orders, got %d of %d", len(page.Orders), page.Total)
	}
	if !page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt) {
		t.Error("orders must be listed newest first")
	}

	if _, err := f.svc.List(context.Background(), model.OrderFilter{UserID: "alice", Status: "lost", Page: 1, Limit: 2}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}
