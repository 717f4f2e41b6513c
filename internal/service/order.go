package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"foodorder/internal/id"
	"foodorder/internal/model"
	"foodorder/internal/store"
)

const deliveryWindow = 30 * time.Minute

type CreateOrderInput struct {
	Items               []model.CartItem
	DeliveryFee         float64
	DeliveryType        model.DeliveryType
	DeliveryAddress     *model.Address
	PaymentMethod       model.PaymentMethod
	PromoCode           string
	CutleryCount        int
	SpecialInstructions string
}

type RateInput struct {
	Food     float64
	Delivery float64
	Overall  float64
	Comment  string
}

type OrderPage struct {
	Orders []model.Order
	Total  int64
	Page   int
	Limit  int
}

type OrderService struct {
	orders  store.OrderStore
	tx      store.Transactor
	pricing *PricingService
	now     func() time.Time
}

func NewOrderService(orders store.OrderStore, tx store.Transactor, pricing *PricingService) *OrderService {
	return &OrderService{
		orders:  orders,
		tx:      tx,
		pricing: pricing,
		now:     time.Now,
	}
}

// Subtotal sums price times quantity over the cart.
func Subtotal(items []model.CartItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.InexactFloat64()
}

func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if in.DeliveryType == model.DeliveryTypeDelivery && !in.DeliveryAddress.Complete() {
		return nil, ErrDeliveryAddressRequired
	}

	now := s.now().UTC()
	subtotal := Subtotal(in.Items)

	order := &model.Order{
		ID:                    id.NewOrder(),
		UserID:                userID,
		Items:                 in.Items,
		TotalPrice:            subtotal,
		Status:                model.OrderStatusPending,
		DeliveryType:          in.DeliveryType,
		PaymentMethod:         in.PaymentMethod,
		PaymentStatus:         model.PaymentStatusPending,
		CutleryCount:          in.CutleryCount,
		SpecialInstructions:   in.SpecialInstructions,
		EstimatedDeliveryTime: now.Add(deliveryWindow),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if in.DeliveryType == model.DeliveryTypeDelivery {
		order.DeliveryAddress = in.DeliveryAddress
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		quote, err := s.pricing.PriceOrder(ctx, subtotal, in.DeliveryFee, in.PromoCode, now)
		if err != nil {
			return err
		}
		order.Discount = quote.Discount
		order.DeliveryFee = quote.DeliveryFee
		order.FinalTotal = quote.FinalTotal
		order.PromoCode = quote.PromoCode

		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return storeFailure("insert order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	o, err := s.orders.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, s.lookupErr("get order", err)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, f model.OrderFilter) (*OrderPage, error) {
	if f.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	orders, total, err := s.orders.ListOrders(ctx, f)
	if err != nil {
		return nil, storeFailure("list orders", err)
	}
	return &OrderPage{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// SetStatus moves an order to any enumerated status. Orders in a final
// state stay there.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status model.OrderStatus, deliveredAt *time.Time) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var actual *time.Time
	switch status {
	case model.OrderStatusDelivered:
		if deliveredAt == nil || deliveredAt.IsZero() {
			return nil, ErrDeliveryTimeRequired
		}
		t := deliveredAt.UTC()
		actual = &t
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing,
		model.OrderStatusReady, model.OrderStatusOutForDelivery, model.OrderStatusCancelled:
	}

	current, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, s.lookupErr("get order", err)
	}
	if current.Status.Terminal() {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID:            orderID,
		Status:             status,
		ActualDeliveryTime: actual,
		From:               openStatuses,
		At:                 s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, storeFailure("update order status", err)
	}
	return updated, nil
}

var openStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusOutForDelivery,
}

func (s *OrderService) Cancel(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	current, err := s.orders.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, s.lookupErr("get order", err)
	}
	if current.Status.Terminal() {
		return nil, ErrInvalidCancellation
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, store.StatusUpdate{
		OrderID: orderID,
		UserID:  userID,
		Status:  model.OrderStatusCancelled,
		From:    openStatuses,
		At:      s.now().UTC(),
	})
	if err != nil {
		// Another request finalised the order between the read and the write.
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCancellation
		}
		return nil, storeFailure("cancel order", err)
	}
	return updated, nil
}

// Rate replaces the rating of a delivered order. Missing, foreign and
// undelivered orders all report ErrOrderNotFound.
func (s *OrderService) Rate(ctx context.Context, userID, orderID string, in RateInput) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	for _, v := range []float64{in.Food, in.Delivery, in.Overall} {
		if v < 1 || v > 5 {
			return nil, ErrInvalidRating
		}
	}

	rating := model.Rating{
		Food:     in.Food,
		Delivery: in.Delivery,
		Overall:  in.Overall,
		Comment:  in.Comment,
	}
	updated, err := s.orders.RateOrder(ctx, userID, orderID, rating, s.now().UTC())
	if err != nil {
		return nil, s.lookupErr("rate order", err)
	}
	return updated, nil
}

func (s *OrderService) lookupErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	return storeFailure(op, err)
}
