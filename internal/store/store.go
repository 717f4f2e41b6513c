package store

import (
	"context"
	"errors"
	"time"

	"foodorder/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type FoodStore interface {
	ListFoods(ctx context.Context, f model.FoodFilter) ([]model.Food, int64, error)
	SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error)
	FoodCategories(ctx context.Context) ([]string, error)
	GetFood(ctx context.Context, foodID string) (*model.Food, error)
	CreateFood(ctx context.Context, f *model.Food) error
	UpdateFood(ctx context.Context, f *model.Food) error
	DeleteFood(ctx context.Context, foodID string) error
	CountFoods(ctx context.Context) (int64, error)
}

type PromoCodeStore interface {
	// FindRedeemable returns the code if it is active, inside its validity
	// window at now and not exhausted. ErrNotFound otherwise.
	FindRedeemable(ctx context.Context, code string, now time.Time) (*model.PromoCode, error)
	ListRedeemable(ctx context.Context, now time.Time) ([]model.PromoCode, error)
	// Redeem increments usedCount by one, only if the code is still
	// redeemable at now. ErrNotFound when the condition no longer holds.
	Redeem(ctx context.Context, code string, now time.Time) error
	GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error)
	CreatePromoCode(ctx context.Context, p *model.PromoCode) error
	CountPromoCodes(ctx context.Context) (int64, error)
	// DeactivateExpired switches off active codes that are past validUntil
	// or exhausted at now, and returns how many changed.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// StatusUpdate is a conditional status write. An empty UserID matches any
// owner; an empty From matches any current status.
type StatusUpdate struct {
	OrderID            string
	UserID             string
	Status             model.OrderStatus
	ActualDeliveryTime *time.Time
	From               []model.OrderStatus
	At                 time.Time
}

func (u StatusUpdate) Matches(o *model.Order) bool {
	if o.ID != u.OrderID {
		return false
	}
	if u.UserID != "" && o.UserID != u.UserID {
		return false
	}
	if len(u.From) == 0 {
		return true
	}
	for _, s := range u.From {
		if o.Status == s {
			return true
		}
	}
	return false
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error)
	// UpdateOrderStatus applies u and returns the updated order, or
	// ErrNotFound if no order satisfies its conditions.
	UpdateOrderStatus(ctx context.Context, u StatusUpdate) (*model.Order, error)
	// RateOrder sets the rating of a delivered order owned by userID.
	RateOrder(ctx context.Context, userID, orderID string, r model.Rating, at time.Time) (*model.Order, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Transactor runs fn so that every store call made with the context it
// receives either commits together or not at all.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store interface {
	FoodStore
	PromoCodeStore
	OrderStore
	UserStore
	Transactor

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
