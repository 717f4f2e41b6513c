package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrExpiredPromoCode = errors.New("invalid or expired promo code")
	ErrMinimumOrderValueNotMet   = errors.New("minimum order value not met")
	ErrOrderNotFound             = errors.New("order not found")
	ErrInvalidCancellation       = errors.New("cannot cancel this order")
	ErrInvalidStatus             = errors.New("invalid order status")
	ErrInvalidStatusTransition   = errors.New("order is already in a final state")
	ErrDeliveryTimeRequired      = errors.New("actual delivery time is required for delivered orders")
	ErrInvalidRating             = errors.New("ratings must be between 1 and 5")
	ErrEmptyCart                 = errors.New("order must contain at least one item")
	ErrDeliveryAddressRequired   = errors.New("delivery address is required for delivery orders")
	ErrFoodNotFound              = errors.New("food item not found")
	ErrEmailTaken                = errors.New("email already registered")
	ErrInvalidCredentials        = errors.New("invalid email or password")
	ErrUnauthenticated           = errors.New("user not authenticated")
	ErrStoreFailure              = errors.New("store failure")
)

// MinimumOrderError is returned when the subtotal is below the promo
// code's floor. It matches ErrMinimumOrderValueNotMet.
type MinimumOrderError struct {
	Minimum float64
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order value for this promo code is %g", e.Minimum)
}

func (e *MinimumOrderError) Is(target error) bool {
	return target == ErrMinimumOrderValueNotMet
}

func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}
