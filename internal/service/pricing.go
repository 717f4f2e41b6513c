package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

var hundred = decimal.NewFromInt(100)

// Quote is the priced result of a checkout.
type Quote struct {
	Subtotal    float64
	Discount    float64
	DeliveryFee float64
	FinalTotal  float64
	PromoCode   string
}

// PromoPreview is what a customer sees before checking out with a code.
type PromoPreview struct {
	PromoCode   model.PromoSummary `json:"promoCode"`
	Discount    float64            `json:"discount"`
	FinalAmount float64            `json:"finalAmount"`
}

type PricingService struct {
	promos store.PromoCodeStore
}

func NewPricingService(promos store.PromoCodeStore) *PricingService {
	return &PricingService{promos: promos}
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PriceOrder computes discount and final total and, when a promo code is
// given, redeems it. The caller runs it inside the same transaction as the
// order insert.
func (s *PricingService) PriceOrder(ctx context.Context, subtotal, deliveryFee float64, code string, now time.Time) (*Quote, error) {
	sub := decimal.NewFromFloat(subtotal)
	fee := decimal.NewFromFloat(deliveryFee)

	code = NormalizeCode(code)
	if code == "" {
		return &Quote{
			Subtotal:    subtotal,
			DeliveryFee: deliveryFee,
			FinalTotal:  sub.Add(fee).InexactFloat64(),
		}, nil
	}

	promo, err := s.lookup(ctx, code, sub, now)
	if err != nil {
		return nil, err
	}
	discount := discountFor(promo, sub, fee)

	if err := s.promos.Redeem(ctx, promo.Code, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOrExpiredPromoCode
		}
		return nil, storeFailure("redeem promo code", err)
	}

	return &Quote{
		Subtotal:    subtotal,
		Discount:    discount.InexactFloat64(),
		DeliveryFee: deliveryFee,
		FinalTotal:  sub.Sub(discount).Add(fee).InexactFloat64(),
		PromoCode:   promo.Code,
	}, nil
}

// ValidatePromoCode previews a code against an order value without
// touching its usage count. The discount is computed exactly as checkout
// computes it for the same order value and delivery fee.
func (s *PricingService) ValidatePromoCode(ctx context.Context, code string, orderValue, deliveryFee float64, now time.Time) (*PromoPreview, error) {
	value := decimal.NewFromFloat(orderValue)
	fee := decimal.NewFromFloat(deliveryFee)

	promo, err := s.lookup(ctx, NormalizeCode(code), value, now)
	if err != nil {
		return nil, err
	}
	discount := discountFor(promo, value, fee)

	return &PromoPreview{
		PromoCode:   promo.Summary(),
		Discount:    discount.InexactFloat64(),
		FinalAmount: value.Sub(discount).Add(fee).InexactFloat64(),
	}, nil
}

func (s *PricingService) ActivePromoCodes(ctx context.Context, now time.Time) ([]model.PromoSummary, error) {
	promos, err := s.promos.ListRedeemable(ctx, now)
	if err != nil {
		return nil, storeFailure("list promo codes", err)
	}

	summaries := make([]model.PromoSummary, 0, len(promos))
	for i := range promos {
		summaries = append(summaries, promos[i].Summary())
	}
	return summaries, nil
}

func (s *PricingService) lookup(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*model.PromoCode, error) {
	if code == "" {
		return nil, ErrInvalidOrExpiredPromoCode
	}

	promo, err := s.promos.FindRedeemable(ctx, code, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOrExpiredPromoCode
		}
		return nil, storeFailure("find promo code", err)
	}

	if subtotal.LessThan(decimal.NewFromFloat(promo.MinimumOrderValue)) {
		return nil, &MinimumOrderError{Minimum: promo.MinimumOrderValue}
	}
	return promo, nil
}

// discountFor is shared by checkout and preview. The result is exact and
// never exceeds subtotal plus fee.
func discountFor(p *model.PromoCode, subtotal, fee decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(p.DiscountValue)

	var discount decimal.Decimal
	switch p.DiscountType {
	case model.DiscountTypePercentage:
		discount = subtotal.Mul(value).Div(hundred)
		if p.MaximumDiscount != nil {
			discount = decimal.Min(discount, decimal.NewFromFloat(*p.MaximumDiscount))
		}
	case model.DiscountTypeFixed:
		discount = value
	default:
		return decimal.Zero
	}

	return decimal.Min(discount, subtotal.Add(fee))
}

// ExpireStale deactivates codes that can no longer be redeemed.
func (s *PricingService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.promos.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, storeFailure("deactivate promo codes", err)
	}
	return n, nil
}
