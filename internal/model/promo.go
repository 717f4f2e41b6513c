package model

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type PromoCode struct {
	ID                    string       `json:"id" bson:"_id"`
	Code                  string       `json:"code" bson:"code"`
	Description           string       `json:"description" bson:"description"`
	DiscountType          DiscountType `json:"discountType" bson:"discountType"`
	DiscountValue         float64      `json:"discountValue" bson:"discountValue"`
	MinimumOrderValue     float64      `json:"minimumOrderValue" bson:"minimumOrderValue"`
	MaximumDiscount       *float64     `json:"maximumDiscount,omitempty" bson:"maximumDiscount,omitempty"`
	UsageLimit            int          `json:"usageLimit" bson:"usageLimit"`
	UsedCount             int          `json:"usedCount" bson:"usedCount"`
	ValidFrom             time.Time    `json:"validFrom" bson:"validFrom"`
	ValidUntil            time.Time    `json:"validUntil" bson:"validUntil"`
	IsActive              bool         `json:"isActive" bson:"isActive"`
	ApplicableRestaurants []string     `json:"applicableRestaurants,omitempty" bson:"applicableRestaurants,omitempty"`
	CreatedAt             time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// RedeemableAt reports whether the code may be applied at t, ignoring the
// minimum order value.
func (p *PromoCode) RedeemableAt(t time.Time) bool {
	return p.IsActive &&
		!t.Before(p.ValidFrom) &&
		!t.After(p.ValidUntil) &&
		p.UsedCount < p.UsageLimit
}

// PromoSummary is the public view of a promo code.
type PromoSummary struct {
	Code              string       `json:"code"`
	Description       string       `json:"description"`
	DiscountType      DiscountType `json:"discountType"`
	DiscountValue     float64      `json:"discountValue"`
	MinimumOrderValue float64      `json:"minimumOrderValue"`
	MaximumDiscount   *float64     `json:"maximumDiscount,omitempty"`
	ValidUntil        time.Time    `json:"validUntil"`
}

func (p *PromoCode) Summary() PromoSummary {
	return PromoSummary{
		Code:              p.Code,
		Description:       p.Description,
		DiscountType:      p.DiscountType,
		DiscountValue:     p.DiscountValue,
		MinimumOrderValue: p.MinimumOrderValue,
		MaximumDiscount:   p.MaximumDiscount,
		ValidUntil:        p.ValidUntil,
	}
}
