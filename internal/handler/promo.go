package handler

import (
	"net/http"
	"time"

	"foodorder/internal/service"
)

type validatePromoRequest struct {
	Code        string   `json:"code" validate:"required"`
	OrderValue  *float64 `json:"orderValue" validate:"required,gte=0"`
	DeliveryFee float64  `json:"deliveryFee" validate:"gte=0"`
}

func ValidatePromoCodeHandler(pricing *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validatePromoRequest
		if !decode(w, r, &req) {
			return
		}

		preview, err := pricing.ValidatePromoCode(r.Context(), req.Code, *req.OrderValue, req.DeliveryFee, time.Now().UTC())
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Promo code is valid", preview)
	}
}

func ActivePromoCodesHandler(pricing *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promos, err := pricing.ActivePromoCodes(r.Context(), time.Now().UTC())
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Active promo codes retrieved successfully", promos)
	}
}
