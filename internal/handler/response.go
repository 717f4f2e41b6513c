package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"foodorder/internal/service"
)

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) *pagination {
	p := &pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.Pages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}

type response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func ok(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope. It satisfies mw.FailFunc.
func Fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Message: message})
}

func failDetail(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, response{Message: message, Error: detail})
}

// writeError maps service errors to a status and message.
func writeError(w http.ResponseWriter, err error) {
	var minErr *service.MinimumOrderError
	switch {
	case errors.As(err, &minErr):
		writeJSON(w, http.StatusBadRequest, response{
			Message: fmt.Sprintf("Minimum order value for this promo code is %s ETB", money(minErr.Minimum)),
			Data:    map[string]float64{"minimumOrderValue": minErr.Minimum},
		})
	case errors.Is(err, service.ErrInvalidOrExpiredPromoCode):
		Fail(w, http.StatusBadRequest, "Invalid or expired promo code")
	case errors.Is(err, service.ErrOrderNotFound):
		Fail(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrFoodNotFound):
		Fail(w, http.StatusNotFound, "Food item not found")
	case errors.Is(err, service.ErrInvalidCancellation):
		Fail(w, http.StatusBadRequest, "Cannot cancel this order")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		failDetail(w, http.StatusConflict, "Order status cannot be changed", err.Error())
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrDeliveryTimeRequired),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrDeliveryAddressRequired):
		failDetail(w, http.StatusBadRequest, "Validation error", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		Fail(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, "User not authenticated")
	default:
		slog.Error("request failed", "error", err)
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Fail(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, "method not allowed")
}
