package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"foodorder/internal/id"
	"foodorder/internal/model"
	"foodorder/internal/mw"
	"foodorder/internal/service"
)

const defaultOrderLimit = 10

type cartItemRequest struct {
	ID              string                `json:"id" validate:"required"`
	Name            string                `json:"name" validate:"required"`
	Price           *float64              `json:"price" validate:"required,gte=0"`
	ImageURL        string                `json:"imageUrl" validate:"required,url"`
	Quantity        int                   `json:"quantity" validate:"required,min=1"`
	SpecialRequest  string                `json:"specialRequest"`
	RequiresCutlery bool                  `json:"requiresCutlery"`
	Customizations  *model.Customizations `json:"customizations"`
}

type addressRequest struct {
	Street      string             `json:"street" validate:"required"`
	City        string             `json:"city" validate:"required"`
	State       string             `json:"state" validate:"required"`
	ZipCode     string             `json:"zipCode" validate:"required"`
	Country     string             `json:"country" validate:"required"`
	Coordinates *model.Coordinates `json:"coordinates"`
}

type createOrderRequest struct {
	Items               []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalPrice          *float64          `json:"totalPrice" validate:"required,gte=0"`
	DeliveryFee         float64           `json:"deliveryFee" validate:"gte=0"`
	DeliveryType        string            `json:"deliveryType" validate:"required,oneof=delivery pickup"`
	DeliveryAddress     *addressRequest   `json:"deliveryAddress" validate:"required_if=DeliveryType delivery"`
	PaymentMethod       string            `json:"paymentMethod" validate:"required,oneof=cash card mobile"`
	CutleryCount        int               `json:"cutleryCount" validate:"gte=0"`
	PromoCode           string            `json:"promoCode"`
	SpecialInstructions string            `json:"specialInstructions"`
}

func (req *createOrderRequest) input() service.CreateOrderInput {
	items := make([]model.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.CartItem{
			ID:              it.ID,
			Name:            it.Name,
			Price:           *it.Price,
			ImageURL:        it.ImageURL,
			Quantity:        it.Quantity,
			SpecialRequest:  it.SpecialRequest,
			RequiresCutlery: it.RequiresCutlery,
			Customizations:  it.Customizations,
		})
	}

	in := service.CreateOrderInput{
		Items:               items,
		DeliveryFee:         req.DeliveryFee,
		DeliveryType:        model.DeliveryType(req.DeliveryType),
		PaymentMethod:       model.PaymentMethod(req.PaymentMethod),
		PromoCode:           req.PromoCode,
		CutleryCount:        req.CutleryCount,
		SpecialInstructions: req.SpecialInstructions,
	}
	if a := req.DeliveryAddress; a != nil {
		in.DeliveryAddress = &model.Address{
			Street:      a.Street,
			City:        a.City,
			State:       a.State,
			ZipCode:     a.ZipCode,
			Country:     a.Country,
			Coordinates: a.Coordinates,
		}
	}
	return in
}

type updateStatusRequest struct {
	Status             string     `json:"status" validate:"required,oneof=pending confirmed preparing ready out-for-delivery delivered cancelled"`
	ActualDeliveryTime *time.Time `json:"actualDeliveryTime" validate:"required_if=Status delivered"`
}

type rateOrderRequest struct {
	Food     float64 `json:"food" validate:"required,min=1,max=5"`
	Delivery float64 `json:"delivery" validate:"required,min=1,max=5"`
	Overall  float64 `json:"overall" validate:"required,min=1,max=5"`
	Comment  string  `json:"comment" validate:"max=500"`
}

func parseOrderID(r *http.Request) (string, bool) {
	orderID, err := id.Parse(chi.URLParam(r, "id"), id.PrefixOrder)
	return orderID, err == nil
}

func CreateOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		if userID == "" {
			writeError(w, service.ErrUnauthenticated)
			return
		}

		var req createOrderRequest
		if !decode(w, r, &req) {
			return
		}

		in := req.input()
		subtotal := decimal.NewFromFloat(service.Subtotal(in.Items)).Round(2)
		if !decimal.NewFromFloat(*req.TotalPrice).Round(2).Equal(subtotal) {
			failDetail(w, http.StatusBadRequest, "Validation error", "\"totalPrice\" must equal the sum of item price times quantity")
			return
		}

		order, err := orders.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusCreated, "Order created successfully", order)
	}
}

func ListOrdersHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		if userID == "" {
			writeError(w, service.ErrUnauthenticated)
			return
		}

		page, err := orders.List(r.Context(), model.OrderFilter{
			UserID: userID,
			Status: model.OrderStatus(r.URL.Query().Get("status")),
			Page:   queryInt(r, "page", 1),
			Limit:  clampLimit(queryInt(r, "limit", defaultOrderLimit)),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Success:    true,
			Message:    "Orders retrieved successfully",
			Data:       page.Orders,
			Pagination: newPagination(page.Page, page.Limit, page.Total),
		})
	}
}

func GetOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		if userID == "" {
			writeError(w, service.ErrUnauthenticated)
			return
		}
		orderID, valid := parseOrderID(r)
		if !valid {
			writeError(w, service.ErrOrderNotFound)
			return
		}

		order, err := orders.Get(r.Context(), userID, orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Order retrieved successfully", order)
	}
}

func UpdateOrderStatusHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, valid := parseOrderID(r)
		if !valid {
			writeError(w, service.ErrOrderNotFound)
			return
		}

		var req updateStatusRequest
		if !decode(w, r, &req) {
			return
		}

		order, err := orders.SetStatus(r.Context(), orderID, model.OrderStatus(req.Status), req.ActualDeliveryTime)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Order status updated successfully", order)
	}
}

func CancelOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		if userID == "" {
			writeError(w, service.ErrUnauthenticated)
			return
		}
		orderID, valid := parseOrderID(r)
		if !valid {
			writeError(w, service.ErrOrderNotFound)
			return
		}

		order, err := orders.Cancel(r.Context(), userID, orderID)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Order cancelled successfully", order)
	}
}

func RateOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := mw.UserID(r.Context())
		if userID == "" {
			writeError(w, service.ErrUnauthenticated)
			return
		}
		orderID, valid := parseOrderID(r)
		if !valid {
			Fail(w, http.StatusNotFound, "Order not found or not delivered yet")
			return
		}

		var req rateOrderRequest
		if !decode(w, r, &req) {
			return
		}

		order, err := orders.Rate(r.Context(), userID, orderID, service.RateInput{
			Food:     req.Food,
			Delivery: req.Delivery,
			Overall:  req.Overall,
			Comment:  req.Comment,
		})
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				Fail(w, http.StatusNotFound, "Order not found or not delivered yet")
				return
			}
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Order rated successfully", order)
	}
}
