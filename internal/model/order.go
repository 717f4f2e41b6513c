package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled:
		return true
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOutForDelivery:
		return false
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryTypeDelivery || d == DeliveryTypePickup
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentMethodCash || p == PaymentMethodCard || p == PaymentMethodMobile
}

type Customizations struct {
	SpiceLevel     string `json:"spiceLevel,omitempty" bson:"spiceLevel,omitempty"`
	ExtraCheese    bool   `json:"extraCheese,omitempty" bson:"extraCheese,omitempty"`
	ExtraSauce     bool   `json:"extraSauce,omitempty" bson:"extraSauce,omitempty"`
	NoOnions       bool   `json:"noOnions,omitempty" bson:"noOnions,omitempty"`
	SpecialRequest string `json:"specialRequest,omitempty" bson:"specialRequest,omitempty"`
}

type CartItem struct {
	ID              string          `json:"id" bson:"id"`
	Name            string          `json:"name" bson:"name"`
	Price           float64         `json:"price" bson:"price"`
	ImageURL        string          `json:"imageUrl" bson:"imageUrl"`
	Quantity        int             `json:"quantity" bson:"quantity"`
	SpecialRequest  string          `json:"specialRequest,omitempty" bson:"specialRequest,omitempty"`
	RequiresCutlery bool            `json:"requiresCutlery" bson:"requiresCutlery"`
	Customizations  *Customizations `json:"customizations,omitempty" bson:"customizations,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type Address struct {
	Street      string       `json:"street" bson:"street"`
	City        string       `json:"city" bson:"city"`
	State       string       `json:"state" bson:"state"`
	ZipCode     string       `json:"zipCode" bson:"zipCode"`
	Country     string       `json:"country" bson:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// Complete reports whether every postal field is filled in.
func (a *Address) Complete() bool {
	return a != nil && a.Street != "" && a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != ""
}

type Rating struct {
	Food     float64 `json:"food" bson:"food"`
	Delivery float64 `json:"delivery" bson:"delivery"`
	Overall  float64 `json:"overall" bson:"overall"`
	Comment  string  `json:"comment" bson:"comment"`
}

type Order struct {
	ID                    string        `json:"id" bson:"_id"`
	UserID                string        `json:"userId" bson:"userId"`
	Items                 []CartItem    `json:"items" bson:"items"`
	TotalPrice            float64       `json:"totalPrice" bson:"totalPrice"`
	Discount              float64       `json:"discount" bson:"discount"`
	DeliveryFee           float64       `json:"deliveryFee" bson:"deliveryFee"`
	FinalTotal            float64       `json:"finalTotal" bson:"finalTotal"`
	Status                OrderStatus   `json:"status" bson:"status"`
	DeliveryType          DeliveryType  `json:"deliveryType" bson:"deliveryType"`
	DeliveryAddress       *Address      `json:"deliveryAddress,omitempty" bson:"deliveryAddress,omitempty"`
	PaymentMethod         PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus         PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	CutleryCount          int           `json:"cutleryCount" bson:"cutleryCount"`
	PromoCode             string        `json:"promoCode,omitempty" bson:"promoCode,omitempty"`
	SpecialInstructions   string        `json:"specialInstructions,omitempty" bson:"specialInstructions,omitempty"`
	EstimatedDeliveryTime time.Time     `json:"estimatedDeliveryTime" bson:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time    `json:"actualDeliveryTime,omitempty" bson:"actualDeliveryTime,omitempty"`
	Rating                *Rating       `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt             time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// OrderFilter selects one owner's orders. Page and Limit are 1-based and
// already normalised by the caller.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Page   int
	Limit  int
}

func (f OrderFilter) Skip() int {
	return (f.Page - 1) * f.Limit
}
