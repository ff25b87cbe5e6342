package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPaid      OrderStatus = "Paid"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "COD"
	PaymentBKash PaymentMethod = "bKash"
	PaymentNagad PaymentMethod = "Nagad"
	PaymentCard  PaymentMethod = "Card"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCOD, PaymentBKash, PaymentNagad, PaymentCard:
		return true
	}
	return false
}

// OrderItem is a snapshot of a cart line at checkout.
type OrderItem struct {
	MenuItemID   primitive.ObjectID `bson:"menuItem" json:"menuItem"`
	RestaurantID primitive.ObjectID `bson:"restaurant,omitempty" json:"restaurant,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Quantity     int                `bson:"quantity" json:"quantity"`
}

// Order is immutable after checkout except for Status.
type Order struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CustomerName  string               `bson:"customerName" json:"customerName"`
	CustomerPhone string               `bson:"customerPhone" json:"customerPhone"`
	CustomerEmail string               `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	Items         []OrderItem          `bson:"items" json:"items"`
	DeliveryFee   float64              `bson:"deliveryFee" json:"deliveryFee"`
	Total         float64              `bson:"total" json:"total"`
	PaymentMethod PaymentMethod        `bson:"paymentMethod" json:"paymentMethod"`
	Status        OrderStatus          `bson:"status" json:"status"`
	UserID        *primitive.ObjectID  `bson:"user,omitempty" json:"user,omitempty"`
	RestaurantIDs []primitive.ObjectID `bson:"restaurants" json:"restaurants"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ShortID is the last six hex characters of the order id.
func (o *Order) ShortID() string {
	hex := o.ID.Hex()
	return hex[len(hex)-6:]
}
