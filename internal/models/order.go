package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a purchase-time snapshot. It is never linked back to the live
// product so later catalog edits cannot change a historical order.
type OrderItem struct {
	Name      string  `bson:"name" json:"name"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

// Relay is the pickup point chosen for relay delivery.
type Relay struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Address string `bson:"address" json:"address"`
}

type BillingAddress struct {
	Name       string `bson:"name,omitempty" json:"name,omitempty"`
	Line1      string `bson:"line1,omitempty" json:"line1,omitempty"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// Order defines the persisted order document. SessionID is unique across the
// collection and never changes after insert.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID      string             `bson:"sessionId" json:"sessionId"`
	UserID         string             `bson:"userId" json:"userId"`
	Email          string             `bson:"email" json:"email"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Subtotal       float64            `bson:"subtotal" json:"subtotal"`
	ShippingCost   float64            `bson:"shippingCost" json:"shippingCost"`
	Taxes          float64            `bson:"taxes" json:"taxes"`
	Total          float64            `bson:"total" json:"total"`
	Currency       string             `bson:"currency" json:"currency"`
	DeliveryMethod string             `bson:"deliveryMethod" json:"deliveryMethod"`
	ShippingRateID string             `bson:"shippingRateId,omitempty" json:"shippingRateId,omitempty"`
	Relay          *Relay             `bson:"relay" json:"relay"`
	BillingAddress *BillingAddress    `bson:"billingAddress,omitempty" json:"billingAddress,omitempty"`
	Status         OrderStatus        `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
