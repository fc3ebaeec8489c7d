// Package payment is the boundary to the remote payment provider: checkout
// sessions, shipping rates and the metadata schema carried on sessions.
package payment

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the provider has no object for an id.
var ErrNotFound = errors.New("payment: object not found")

type SessionAPI interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// GetCheckoutSession returns the provider's record of the session,
	// including every line item actually charged.
	GetCheckoutSession(ctx context.Context, id string) (*Session, error)
}

type RateAPI interface {
	ListShippingRates(ctx context.Context, activeOnly bool) ([]Rate, error)
	GetShippingRate(ctx context.Context, id string) (*Rate, error)
	CreateShippingRate(ctx context.Context, params RateParams) (*Rate, error)
	UpdateShippingRate(ctx context.Context, id string, update RateUpdate) (*Rate, error)
}

type Provider interface {
	SessionAPI
	RateAPI
}

// Amounts are in minor currency units.
type LineItem struct {
	Name        string
	UnitAmount  int64
	Quantity    int64
	AmountTotal int64
	Image       string
}

type SessionRequest struct {
	ClientReferenceID string
	CustomerEmail     string
	Currency          string
	LineItems         []LineItem
	ShippingRateIDs   []string
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	State      string
	Country    string
}

const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

type Session struct {
	ID             string
	URL            string
	PaymentStatus  string
	CustomerEmail  string
	CustomerName   string
	BillingAddress *Address
	Currency       string
	AmountSubtotal int64
	AmountShipping int64
	AmountTax      int64
	AmountTotal    int64
	ShippingRateID string
	LineItems      []LineItem
	Metadata       map[string]string
}

type Rate struct {
	ID          string
	DisplayName string
	Amount      int64
	Currency    string
	Active      bool
	Metadata    map[string]string
}

type RateParams struct {
	DisplayName string
	Amount      int64
	Currency    string
	Metadata    map[string]string
}

// RateUpdate changes only the fields that are set.
type RateUpdate struct {
	Active   *bool
	Metadata map[string]string
}
