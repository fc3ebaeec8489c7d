package models

// ShippingRate mirrors a rate owned by the payment provider. Only ID and
// DeliveryMethod are ever stored locally, on the order.
type ShippingRate struct {
	ID             string            `json:"id"`
	DisplayName    string            `json:"displayName"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	Active         bool              `json:"active"`
	DeliveryMethod string            `json:"deliveryMethod"`
	Metadata       map[string]string `json:"metadata"`
}
