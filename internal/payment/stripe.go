package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider talks to Stripe through an explicitly constructed client, so
// no package-level API key is ever set.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(req.SuccessURL),
		CancelURL:                stripe.String(req.CancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.Context = ctx
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			product.Images = stripe.StringSlice([]string{item.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	for _, id := range req.ShippingRateIDs {
		params.ShippingOptions = append(params.ShippingOptions, &stripe.CheckoutSessionShippingOptionParams{
			ShippingRate: stripe.String(id),
		})
	}
	params.Metadata = req.Metadata

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, translateError(err)
	}
	return sessionFromStripe(s), nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("shipping_cost.shipping_rate")

	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, translateError(err)
	}
	out := sessionFromStripe(s)

	// The expanded line_items field is capped at one page; the list endpoint
	// pages through everything that was charged.
	listParams := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(id)}
	listParams.Context = ctx
	listParams.AddExpand("data.price.product")
	it := p.api.CheckoutSessions.ListLineItems(listParams)
	for it.Next() {
		out.LineItems = append(out.LineItems, lineItemFromStripe(it.LineItem()))
	}
	if err := it.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (p *StripeProvider) ListShippingRates(ctx context.Context, activeOnly bool) ([]Rate, error) {
	params := &stripe.ShippingRateListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	if activeOnly {
		params.Active = stripe.Bool(true)
	}

	rates := make([]Rate, 0)
	it := p.api.ShippingRates.List(params)
	for it.Next() {
		rates = append(rates, rateFromStripe(it.ShippingRate()))
	}
	if err := it.Err(); err != nil {
		return nil, translateError(err)
	}
	return rates, nil
}

func (p *StripeProvider) GetShippingRate(ctx context.Context, id string) (*Rate, error) {
	params := &stripe.ShippingRateParams{}
	params.Context = ctx
	r, err := p.api.ShippingRates.Get(id, params)
	if err != nil {
		return nil, translateError(err)
	}
	rate := rateFromStripe(r)
	return &rate, nil
}

func (p *StripeProvider) CreateShippingRate(ctx context.Context, in RateParams) (*Rate, error) {
	params := &stripe.ShippingRateParams{
		DisplayName: stripe.String(in.DisplayName),
		Type:        stripe.String(string(stripe.ShippingRateTypeFixedAmount)),
		FixedAmount: &stripe.ShippingRateFixedAmountParams{
			Amount:   stripe.Int64(in.Amount),
			Currency: stripe.String(in.Currency),
		},
	}
	params.Context = ctx
	params.Metadata = in.Metadata

	r, err := p.api.ShippingRates.New(params)
	if err != nil {
		return nil, translateError(err)
	}
	rate := rateFromStripe(r)
	return &rate, nil
}

func (p *StripeProvider) UpdateShippingRate(ctx context.Context, id string, update RateUpdate) (*Rate, error) {
	params := &stripe.ShippingRateParams{}
	params.Context = ctx
	if update.Active != nil {
		params.Active = stripe.Bool(*update.Active)
	}
	if update.Metadata != nil {
		params.Metadata = update.Metadata
	}

	r, err := p.api.ShippingRates.Update(id, params)
	if err != nil {
		return nil, translateError(err)
	}
	rate := rateFromStripe(r)
	return &rate, nil
}

func translateError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func sessionFromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:             s.ID,
		URL:            s.URL,
		PaymentStatus:  string(s.PaymentStatus),
		Currency:       string(s.Currency),
		AmountSubtotal: s.AmountSubtotal,
		AmountTotal:    s.AmountTotal,
		Metadata:       s.Metadata,
	}
	if s.TotalDetails != nil {
		out.AmountShipping = s.TotalDetails.AmountShipping
		out.AmountTax = s.TotalDetails.AmountTax
	}
	if s.ShippingCost != nil && s.ShippingCost.ShippingRate != nil {
		out.ShippingRateID = s.ShippingCost.ShippingRate.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
		out.CustomerName = s.CustomerDetails.Name
		if a := s.CustomerDetails.Address; a != nil {
			out.BillingAddress = &Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				PostalCode: a.PostalCode,
				State:      a.State,
				Country:    a.Country,
			}
		}
	}
	if out.CustomerEmail == "" {
		out.CustomerEmail = s.CustomerEmail
	}
	return out
}

func lineItemFromStripe(li *stripe.LineItem) LineItem {
	item := LineItem{
		Name:        li.Description,
		Quantity:    li.Quantity,
		AmountTotal: li.AmountTotal,
	}
	if li.Price != nil {
		item.UnitAmount = li.Price.UnitAmount
		if li.Price.Product != nil && len(li.Price.Product.Images) > 0 {
			item.Image = li.Price.Product.Images[0]
		}
	}
	return item
}

func rateFromStripe(r *stripe.ShippingRate) Rate {
	rate := Rate{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Active:      r.Active,
		Metadata:    r.Metadata,
	}
	if r.FixedAmount != nil {
		rate.Amount = r.FixedAmount.Amount
		rate.Currency = string(r.FixedAmount.Currency)
	}
	return rate
}
