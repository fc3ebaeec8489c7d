// Package paymenttest provides an in-memory payment.Provider for tests.
package paymenttest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storefront/internal/payment"
)

// Provider keeps sessions and rates in memory. Completing a session copies the
// requested line items into the charged record unless a test overrides it
// with SetCharged.
type Provider struct {
	mu          sync.Mutex
	seq         int
	sessions    map[string]*payment.Session
	requests    map[string]payment.SessionRequest
	rates       map[string]*payment.Rate
	getCalls    map[string]int
	rateUpdates map[string]int
	createErr   error
	getErr      error
}

func New() *Provider {
	return &Provider{
		sessions:    map[string]*payment.Session{},
		requests:    map[string]payment.SessionRequest{},
		rates:       map[string]*payment.Rate{},
		getCalls:    map[string]int{},
		rateUpdates: map[string]int{},
	}
}

func (p *Provider) FailCreate(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createErr = err
}

func (p *Provider) FailGet(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getErr = err
}

func (p *Provider) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s_test_%d", prefix, p.seq)
}

func (p *Provider) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}

	id := p.nextID("cs")
	var subtotal int64
	items := make([]payment.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		item.AmountTotal = item.UnitAmount * item.Quantity
		subtotal += item.AmountTotal
		items = append(items, item)
	}
	s := &payment.Session{
		ID:             id,
		URL:            "https://checkout.test/pay/" + id,
		PaymentStatus:  payment.PaymentStatusUnpaid,
		CustomerEmail:  req.CustomerEmail,
		Currency:       req.Currency,
		AmountSubtotal: subtotal,
		AmountTotal:    subtotal,
		LineItems:      items,
		Metadata:       copyMap(req.Metadata),
	}
	p.sessions[id] = s
	p.requests[id] = req
	out := *s
	return &out, nil
}

// Complete marks the session paid with the given shipping rate, the way the
// buyer finishing the hosted page would.
func (p *Provider) Complete(sessionID, rateID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return payment.ErrNotFound
	}
	if rate, ok := p.rates[rateID]; ok {
		s.ShippingRateID = rateID
		s.AmountShipping = rate.Amount
	}
	s.PaymentStatus = payment.PaymentStatusPaid
	s.AmountTotal = s.AmountSubtotal + s.AmountShipping + s.AmountTax
	if s.CustomerName == "" {
		s.CustomerName = "Test Buyer"
		s.BillingAddress = &payment.Address{Line1: "1 rue de la Paix", City: "Paris", PostalCode: "75002", Country: "FR"}
	}
	return nil
}

// SetCharged replaces what the provider reports as charged for a session.
func (p *Provider) SetCharged(sessionID string, items []payment.LineItem, shipping, tax int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.sessions[sessionID]
	var subtotal int64
	for i := range items {
		items[i].AmountTotal = items[i].UnitAmount * items[i].Quantity
		subtotal += items[i].AmountTotal
	}
	s.LineItems = items
	s.AmountSubtotal = subtotal
	s.AmountShipping = shipping
	s.AmountTax = tax
	s.AmountTotal = subtotal + shipping + tax
}

// PutSession stores a session as-is.
func (p *Provider) PutSession(s payment.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[s.ID] = &s
}

func (p *Provider) Request(sessionID string) (payment.SessionRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	req, ok := p.requests[sessionID]
	return req, ok
}

func (p *Provider) GetCalls(sessionID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getCalls[sessionID]
}

// SessionCount reports how many checkout sessions were created.
func (p *Provider) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// RateUpdates reports how many update calls reached the given rate.
func (p *Provider) RateUpdates(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rateUpdates[id]
}

func (p *Provider) GetCheckoutSession(_ context.Context, id string) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls[id]++
	if p.getErr != nil {
		return nil, p.getErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	out := *s
	out.LineItems = append([]payment.LineItem(nil), s.LineItems...)
	out.Metadata = copyMap(s.Metadata)
	return &out, nil
}

func (p *Provider) ListShippingRates(_ context.Context, activeOnly bool) ([]payment.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]payment.Rate, 0, len(p.rates))
	for _, r := range p.rates {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, copyRate(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Provider) GetShippingRate(_ context.Context, id string) (*payment.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.rates[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	out := copyRate(r)
	return &out, nil
}

func (p *Provider) CreateShippingRate(_ context.Context, params payment.RateParams) (*payment.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := &payment.Rate{
		ID:          p.nextID("shr"),
		DisplayName: params.DisplayName,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Active:      true,
		Metadata:    copyMap(params.Metadata),
	}
	p.rates[r.ID] = r
	out := copyRate(r)
	return &out, nil
}

func (p *Provider) UpdateShippingRate(_ context.Context, id string, update payment.RateUpdate) (*payment.Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rateUpdates[id]++
	r, ok := p.rates[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	if update.Active != nil {
		r.Active = *update.Active
	}
	if update.Metadata != nil {
		if r.Metadata == nil {
			r.Metadata = map[string]string{}
		}
		for k, v := range update.Metadata {
			if v == "" {
				delete(r.Metadata, k)
				continue
			}
			r.Metadata[k] = v
		}
	}
	out := copyRate(r)
	return &out, nil
}

func copyRate(r *payment.Rate) payment.Rate {
	out := *r
	out.Metadata = copyMap(r.Metadata)
	return out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
