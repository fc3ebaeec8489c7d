// Package checkout turns a buyer's cart into a hosted payment session.
// It never creates orders; only a verified payment event does.
package checkout

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/payment"
	"storefront/internal/store"
)

// RateSource lists the active shipping rates for a delivery method.
type RateSource interface {
	RatesForMethod(ctx context.Context, code string) ([]models.ShippingRate, error)
}

type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	Methods    config.DeliveryMethods
}

type Builder struct {
	catalog  store.ProductCatalog
	rates    RateSource
	sessions payment.SessionAPI
	opts     Options
}

func NewBuilder(catalog store.ProductCatalog, rates RateSource, sessions payment.SessionAPI, opts Options) *Builder {
	opts.Currency = strings.ToLower(opts.Currency)
	return &Builder{catalog: catalog, rates: rates, sessions: sessions, opts: opts}
}

// CartItem is what the client sends. Prices are never taken from the client.
type CartItem struct {
	ProductID string
	Quantity  int
}

type Request struct {
	UserID         string
	Email          string
	Items          []CartItem
	DeliveryMethod string
	Relay          *models.Relay
}

type Result struct {
	SessionID   string  `json:"sessionId"`
	RedirectURL string  `json:"redirectUrl"`
	Subtotal    float64 `json:"subtotal"`
}

type cartLine struct {
	id       primitive.ObjectID
	quantity int
}

func (b *Builder) Create(ctx context.Context, req Request) (Result, error) {
	result, err := b.create(ctx, req)
	outcome := "created"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	metrics.CheckoutSessions.WithLabelValues(req.DeliveryMethod, outcome).Inc()
	return result, err
}

func (b *Builder) create(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Result{}, apperr.Auth("unauthorized")
	}

	lines, err := mergeCart(req.Items)
	if err != nil {
		return Result{}, err
	}

	method, ok := b.opts.Methods.Lookup(req.DeliveryMethod)
	if !ok {
		return Result{}, apperr.Validation("unknown delivery method")
	}
	relay, err := resolveRelay(method, req.Relay)
	if err != nil {
		return Result{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.id)
	}
	products, err := b.catalog.FindProducts(ctx, ids)
	if err != nil {
		return Result{}, apperr.Internal("load products", err)
	}

	items := make([]payment.LineItem, 0, len(lines))
	slugs := make([]string, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		product, ok := products[line.id]
		if !ok || !product.Purchasable() {
			return Result{}, apperr.Validation(fmt.Sprintf("product %s not found", line.id.Hex()))
		}
		if product.Stock < line.quantity {
			return Result{}, apperr.Validation(fmt.Sprintf("insufficient stock for %s: %d available", product.Name, product.Stock))
		}

		unit := money.ToMinor(product.EffectivePrice())
		if unit <= 0 {
			return Result{}, apperr.Validation(fmt.Sprintf("product %s has no valid price", product.Name))
		}
		if unit > (math.MaxInt64-subtotal)/int64(line.quantity) {
			return Result{}, apperr.Validation("cart total is too large")
		}
		items = append(items, payment.LineItem{
			Name:       product.Name,
			UnitAmount: unit,
			Quantity:   int64(line.quantity),
			Image:      product.ImagePath,
		})
		subtotal += unit * int64(line.quantity)
		slugs = append(slugs, product.Slug)
	}

	rates, err := b.rates.RatesForMethod(ctx, method.Code)
	if err != nil {
		return Result{}, err
	}
	if len(rates) == 0 {
		return Result{}, apperr.Validation("no shipping option available for delivery method")
	}
	rateIDs := make([]string, 0, len(rates))
	for _, r := range rates {
		rateIDs = append(rateIDs, r.ID)
	}

	meta := payment.SessionMetadata{
		UserID:         req.UserID,
		DeliveryMethod: method.Code,
		ProductSlugs:   slugs,
	}
	if relay != nil {
		meta.RelayID = relay.ID
		meta.RelayName = relay.Name
		meta.RelayAddress = relay.Address
	}

	session, err := b.sessions.CreateCheckoutSession(ctx, payment.SessionRequest{
		ClientReferenceID: req.UserID,
		CustomerEmail:     req.Email,
		Currency:          b.opts.Currency,
		LineItems:         items,
		ShippingRateIDs:   rateIDs,
		Metadata:          meta.Encode(),
		SuccessURL:        b.opts.SuccessURL,
		CancelURL:         b.opts.CancelURL,
	})
	if err != nil {
		return Result{}, apperr.Upstream("create checkout session", err)
	}

	log.Printf("[CHECKOUT] [INFO] session %s created for user %s (%d items, %s)", session.ID, req.UserID, len(items), method.Code)
	return Result{
		SessionID:   session.ID,
		RedirectURL: session.URL,
		Subtotal:    money.FromMinor(subtotal),
	}, nil
}

// MaxLineQuantity bounds a single product's quantity, after merging repeated
// cart lines.
const MaxLineQuantity = 999

// mergeCart validates the cart and folds repeated products into one line.
func mergeCart(items []CartItem) ([]cartLine, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	lines := make([]cartLine, 0, len(items))
	index := make(map[primitive.ObjectID]int, len(items))
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, apperr.Validation("invalid productId")
		}
		if item.Quantity <= 0 {
			return nil, apperr.Validation("quantity must be greater than zero")
		}
		if item.Quantity > MaxLineQuantity {
			return nil, apperr.Validation(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
		}
		if i, ok := index[id]; ok {
			if lines[i].quantity > MaxLineQuantity-item.Quantity {
				return nil, apperr.Validation(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
			}
			lines[i].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, cartLine{id: id, quantity: item.Quantity})
	}
	return lines, nil
}

// resolveRelay keeps a pre-selected relay only for relay delivery. The relay
// can also be attached after payment, so it is optional here.
func resolveRelay(method config.DeliveryMethod, relay *models.Relay) (*models.Relay, error) {
	if relay == nil || !method.RequiresRelay {
		return nil, nil
	}
	r := models.Relay{
		ID:      strings.TrimSpace(relay.ID),
		Name:    strings.TrimSpace(relay.Name),
		Address: strings.TrimSpace(relay.Address),
	}
	if r.ID == "" && r.Name == "" && r.Address == "" {
		return nil, nil
	}
	if r.ID == "" || r.Name == "" || r.Address == "" {
		return nil, apperr.Validation("relay requires id, name and address")
	}
	for _, v := range []string{r.ID, r.Name, r.Address} {
		if len(v) > payment.MaxMetadataValue {
			return nil, apperr.Validation(fmt.Sprintf("relay fields must not exceed %d bytes", payment.MaxMetadataValue))
		}
	}
	return &r, nil
}
