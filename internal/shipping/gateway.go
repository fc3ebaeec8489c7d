// Package shipping adapts the payment provider's shipping-rate catalog to the
// storefront's delivery methods.
package shipping

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/payment"
)

// MetadataDeliveryMethod is the rate metadata key holding the internal
// delivery-method code.
const MetadataDeliveryMethod = "deliveryMethod"

// Gateway never deletes a rate. Orders keep a rate id forever, so archived
// rates must stay resolvable.
type Gateway struct {
	rates    payment.RateAPI
	currency string
}

func NewGateway(rates payment.RateAPI, currency string) *Gateway {
	return &Gateway{rates: rates, currency: strings.ToLower(currency)}
}

type CreateInput struct {
	DisplayName    string
	Amount         float64
	DeliveryMethod string
	Metadata       map[string]string
}

func (g *Gateway) ListActive(ctx context.Context) ([]models.ShippingRate, error) {
	remote, err := g.rates.ListShippingRates(ctx, true)
	if err != nil {
		return nil, apperr.Upstream("list shipping rates", err)
	}
	out := make([]models.ShippingRate, 0, len(remote))
	for _, r := range remote {
		// the provider filter is trusted, but an inactive rate must never
		// reach a checkout session
		if !r.Active {
			continue
		}
		out = append(out, toModel(r))
	}
	return out, nil
}

// RatesForMethod returns the active rates mapped to a delivery-method code.
func (g *Gateway) RatesForMethod(ctx context.Context, code string) ([]models.ShippingRate, error) {
	rates, err := g.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ShippingRate, 0, len(rates))
	for _, r := range rates {
		if r.DeliveryMethod == code {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *Gateway) Get(ctx context.Context, id string) (models.ShippingRate, error) {
	r, err := g.rates.GetShippingRate(ctx, id)
	if errors.Is(err, payment.ErrNotFound) {
		return models.ShippingRate{}, apperr.NotFound("shipping rate not found")
	}
	if err != nil {
		return models.ShippingRate{}, apperr.Upstream("get shipping rate", err)
	}
	return toModel(*r), nil
}

// DeliveryMethodFor resolves a rate id to its delivery-method code, whether
// or not the rate is still active.
func (g *Gateway) DeliveryMethodFor(ctx context.Context, rateID string) (string, error) {
	rate, err := g.Get(ctx, rateID)
	if err != nil {
		return "", err
	}
	if rate.DeliveryMethod == "" {
		return "", apperr.NotFound("shipping rate has no delivery method")
	}
	return rate.DeliveryMethod, nil
}

func (g *Gateway) Create(ctx context.Context, in CreateInput) (models.ShippingRate, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return models.ShippingRate{}, apperr.Validation("displayName is required")
	}
	if in.Amount < 0 {
		return models.ShippingRate{}, apperr.Validation("amount must not be negative")
	}
	code := strings.TrimSpace(in.DeliveryMethod)
	if code == "" {
		return models.ShippingRate{}, apperr.Validation("deliveryMethod is required")
	}

	metadata := make(map[string]string, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata[MetadataDeliveryMethod] = code

	r, err := g.rates.CreateShippingRate(ctx, payment.RateParams{
		DisplayName: name,
		Amount:      money.ToMinor(in.Amount),
		Currency:    g.currency,
		Metadata:    metadata,
	})
	if err != nil {
		return models.ShippingRate{}, apperr.Upstream("create shipping rate", err)
	}
	return toModel(*r), nil
}

func (g *Gateway) UpdateMetadata(ctx context.Context, id string, metadata map[string]string) (models.ShippingRate, error) {
	if len(metadata) == 0 {
		return models.ShippingRate{}, apperr.Validation("metadata is required")
	}
	if err := checkMetadata(metadata); err != nil {
		return models.ShippingRate{}, err
	}
	return g.update(ctx, id, payment.RateUpdate{Metadata: metadata})
}

// Archive deactivates a rate. It disappears from ListActive but still
// resolves through Get and DeliveryMethodFor.
func (g *Gateway) Archive(ctx context.Context, id string) (models.ShippingRate, error) {
	return g.ArchiveWithMetadata(ctx, id, nil)
}

// ArchiveWithMetadata deactivates a rate and merges metadata in the same
// provider call, so the rate is never left half updated.
func (g *Gateway) ArchiveWithMetadata(ctx context.Context, id string, metadata map[string]string) (models.ShippingRate, error) {
	if err := checkMetadata(metadata); err != nil {
		return models.ShippingRate{}, err
	}
	inactive := false
	update := payment.RateUpdate{Active: &inactive}
	if len(metadata) > 0 {
		update.Metadata = metadata
	}
	return g.update(ctx, id, update)
}

func checkMetadata(metadata map[string]string) error {
	if code, ok := metadata[MetadataDeliveryMethod]; ok && strings.TrimSpace(code) == "" {
		return apperr.Validation("deliveryMethod cannot be removed")
	}
	return nil
}

func (g *Gateway) update(ctx context.Context, id string, update payment.RateUpdate) (models.ShippingRate, error) {
	if strings.TrimSpace(id) == "" {
		return models.ShippingRate{}, apperr.Validation("rate id is required")
	}
	r, err := g.rates.UpdateShippingRate(ctx, id, update)
	if errors.Is(err, payment.ErrNotFound) {
		return models.ShippingRate{}, apperr.NotFound("shipping rate not found")
	}
	if err != nil {
		return models.ShippingRate{}, apperr.Upstream("update shipping rate", err)
	}
	return toModel(*r), nil
}

func toModel(r payment.Rate) models.ShippingRate {
	return models.ShippingRate{
		ID:             r.ID,
		DisplayName:    r.DisplayName,
		Amount:         money.FromMinor(r.Amount),
		Currency:       r.Currency,
		Active:         r.Active,
		DeliveryMethod: r.Metadata[MetadataDeliveryMethod],
		Metadata:       r.Metadata,
	}
}
