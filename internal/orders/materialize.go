package orders

import (
	"context"
	"errors"
	"log"

	"storefront/internal/apperr"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/money"
	"storefront/internal/payment"
	"storefront/internal/store"
)

// Materialize creates the order for a completed checkout session, or returns
// the one already stored for it with created=false. Line items and amounts
// come from the provider's record of the session, never from the cart.
//
// Only the unique index on sessionId arbitrates concurrent deliveries; the
// early lookup just saves a provider round trip on redelivery.
func (s *Service) Materialize(ctx context.Context, sessionID string) (models.Order, bool, error) {
	if sessionID == "" {
		return models.Order{}, false, apperr.Validation("session id is required")
	}

	existing, err := s.store.FindBySessionID(ctx, sessionID)
	if err == nil {
		metrics.OrdersMaterialized.WithLabelValues("duplicate").Inc()
		log.Printf("[ORDER] [INFO] session %s already materialized as %s", sessionID, existing.ID.Hex())
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Order{}, false, apperr.Internal("lookup order", err)
	}

	session, err := s.sessions.GetCheckoutSession(ctx, sessionID)
	if errors.Is(err, payment.ErrNotFound) {
		return models.Order{}, false, apperr.NotFound("checkout session not found")
	}
	if err != nil {
		return models.Order{}, false, apperr.Upstream("fetch checkout session", err)
	}

	order, err := s.buildOrder(ctx, session)
	if err != nil {
		return models.Order{}, false, err
	}

	stored, created, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		return models.Order{}, false, apperr.Internal("insert order", err)
	}
	if !created {
		metrics.OrdersMaterialized.WithLabelValues("duplicate").Inc()
		log.Printf("[ORDER] [INFO] session %s lost insert race, using %s", sessionID, stored.ID.Hex())
		return stored, false, nil
	}

	metrics.OrdersMaterialized.WithLabelValues("created").Inc()
	log.Printf("[ORDER] [INFO] order %s created for user %s (session %s, total %.2f)", stored.ID.Hex(), stored.UserID, sessionID, stored.Total)

	if err := s.mailer.SendOrderConfirmation(ctx, stored); err != nil {
		log.Printf("[ORDER] [WARN] confirmation email for %s not queued: %v", stored.ID.Hex(), err)
	}
	return stored, true, nil
}

func (s *Service) buildOrder(ctx context.Context, session *payment.Session) (models.Order, error) {
	meta, err := payment.DecodeSessionMetadata(session.Metadata)
	if err != nil {
		return models.Order{}, apperr.Validation("checkout session metadata: " + err.Error())
	}
	if len(session.LineItems) == 0 {
		return models.Order{}, apperr.Upstream("checkout session has no line items", nil)
	}
	if session.AmountSubtotal+session.AmountShipping+session.AmountTax != session.AmountTotal {
		return models.Order{}, apperr.Upstream("checkout session amounts do not add up", nil)
	}

	deliveryMethod, err := s.resolveDeliveryMethod(ctx, session, meta)
	if err != nil {
		return models.Order{}, err
	}

	items := make([]models.OrderItem, 0, len(session.LineItems))
	for _, li := range session.LineItems {
		unit := li.UnitAmount
		if unit == 0 && li.Quantity > 0 {
			unit = li.AmountTotal / li.Quantity
		}
		items = append(items, models.OrderItem{
			Name:      li.Name,
			UnitPrice: money.FromMinor(unit),
			Quantity:  int(li.Quantity),
			Image:     li.Image,
		})
	}

	status := models.StatusPending
	switch session.PaymentStatus {
	case payment.PaymentStatusPaid, payment.PaymentStatusNoPaymentRequired:
		status = models.StatusPaid
	}

	now := s.now()
	order := models.Order{
		SessionID:      session.ID,
		UserID:         meta.UserID,
		Email:          session.CustomerEmail,
		Items:          items,
		Subtotal:       money.FromMinor(session.AmountSubtotal),
		ShippingCost:   money.FromMinor(session.AmountShipping),
		Taxes:          money.FromMinor(session.AmountTax),
		Total:          money.FromMinor(session.AmountTotal),
		Currency:       session.Currency,
		DeliveryMethod: deliveryMethod,
		ShippingRateID: session.ShippingRateID,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if meta.HasRelay() {
		order.Relay = &models.Relay{ID: meta.RelayID, Name: meta.RelayName, Address: meta.RelayAddress}
	}
	if a := session.BillingAddress; a != nil {
		order.BillingAddress = &models.BillingAddress{
			Name:       session.CustomerName,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			PostalCode: a.PostalCode,
			State:      a.State,
			Country:    a.Country,
		}
	}
	return order, nil
}

// resolveDeliveryMethod prefers the rate the buyer actually paid for over the
// method recorded at session creation.
func (s *Service) resolveDeliveryMethod(ctx context.Context, session *payment.Session, meta payment.SessionMetadata) (string, error) {
	if session.ShippingRateID == "" {
		if meta.DeliveryMethod == "" {
			return "", apperr.Validation("checkout session has no delivery method")
		}
		return meta.DeliveryMethod, nil
	}

	code, err := s.rates.DeliveryMethodFor(ctx, session.ShippingRateID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) && meta.DeliveryMethod != "" {
			log.Printf("[ORDER] [WARN] rate %s unresolvable, falling back to session method %s", session.ShippingRateID, meta.DeliveryMethod)
			return meta.DeliveryMethod, nil
		}
		return "", err
	}
	if meta.DeliveryMethod != "" && code != meta.DeliveryMethod {
		log.Printf("[ORDER] [WARN] session %s rate %s maps to %s, session recorded %s", session.ID, session.ShippingRateID, code, meta.DeliveryMethod)
	}
	return code, nil
}
