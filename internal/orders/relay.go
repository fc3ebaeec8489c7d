package orders

import (
	"context"
	"errors"
	"log"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store"
)

type RelayInput struct {
	SessionID string
	UserID    string
	Relay     models.Relay
}

// AttachRelay sets the pickup point of the order paid through SessionID.
// The buyer can get here before the webhook has been processed, so a missing
// order is a retryable NotFound. A relay is attached at most once.
func (s *Service) AttachRelay(ctx context.Context, in RelayInput) (models.Order, error) {
	relay := models.Relay{
		ID:      strings.TrimSpace(in.Relay.ID),
		Name:    strings.TrimSpace(in.Relay.Name),
		Address: strings.TrimSpace(in.Relay.Address),
	}
	if strings.TrimSpace(in.SessionID) == "" {
		return models.Order{}, apperr.Validation("session id is required")
	}
	if relay.ID == "" || relay.Name == "" || relay.Address == "" {
		return models.Order{}, apperr.Validation("relay requires id, name and address")
	}

	order, err := s.store.FindBySessionID(ctx, in.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.NotFound("order not found for session")
	}
	if err != nil {
		return models.Order{}, apperr.Internal("load order", err)
	}

	if order.UserID != in.UserID {
		log.Printf("[ORDER] [WARN] user %s tried to attach relay to order %s", in.UserID, order.ID.Hex())
		return models.Order{}, apperr.Forbidden("forbidden")
	}
	if method, ok := s.methods.Lookup(order.DeliveryMethod); ok && !method.RequiresRelay {
		return models.Order{}, apperr.Validation("order delivery method does not use a relay")
	}
	if order.Relay != nil {
		return models.Order{}, apperr.Conflict("relay already attached")
	}

	updated, err := s.store.SetRelay(ctx, order.ID, relay)
	switch {
	case errors.Is(err, store.ErrRelayAlreadySet):
		return models.Order{}, apperr.Conflict("relay already attached")
	case errors.Is(err, store.ErrNotFound):
		return models.Order{}, apperr.NotFound("order not found for session")
	case err != nil:
		return models.Order{}, apperr.Internal("attach relay", err)
	}

	log.Printf("[ORDER] [INFO] relay %s attached to order %s", relay.ID, updated.ID.Hex())
	return updated, nil
}
