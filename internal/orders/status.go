package orders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/apperr"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/store"
)

// transitions lists every legal edge. delivered and cancelled are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending: {models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:    {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped: {models.StatusDelivered},
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionStatus moves an order to target. The write is conditioned on the
// status read here, so two administrators racing on one order cannot both win.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, target models.OrderStatus) (models.Order, error) {
	if !target.Valid() {
		return models.Order{}, apperr.Validation(fmt.Sprintf("unknown status %q", target))
	}

	order, err := s.loadByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	from := order.Status
	if !CanTransition(from, target) {
		metrics.StatusTransitions.WithLabelValues(string(from), string(target), "illegal").Inc()
		return models.Order{}, apperr.Conflict(fmt.Sprintf("cannot move order from %s to %s", from, target))
	}

	updated, err := s.store.UpdateStatus(ctx, order.ID, from, target)
	switch {
	case errors.Is(err, store.ErrStatusChanged):
		metrics.StatusTransitions.WithLabelValues(string(from), string(target), "stale").Inc()
		return models.Order{}, apperr.Conflict("order status changed concurrently, reload and retry")
	case errors.Is(err, store.ErrNotFound):
		return models.Order{}, apperr.NotFound("order not found")
	case err != nil:
		return models.Order{}, apperr.Internal("update order status", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(from), string(target), "ok").Inc()
	log.Printf("[ORDER] [INFO] order %s moved %s -> %s", updated.ID.Hex(), from, target)
	return updated, nil
}
