package orders

import (
	"context"
	"errors"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store"
)

type Page struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int64          `json:"page"`
	Limit  int64          `json:"limit"`
}

// GetForUser returns an order only to its buyer.
func (s *Service) GetForUser(ctx context.Context, orderID, userID string) (models.Order, error) {
	order, err := s.loadByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.UserID != userID {
		return models.Order{}, apperr.Forbidden("forbidden")
	}
	return order, nil
}

// GetBySessionForUser is polled by the success page until the webhook has
// produced the order.
func (s *Service) GetBySessionForUser(ctx context.Context, sessionID, userID string) (models.Order, error) {
	if sessionID == "" {
		return models.Order{}, apperr.Validation("sessionId is required")
	}
	order, err := s.store.FindBySessionID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.NotFound("order not found for session")
	}
	if err != nil {
		return models.Order{}, apperr.Internal("load order", err)
	}
	if order.UserID != userID {
		return models.Order{}, apperr.Forbidden("forbidden")
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (models.Order, error) {
	return s.loadByID(ctx, orderID)
}

func (s *Service) ListForUser(ctx context.Context, userID string, page, limit int64) (Page, error) {
	return s.list(ctx, store.ListFilter{UserID: userID, Page: page, Limit: limit})
}

func (s *Service) List(ctx context.Context, status models.OrderStatus, page, limit int64) (Page, error) {
	if status != "" && !status.Valid() {
		return Page{}, apperr.Validation("unknown status filter")
	}
	return s.list(ctx, store.ListFilter{Status: status, Page: page, Limit: limit})
}

func (s *Service) list(ctx context.Context, filter store.ListFilter) (Page, error) {
	orders, total, err := s.store.List(ctx, filter)
	if err != nil {
		return Page{}, apperr.Internal("list orders", err)
	}
	return Page{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
