// Package orders owns the order lifecycle after payment: materialization
// from provider data, relay attachment and administrator status changes.
package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/store"
)

// DeliveryResolver maps a shipping rate id to a delivery-method code,
// including for rates archived since the session was created.
type DeliveryResolver interface {
	DeliveryMethodFor(ctx context.Context, rateID string) (string, error)
}

type Service struct {
	store    store.OrderStore
	sessions payment.SessionAPI
	rates    DeliveryResolver
	mailer   notify.Mailer
	methods  config.DeliveryMethods
	now      func() time.Time
}

func NewService(orders store.OrderStore, sessions payment.SessionAPI, rates DeliveryResolver, mailer notify.Mailer, methods config.DeliveryMethods) *Service {
	return &Service{
		store:    orders,
		sessions: sessions,
		rates:    rates,
		mailer:   mailer,
		methods:  methods,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func parseOrderID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid order id")
	}
	return oid, nil
}

func (s *Service) loadByID(ctx context.Context, id string) (models.Order, error) {
	oid, err := parseOrderID(id)
	if err != nil {
		return models.Order{}, err
	}
	order, err := s.store.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return models.Order{}, apperr.Internal("load order", err)
	}
	return order, nil
}
