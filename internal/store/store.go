// Package store persists orders and reads the product catalog.
package store

import (
	"context"
	"errors"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrRelayAlreadySet is returned when an order already carries a relay.
	ErrRelayAlreadySet = errors.New("relay already set")
	// ErrStatusChanged is returned when a conditional status update finds a
	// status other than the one it was conditioned on.
	ErrStatusChanged = errors.New("order status changed")
)

// OrderStore is the only writer of the orders collection. SessionID is
// unique: InsertOrder never creates a second order for the same session.
type OrderStore interface {
	// InsertOrder stores order and reports created=true, or returns the order
	// already stored for order.SessionID with created=false.
	InsertOrder(ctx context.Context, order models.Order) (stored models.Order, created bool, err error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	// SetRelay writes the relay only if the order has none yet.
	SetRelay(ctx context.Context, id primitive.ObjectID, relay models.Relay) (models.Order, error)
	// UpdateStatus moves from -> to only if the stored status is still from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (models.Order, error)
}

type ListFilter struct {
	UserID string
	Status models.OrderStatus
	Page   int64
	Limit  int64
}

// skip saturates at math.MaxInt64 instead of overflowing; a page past the
// end is simply empty.
func (f ListFilter) skip() int64 {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt64/f.Limit {
		return math.MaxInt64
	}
	return (f.Page - 1) * f.Limit
}

type ProductCatalog interface {
	// FindProducts returns the requested products keyed by id. Missing ids
	// are simply absent from the map.
	FindProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}
