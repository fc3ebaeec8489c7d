package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Memory is an in-process OrderStore and ProductCatalog. The session index
// plays the role of the unique index in MongoDB.
type Memory struct {
	mu        sync.Mutex
	orders    map[primitive.ObjectID]models.Order
	bySession map[string]primitive.ObjectID
	products  map[primitive.ObjectID]models.Product
}

func NewMemory() *Memory {
	return &Memory{
		orders:    map[primitive.ObjectID]models.Order{},
		bySession: map[string]primitive.ObjectID{},
		products:  map[primitive.ObjectID]models.Product{},
	}
}

func (m *Memory) PutProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = p
	return p
}

func (m *Memory) FindProducts(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok && !p.IsDeleted {
			out[id] = p
		}
	}
	return out, nil
}

func (m *Memory) InsertOrder(_ context.Context, order models.Order) (models.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.bySession[order.SessionID]; ok {
		return cloneOrder(m.orders[id]), false, nil
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order = cloneOrder(order)
	m.orders[order.ID] = order
	m.bySession[order.SessionID] = order.ID
	return cloneOrder(order), true, nil
}

func (m *Memory) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *Memory) FindBySessionID(_ context.Context, sessionID string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.bySession[sessionID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(m.orders[id]), nil
}

func (m *Memory) List(_ context.Context, filter ListFilter) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]models.Order, 0)
	for _, o := range m.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.Hex() > matched[j].ID.Hex()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.skip()
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}
	out := make([]models.Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, cloneOrder(o))
	}
	return out, total, nil
}

func (m *Memory) SetRelay(_ context.Context, id primitive.ObjectID, relay models.Relay) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	if o.Relay != nil {
		return models.Order{}, ErrRelayAlreadySet
	}
	o.Relay = &relay
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o
	return cloneOrder(o), nil
}

func (m *Memory) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	if o.Status != from {
		return models.Order{}, ErrStatusChanged
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o
	return cloneOrder(o), nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	if o.Relay != nil {
		r := *o.Relay
		o.Relay = &r
	}
	if o.BillingAddress != nil {
		a := *o.BillingAddress
		o.BillingAddress = &a
	}
	return o
}
