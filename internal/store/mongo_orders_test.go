package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"storefront/internal/models"
)

const ordersNS = "storefront.orders"

func newMockOrders(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func sampleOrder(status models.OrderStatus) models.Order {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Order{
		ID:             primitive.NewObjectID(),
		SessionID:      "cs_test_1",
		UserID:         "u1",
		Items:          []models.OrderItem{{Name: "Bag A", UnitPrice: 50, Quantity: 1}},
		Subtotal:       50,
		Total:          55,
		Currency:       "eur",
		DeliveryMethod: "relay",
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// orderDoc encodes an order the way the driver would return it.
func orderDoc(t *testing.T, order models.Order) bson.D {
	t.Helper()
	raw, err := bson.Marshal(order)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestMongoInsertOrder(t *testing.T) {
	mt := newMockOrders(t)

	mt.Run("created", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		order := sampleOrder(models.StatusPaid)
		order.ID = primitive.NilObjectID
		stored, created, err := s.InsertOrder(context.Background(), order)
		require.NoError(t, err)
		assert.True(t, created)
		assert.False(t, stored.ID.IsZero())
	})

	mt.Run("duplicate session returns stored order", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		existing := sampleOrder(models.StatusPaid)
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: storefront.orders index: sessionId_unique"}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(t, existing)),
		)

		retry := sampleOrder(models.StatusPaid)
		stored, created, err := s.InsertOrder(context.Background(), retry)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, stored.ID)
		assert.Equal(t, existing.SessionID, stored.SessionID)
	})

	mt.Run("other write errors surface", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "Document failed validation"}))

		_, created, err := s.InsertOrder(context.Background(), sampleOrder(models.StatusPaid))
		require.Error(t, err)
		assert.False(t, created)
	})
}

func TestMongoFindBySessionIDMissing(t *testing.T) {
	mt := newMockOrders(t)

	mt.Run("missing", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch))

		_, err := s.FindBySessionID(context.Background(), "cs_nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongoUpdateStatus(t *testing.T) {
	mt := newMockOrders(t)

	mt.Run("applied", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		shipped := sampleOrder(models.StatusShipped)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc(t, shipped)}))

		out, err := s.UpdateStatus(context.Background(), shipped.ID, models.StatusPaid, models.StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, models.StatusShipped, out.Status)
	})

	mt.Run("status moved underneath", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		current := sampleOrder(models.StatusCancelled)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(t, current)),
		)

		_, err := s.UpdateStatus(context.Background(), current.ID, models.StatusPaid, models.StatusShipped)
		assert.ErrorIs(t, err, ErrStatusChanged)
	})

	mt.Run("order gone", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
		)

		_, err := s.UpdateStatus(context.Background(), primitive.NewObjectID(), models.StatusPaid, models.StatusShipped)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongoSetRelay(t *testing.T) {
	mt := newMockOrders(t)
	relay := models.Relay{ID: "R-1", Name: "Tabac du Port", Address: "1 quai Est"}

	mt.Run("first relay wins", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		withRelay := sampleOrder(models.StatusPaid)
		withRelay.Relay = &relay
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc(t, withRelay)}))

		out, err := s.SetRelay(context.Background(), withRelay.ID, relay)
		require.NoError(t, err)
		require.NotNil(t, out.Relay)
		assert.Equal(t, "R-1", out.Relay.ID)
	})

	mt.Run("relay already set", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		existing := sampleOrder(models.StatusPaid)
		existing.Relay = &models.Relay{ID: "R-0", Name: "Other", Address: "2 rue Ouest"}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(t, existing)),
		)

		_, err := s.SetRelay(context.Background(), existing.ID, relay)
		assert.ErrorIs(t, err, ErrRelayAlreadySet)
	})

	mt.Run("order gone", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
		)

		_, err := s.SetRelay(context.Background(), primitive.NewObjectID(), relay)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMongoList(t *testing.T) {
	mt := newMockOrders(t)

	mt.Run("page with total", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		first := sampleOrder(models.StatusPaid)
		second := sampleOrder(models.StatusShipped)
		second.SessionID = "cs_test_2"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(t, first), orderDoc(t, second)),
		)

		orders, total, err := s.List(context.Background(), ListFilter{UserID: "u1", Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 7, total)
		require.Len(t, orders, 2)
		assert.Equal(t, "cs_test_2", orders[1].SessionID)
	})

	mt.Run("empty page is an empty slice", func(mt *mtest.T) {
		s := &MongoOrders{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(0)}}),
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
		)

		orders, total, err := s.List(context.Background(), ListFilter{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})
}
