package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const OrdersCollection = "orders"

// MongoOrders relies on the sessionId_unique index created by
// database.EnsureOrderIndexes; without it InsertOrder is not idempotent.
type MongoOrders struct {
	coll *mongo.Collection
}

func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{coll: db.Collection(OrdersCollection)}
}

func (s *MongoOrders) InsertOrder(ctx context.Context, order models.Order) (models.Order, bool, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, order)
	if err == nil {
		return order, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return models.Order{}, false, err
	}

	existing, err := s.FindBySessionID(ctx, order.SessionID)
	if err != nil {
		return models.Order{}, false, err
	}
	return existing, false, nil
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoOrders) FindBySessionID(ctx context.Context, sessionID string) (models.Order, error) {
	return s.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (s *MongoOrders) findOne(ctx context.Context, filter bson.M) (models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, filter).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrNotFound
	}
	return order, err
}

func (s *MongoOrders) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.skip())
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *MongoOrders) SetRelay(ctx context.Context, id primitive.ObjectID, relay models.Relay) (models.Order, error) {
	filter := bson.M{"_id": id, "relay": nil}
	update := bson.M{"$set": bson.M{"relay": relay, "updatedAt": time.Now().UTC()}}
	return s.conditionalUpdate(ctx, id, filter, update, ErrRelayAlreadySet)
}

func (s *MongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (models.Order, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	return s.conditionalUpdate(ctx, id, filter, update, ErrStatusChanged)
}

// conditionalUpdate applies update only when filter still matches. A miss is
// reported as ErrNotFound if the order is gone, conflictErr otherwise.
func (s *MongoOrders) conditionalUpdate(ctx context.Context, id primitive.ObjectID, filter, update bson.M, conflictErr error) (models.Order, error) {
	var order models.Order
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, err
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		return models.Order{}, err
	}
	return models.Order{}, conflictErr
}
