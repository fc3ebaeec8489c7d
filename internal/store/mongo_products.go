package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

const ProductsCollection = "products"

type MongoProducts struct {
	coll *mongo.Collection
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{coll: db.Collection(ProductsCollection)}
}

func (s *MongoProducts) FindProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{
		"_id":       bson.M{"$in": ids},
		"isDeleted": bson.M{"$ne": true},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// normalizeProductDocument tolerates legacy documents written by older admin
// tooling: snake_case sale price, string prices, string booleans and numeric
// stock of any width.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if legacy, ok := raw["sale_price"]; ok {
		if _, set := raw["salePrice"]; !set {
			raw["salePrice"] = legacy
		}
		delete(raw, "sale_price")
	}

	for _, key := range []string{"price", "salePrice"} {
		switch typed := raw[key].(type) {
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(typed))
			if err != nil {
				return models.Product{}, fmt.Errorf("product %v: invalid %s %q", raw["_id"], key, typed)
			}
			raw[key] = d.InexactFloat64()
		case int32:
			raw[key] = float64(typed)
		case int64:
			raw[key] = float64(typed)
		case primitive.Decimal128:
			d, err := decimal.NewFromString(typed.String())
			if err != nil {
				return models.Product{}, fmt.Errorf("product %v: invalid %s", raw["_id"], key)
			}
			raw[key] = d.InexactFloat64()
		}
	}

	for _, key := range []string{"isActive", "saleEnabled"} {
		if val, ok := raw[key]; ok {
			switch typed := val.(type) {
			case string:
				raw[key] = typed == "true"
			case bool:
			default:
				raw[key] = false
			}
		}
	}
	if _, ok := raw["isActive"]; !ok {
		raw["isActive"] = true
	}

	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
			raw["stock"] = typed
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
