package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wichananm65/storefront-backend/internal/database"
)

// MongoRepository reads and writes the cart array embedded in user documents.
type MongoRepository struct {
	users *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{users: db.Collection(database.UsersCollection)}
}

type itemDocument struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Qty       int                  `bson:"qty"`
	Price     primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image,omitempty"`
}

func (r *MongoRepository) Get(ctx context.Context, userID string) ([]Item, error) {
	var doc struct {
		Cart []itemDocument `bson:"cart"`
	}
	err := r.users.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(bson.M{"cart": 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items := make([]Item, 0, len(doc.Cart))
	for _, d := range doc.Cart {
		items = append(items, Item{
			ProductID: d.ProductID,
			Name:      d.Name,
			Qty:       d.Qty,
			Price:     database.FromDecimal128(d.Price),
			Image:     d.Image,
		})
	}
	return items, nil
}

func (r *MongoRepository) Save(ctx context.Context, userID string, items []Item) error {
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			Price:     database.Decimal128(it.Price),
			Image:     it.Image,
		})
	}
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": docs, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
