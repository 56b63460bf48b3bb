package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wichananm65/storefront-backend/internal/database"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type MongoRepository struct {
	addresses *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{addresses: db.Collection(database.AddressesCollection)}
}

type addressDocument struct {
	ID         string    `bson:"_id"`
	User       string    `bson:"user"`
	Label      string    `bson:"label"`
	Phone      string    `bson:"phone"`
	Address    string    `bson:"address"`
	City       string    `bson:"city"`
	PostalCode string    `bson:"postalCode"`
	Country    string    `bson:"country"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func toDocument(a Address) addressDocument {
	return addressDocument{
		ID:         a.ID,
		User:       a.UserID,
		Label:      a.Label,
		Phone:      a.Phone,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (d addressDocument) address() Address {
	return Address{
		ID:     d.ID,
		UserID: d.User,
		Label:  d.Label,
		Phone:  d.Phone,
		ShippingAddress: order.ShippingAddress{
			Address:    d.Address,
			City:       d.City,
			PostalCode: d.PostalCode,
			Country:    d.Country,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r *MongoRepository) List(ctx context.Context, userID string) ([]Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.addresses.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	var docs []addressDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	out := make([]Address, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.address())
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, userID, id string) (Address, error) {
	var doc addressDocument
	err := r.addresses.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, fmt.Errorf("load address: %w", err)
	}
	return doc.address(), nil
}

func (r *MongoRepository) Create(ctx context.Context, a Address) error {
	if _, err := r.addresses.InsertOne(ctx, toDocument(a)); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, a Address) error {
	res, err := r.addresses.UpdateOne(ctx, bson.M{"_id": a.ID, "user": a.UserID}, bson.M{"$set": bson.M{
		"label":      a.Label,
		"phone":      a.Phone,
		"address":    a.Address,
		"city":       a.City,
		"postalCode": a.PostalCode,
		"country":    a.Country,
		"updatedAt":  a.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.addresses.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
