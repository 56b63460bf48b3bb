package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wichananm65/storefront-backend/internal/database"
)

type MongoRepository struct {
	lists *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{lists: db.Collection(database.WishlistsCollection)}
}

type entryDocument struct {
	Product string    `bson:"product"`
	AddedAt time.Time `bson:"addedAt"`
}

type wishlistDocument struct {
	ID        string          `bson:"_id"`
	User      string          `bson:"user"`
	Products  []entryDocument `bson:"products"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

func (d wishlistDocument) wishlist() Wishlist {
	entries := make([]Entry, 0, len(d.Products))
	for _, p := range d.Products {
		entries = append(entries, Entry{ProductID: p.Product, AddedAt: p.AddedAt})
	}
	return Wishlist{
		ID:        d.ID,
		UserID:    d.User,
		Products:  Dedupe(entries),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func entryDocuments(entries []Entry) []entryDocument {
	docs := make([]entryDocument, 0, len(entries))
	for _, e := range Dedupe(entries) {
		docs = append(docs, entryDocument{Product: e.ProductID, AddedAt: e.AddedAt})
	}
	return docs
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (r *MongoRepository) Ensure(ctx context.Context, w Wishlist) (Wishlist, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       w.ID,
		"products":  entryDocuments(w.Products),
		"createdAt": w.CreatedAt,
		"updatedAt": w.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc wishlistDocument
	if err := r.lists.FindOneAndUpdate(ctx, bson.M{"user": w.UserID}, update, opts).Decode(&doc); err != nil {
		return Wishlist{}, fmt.Errorf("create wishlist: %w", err)
	}
	return doc.wishlist(), nil
}

func (r *MongoRepository) AddProduct(ctx context.Context, userID string, e Entry) (Wishlist, error) {
	filter := bson.M{"user": userID, "products.product": bson.M{"$ne": e.ProductID}}
	update := bson.M{
		"$push": bson.M{"products": entryDocument{Product: e.ProductID, AddedAt: e.AddedAt}},
		"$set":  bson.M{"updatedAt": e.AddedAt},
	}
	var doc wishlistDocument
	err := r.lists.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.get(ctx, userID)
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("add to wishlist: %w", err)
	}
	return doc.wishlist(), nil
}

func (r *MongoRepository) RemoveProduct(ctx context.Context, userID, productID string, now time.Time) (Wishlist, error) {
	update := bson.M{
		"$pull": bson.M{"products": bson.M{"product": productID}},
		"$set":  bson.M{"updatedAt": now},
	}
	var doc wishlistDocument
	err := r.lists.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, returnAfter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Wishlist{}, ErrNotFound
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("remove from wishlist: %w", err)
	}
	return doc.wishlist(), nil
}

func (r *MongoRepository) get(ctx context.Context, userID string) (Wishlist, error) {
	var doc wishlistDocument
	err := r.lists.FindOne(ctx, bson.M{"user": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Wishlist{}, ErrNotFound
	}
	if err != nil {
		return Wishlist{}, fmt.Errorf("load wishlist: %w", err)
	}
	return doc.wishlist(), nil
}
