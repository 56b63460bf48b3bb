package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wichananm65/storefront-backend/internal/database"
)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(database.ProductsCollection)}
}

type productDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Images      []string             `bson:"images"`
	Category    string               `bson:"category"`
	Stock       int                  `bson:"stock"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func toDocument(p Product) productDocument {
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       database.Decimal128(p.Price),
		Images:      nonNil(p.Images),
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDocument) product() Product {
	return Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       database.FromDecimal128(d.Price),
		Images:      nonNil(d.Images),
		Category:    d.Category,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func filter(q Query) bson.M {
	f := bson.M{}
	if q.Search != "" {
		f["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}
	if q.Category != "" {
		f["category"] = q.Category
	}
	price := bson.M{}
	if q.Min != nil {
		price["$gte"] = database.Decimal128(*q.Min)
	}
	if q.Max != nil {
		price["$lte"] = database.Decimal128(*q.Max)
	}
	if len(price) > 0 {
		f["price"] = price
	}
	return f
}

func sortSpec(sort string) bson.D {
	switch sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	}
}

func (r *MongoRepository) List(ctx context.Context, q Query) ([]Product, int, error) {
	q = q.normalize()
	f := filter(q)

	total, err := r.coll.CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(sortSpec(q.Sort)).
		SetSkip(int64(q.offset())).
		SetLimit(int64(q.PageSize))
	cur, err := r.coll.Find(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.product())
	}
	return out, int(total), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Product, error) {
	var d productDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return d.product(), nil
}

func (r *MongoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.product()
	}
	return out, nil
}

func (r *MongoRepository) Seed(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(products))
	for i, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetUpdate(bson.M{"$setOnInsert": insertFields(toDocument(p))}).
			SetUpsert(true))
	}
	if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

// insertFields is d without _id, which the upsert filter already sets.
func insertFields(d productDocument) bson.M {
	return bson.M{
		"name":        d.Name,
		"description": d.Description,
		"price":       d.Price,
		"images":      d.Images,
		"category":    d.Category,
		"stock":       d.Stock,
		"createdAt":   d.CreatedAt,
		"updatedAt":   d.UpdatedAt,
	}
}
