package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	return &MongoRepository{coll: db.Collection(database.OrdersCollection)}
}

type itemDocument struct {
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Qty       int                  `bson:"qty"`
	Price     primitive.Decimal128 `bson:"price"`
	Image     string               `bson:"image,omitempty"`
}

type orderDocument struct {
	ID              string               `bson:"_id"`
	UserID          string               `bson:"user"`
	Items           []itemDocument       `bson:"orderItems"`
	ShippingAddress ShippingAddress      `bson:"shippingAddress"`
	PaymentMethod   string               `bson:"paymentMethod"`
	ItemsPrice      primitive.Decimal128 `bson:"itemsPrice"`
	TaxPrice        primitive.Decimal128 `bson:"taxPrice"`
	ShippingPrice   primitive.Decimal128 `bson:"shippingPrice"`
	TotalPrice      primitive.Decimal128 `bson:"totalPrice"`
	StripeSessionID string               `bson:"stripeSessionId,omitempty"`
	PaymentResult   bson.M               `bson:"paymentResult,omitempty"`
	IsPaid          bool                 `bson:"isPaid"`
	PaidAt          *time.Time           `bson:"paidAt,omitempty"`
	Status          string               `bson:"status"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toDocument(o Order) orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDocument{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			Price:     database.Decimal128(it.Price),
			Image:     it.Image,
		})
	}
	return orderDocument{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      database.Decimal128(o.ItemsPrice),
		TaxPrice:        database.Decimal128(o.TaxPrice),
		ShippingPrice:   database.Decimal128(o.ShippingPrice),
		TotalPrice:      database.Decimal128(o.TotalPrice),
		StripeSessionID: o.StripeSessionID,
		PaymentResult:   paymentDocument(o.PaymentResult),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (d orderDocument) order() Order {
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Qty,
			Price:     database.FromDecimal128(it.Price),
			Image:     it.Image,
		})
	}
	o := Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Items:           items,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		ItemsPrice:      database.FromDecimal128(d.ItemsPrice),
		TaxPrice:        database.FromDecimal128(d.TaxPrice),
		ShippingPrice:   database.FromDecimal128(d.ShippingPrice),
		TotalPrice:      database.FromDecimal128(d.TotalPrice),
		StripeSessionID: d.StripeSessionID,
		IsPaid:          d.IsPaid,
		PaidAt:          d.PaidAt,
		Status:          Status(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.PaymentResult != nil {
		if raw, err := bson.MarshalExtJSON(d.PaymentResult, false, false); err == nil {
			o.PaymentResult = raw
		}
	}
	return o
}

// paymentDocument stores the processor payload as a sub-document so it
// stays queryable. Payloads that are not a JSON object are dropped.
func paymentDocument(raw json.RawMessage) bson.M {
	if len(raw) == 0 {
		return nil
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil
	}
	return doc
}

func (r *MongoRepository) Create(ctx context.Context, o Order) (Order, error) {
	if _, err := r.coll.InsertOne(ctx, toDocument(o)); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindBySessionID(ctx context.Context, sessionID string) (Order, error) {
	return r.findOne(ctx, bson.M{"stripeSessionId": sessionID})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (Order, error) {
	var d orderDocument
	err := r.coll.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("find order: %w", err)
	}
	return d.order(), nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.order())
	}
	return orders, nil
}

func (r *MongoRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isPaid": false},
		bson.M{"$set": bson.M{"stripeSessionId": sessionID, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyPaid
}

// MarkPaid relies on FindOneAndUpdate being atomic for a single document:
// the isPaid filter and the $set are applied together.
func (r *MongoRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, payload json.RawMessage) (Order, bool, error) {
	set := bson.M{
		"isPaid":    true,
		"paidAt":    paidAt,
		"status":    string(StatusPaid),
		"updatedAt": paidAt,
	}
	if doc := paymentDocument(payload); doc != nil {
		set["paymentResult"] = doc
	}
	var d orderDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isPaid": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err == nil {
		return d.order(), true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, false, fmt.Errorf("mark order paid: %w", err)
	}
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	return existing, false, nil
}
