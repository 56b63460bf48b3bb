package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-backend/internal/order"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeProcessor accepts the signature "valid" and issues sequential session ids.
type fakeProcessor struct {
	mu          sync.Mutex
	requests    []SessionRequest
	err         error
	sawDeadline bool
	expired     []string
	completed   map[string]bool
	expireErr   error
}

func (f *fakeProcessor) ExpireSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed[sessionID] {
		return ErrSessionCompleted
	}
	if f.expireErr != nil {
		return f.expireErr
	}
	f.expired = append(f.expired, sessionID)
	return nil
}

func (f *fakeProcessor) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.sawDeadline = ctx.Deadline()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return Session{}, f.err
	}
	id := fmt.Sprintf("cs_test_%d", len(f.requests))
	return Session{ID: id, URL: "https://pay.example/" + id}, nil
}

func (f *fakeProcessor) ParseEvent(payload []byte, signature string) (Event, error) {
	if signature != "valid" {
		return Event{}, errors.New("signature mismatch")
	}
	var body struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string            `json:"id"`
				PaymentStatus string            `json:"payment_status"`
				Metadata      map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Event{}, err
	}
	return Event{
		ID:            body.ID,
		Type:          body.Type,
		SessionID:     body.Data.Object.ID,
		PaymentStatus: body.Data.Object.PaymentStatus,
		Metadata:      body.Data.Object.Metadata,
		Raw:           payload,
	}, nil
}

func (f *fakeProcessor) lastRequest() SessionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

var testPolicy = order.Policy{TaxRate: decimal.RequireFromString("0.10"), ShippingFlat: decimal.NewFromInt(10)}

func newOrders() (*order.Service, *order.InMemoryRepository) {
	repo := order.NewInMemoryRepository()
	return order.NewService(repo, testPolicy, order.WithLogger(discard)), repo
}

func cartRequest() CheckoutRequest {
	return CheckoutRequest{
		Items: []order.Item{{ProductID: "p1", Name: "Bowl", Qty: 2, Price: decimal.NewFromInt(100), Image: "https://img.example/bowl.jpg"}},
		ShippingAddress: order.ShippingAddress{
			Address: "1 Main St", City: "Town", PostalCode: "10110", Country: "TH",
		},
		PaymentMethod: "card",
	}
}
