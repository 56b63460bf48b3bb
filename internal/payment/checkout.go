package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/order"
)

// Config holds the checkout settings taken from the process configuration.
type Config struct {
	Currency  string
	ClientURL string
	Timeout   time.Duration
}

type CheckoutRequest struct {
	// OrderID retries payment for an existing unpaid order instead of creating one.
	OrderID         string                `json:"orderId,omitempty"`
	Items           []order.Item          `json:"orderItems"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	// AddressID selects a saved address and overrides ShippingAddress.
	AddressID     string `json:"addressId,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
}

// AddressBook resolves saved shipping addresses.
type AddressBook interface {
	Shipping(ctx context.Context, userID, id string) (order.ShippingAddress, error)
}

type CheckoutResult struct {
	URL       string      `json:"url,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	OrderID   string      `json:"orderId"`
	Order     order.Order `json:"order"`
}

// CheckoutError reports a failure after the order was persisted. The order
// stays Pending and can be retried with OrderID.
type CheckoutError struct {
	OrderID string
	Err     error
}

func (e *CheckoutError) Error() string { return e.Err.Error() }

func (e *CheckoutError) Unwrap() error { return e.Err }

// Builder turns a cart into a persisted order and, when a processor is
// configured, a hosted payment session for it.
type Builder struct {
	orders    *order.Service
	processor Processor
	addresses AddressBook
	cfg       Config
	log       *slog.Logger
}

// NewBuilder returns a builder. A nil processor selects the variant without
// external payment: orders are created Confirmed and no session is requested.
func NewBuilder(orders *order.Service, processor Processor, cfg Config, log *slog.Logger) *Builder {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Builder{orders: orders, processor: processor, cfg: cfg, log: log}
}

// WithAddressBook lets checkout requests refer to saved addresses by id.
func (b *Builder) WithAddressBook(book AddressBook) *Builder {
	b.addresses = book
	return b
}

func (b *Builder) Checkout(ctx context.Context, userID string, req CheckoutRequest) (CheckoutResult, error) {
	o, err := b.prepare(ctx, userID, req)
	if err != nil {
		return CheckoutResult{}, err
	}
	res := CheckoutResult{OrderID: o.ID, Order: o}
	if b.processor == nil {
		return res, nil
	}

	sctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	if o.StripeSessionID != "" {
		if err := b.processor.ExpireSession(sctx, o.StripeSessionID); err != nil {
			if errors.Is(err, ErrSessionCompleted) {
				return CheckoutResult{}, apperr.New(apperr.KindConflict, "payment for this order is already being processed")
			}
			b.log.Warn("expire previous payment session", "order_id", o.ID, "session_id", o.StripeSessionID, "error", err)
			return CheckoutResult{}, &CheckoutError{
				OrderID: o.ID,
				Err:     apperr.Wrap(apperr.KindProcessor, err, "previous payment session could not be closed"),
			}
		}
	}
	session, err := b.processor.CreateSession(sctx, b.sessionRequest(o))
	if err != nil {
		b.log.Warn("create payment session", "order_id", o.ID, "error", err)
		return CheckoutResult{}, &CheckoutError{
			OrderID: o.ID,
			Err:     apperr.Wrap(apperr.KindProcessor, err, "payment session could not be created"),
		}
	}
	if err := b.orders.AttachSession(ctx, o.ID, session.ID); err != nil {
		b.log.Error("attach payment session", "order_id", o.ID, "session_id", session.ID, "error", err)
		return CheckoutResult{}, &CheckoutError{OrderID: o.ID, Err: err}
	}

	o.StripeSessionID = session.ID
	res.Order = o
	res.SessionID = session.ID
	res.URL = session.URL
	return res, nil
}

// prepare creates the order, or loads it when the request retries one.
func (b *Builder) prepare(ctx context.Context, userID string, req CheckoutRequest) (order.Order, error) {
	if req.OrderID == "" {
		status := order.StatusPending
		if b.processor == nil {
			status = order.StatusConfirmed
		}
		shipping := req.ShippingAddress
		if req.AddressID != "" {
			if b.addresses == nil {
				return order.Order{}, apperr.Validation("saved addresses are not available")
			}
			saved, err := b.addresses.Shipping(ctx, userID, req.AddressID)
			if err != nil {
				return order.Order{}, err
			}
			shipping = saved
		}
		return b.orders.Create(ctx, userID, order.Draft{
			Items:           req.Items,
			ShippingAddress: shipping,
			PaymentMethod:   req.PaymentMethod,
		}, status)
	}

	o, err := b.orders.Get(ctx, userID, req.OrderID)
	if err != nil {
		return order.Order{}, err
	}
	if b.processor == nil {
		return order.Order{}, apperr.Validation("online payment is not enabled")
	}
	if o.IsPaid || o.Status != order.StatusPending {
		return order.Order{}, apperr.New(apperr.KindConflict, "order is not awaiting payment")
	}
	return o, nil
}

func (b *Builder) sessionRequest(o order.Order) SessionRequest {
	items := make([]LineItem, 0, len(o.Items)+2)
	for _, it := range o.Items {
		items = append(items, LineItem{
			Name:       it.Name,
			Image:      publicImage(it.Image),
			UnitAmount: minorUnits(b.cfg.Currency, it.Price),
			Quantity:   int64(it.Qty),
		})
	}
	if o.TaxPrice.IsPositive() {
		items = append(items, LineItem{Name: "Tax", UnitAmount: minorUnits(b.cfg.Currency, o.TaxPrice), Quantity: 1})
	}
	if o.ShippingPrice.IsPositive() {
		items = append(items, LineItem{Name: "Shipping", UnitAmount: minorUnits(b.cfg.Currency, o.ShippingPrice), Quantity: 1})
	}
	base := strings.TrimRight(b.cfg.ClientURL, "/")
	return SessionRequest{
		OrderID:    o.ID,
		Currency:   b.cfg.Currency,
		LineItems:  items,
		SuccessURL: base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/cart",
		Metadata:   map[string]string{"orderId": o.ID, "userId": o.UserID},
	}
}

// publicImage drops relative image paths, which the processor cannot fetch.
func publicImage(src string) string {
	if strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://") {
		return src
	}
	return ""
}

// orderIDOf returns the order a checkout failure left behind, if any.
func orderIDOf(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.OrderID
	}
	return ""
}
