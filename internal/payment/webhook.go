package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/order"
)

// Outcome is what a verified webhook event led to.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomePaid
	OutcomeReplay
	OutcomeUnresolved
	OutcomeStoreFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomePaid:
		return "paid"
	case OutcomeReplay:
		return "replay"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeStoreFailure:
		return "store_failure"
	default:
		return "ignored"
	}
}

// Webhook applies processor completion events to orders. It holds no state
// between calls.
type Webhook struct {
	orders    *order.Service
	processor Processor
	log       *slog.Logger
}

func NewWebhook(orders *order.Service, processor Processor, log *slog.Logger) *Webhook {
	return &Webhook{orders: orders, processor: processor, log: log}
}

// Handle verifies and applies one event. The only error it returns is a
// Processor error for a bad signature, in which case nothing was changed.
// Every other result must be acknowledged to the processor.
func (w *Webhook) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	ev, err := w.processor.ParseEvent(payload, signature)
	if err != nil {
		w.log.Warn("webhook signature verification failed", "error", err)
		return OutcomeIgnored, apperr.Wrap(apperr.KindProcessor, err, "Webhook signature verification failed")
	}
	log := w.log.With("event_id", ev.ID, "event_type", ev.Type, "session_id", ev.SessionID)
	if !ev.Succeeded() {
		log.Debug("webhook event ignored", "payment_status", ev.PaymentStatus)
		return OutcomeIgnored, nil
	}

	o, applied, err := w.markPaid(ctx, ev)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		log.Warn("webhook order not resolved", "order_id", ev.Metadata["orderId"],
			"error", apperr.New(apperr.KindReconciliationMiss, "no order for event"))
		return OutcomeUnresolved, nil
	case err != nil:
		log.Error("webhook mark paid", "order_id", ev.Metadata["orderId"], "error", err)
		return OutcomeStoreFailure, nil
	case !applied:
		log.Info("webhook replay, order already paid", "order_id", o.ID)
		return OutcomeReplay, nil
	}
	log.Info("order paid", "order_id", o.ID, "total", o.TotalPrice.StringFixed(2))
	return OutcomePaid, nil
}

// markPaid resolves the order by the id carried in metadata, falling back to
// the stored session id.
func (w *Webhook) markPaid(ctx context.Context, ev Event) (order.Order, bool, error) {
	if id := ev.Metadata["orderId"]; id != "" {
		o, applied, err := w.orders.MarkPaid(ctx, id, ev.Raw)
		if !errors.Is(err, apperr.ErrNotFound) {
			return o, applied, err
		}
	}
	found, err := w.orders.GetBySession(ctx, ev.SessionID)
	if err != nil {
		return order.Order{}, false, err
	}
	return w.orders.MarkPaid(ctx, found.ID, ev.Raw)
}
