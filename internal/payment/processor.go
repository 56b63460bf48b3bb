// Package payment builds hosted checkout sessions for orders and applies the
// processor's signed completion events to them.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	EventCheckoutCompleted         = "checkout.session.completed"
	EventAsyncPaymentSucceeded     = "checkout.session.async_payment_succeeded"
	PaymentStatusPaid              = "paid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// LineItem is one row on the hosted payment page. UnitAmount is in the
// currency's minor unit.
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	OrderID    string
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified processor event reduced to what order reconciliation needs.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	PaymentStatus string
	Metadata      map[string]string
	Raw           json.RawMessage
}

// Succeeded reports whether the event completes payment for its session.
func (e Event) Succeeded() bool {
	if e.Type != EventCheckoutCompleted && e.Type != EventAsyncPaymentSucceeded {
		return false
	}
	return e.PaymentStatus == PaymentStatusPaid || e.PaymentStatus == PaymentStatusNoPaymentRequired
}

// ErrSessionCompleted is returned by ExpireSession when the customer already
// finished the session.
var ErrSessionCompleted = errors.New("payment session already completed")

// Processor is an external payment provider with hosted checkout pages.
type Processor interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	// ExpireSession closes an open session so it can no longer be paid.
	// Sessions that already expired are not an error.
	ExpireSession(ctx context.Context, sessionID string) error
	// ParseEvent verifies signature over payload and decodes the event.
	ParseEvent(payload []byte, signature string) (Event, error)
}

// Currencies whose minor unit is not a hundredth. Three-decimal amounts must
// stay divisible by ten.
var (
	zeroDecimal = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimal = map[string]bool{"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true}
)

// minorUnits converts an amount to the smallest unit of currency.
func minorUnits(currency string, d decimal.Decimal) int64 {
	currency = strings.ToLower(currency)
	switch {
	case zeroDecimal[currency]:
		return d.Round(0).IntPart()
	case threeDecimal[currency]:
		return d.Round(2).Shift(3).IntPart()
	default:
		return d.Shift(2).Round(0).IntPart()
	}
}
