package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProcessor creates Stripe Checkout sessions and verifies Stripe webhooks.
type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProcessor builds a processor on its own API client. backends may be
// nil to use Stripe's default endpoints.
func NewStripeProcessor(secretKey, webhookSecret string, backends *stripe.Backends) *StripeProcessor {
	return &StripeProcessor{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProcessor) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Image != "" {
			product.Images = stripe.StringSlice([]string{li.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProcessor) ExpireSession(ctx context.Context, sessionID string) error {
	get := &stripe.CheckoutSessionParams{}
	get.Context = ctx
	s, err := p.api.CheckoutSessions.Get(sessionID, get)
	if err != nil {
		return fmt.Errorf("stripe get checkout session: %w", err)
	}
	switch s.Status {
	case stripe.CheckoutSessionStatusComplete:
		return ErrSessionCompleted
	case stripe.CheckoutSessionStatusExpired:
		return nil
	}

	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx
	if _, err := p.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return fmt.Errorf("stripe expire checkout session: %w", err)
	}
	return nil
}

func (p *StripeProcessor) ParseEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("verify stripe signature: %w", err)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type), Raw: json.RawMessage(payload)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	if out.Type == EventCheckoutCompleted || out.Type == EventAsyncPaymentSucceeded {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		out.SessionID = s.ID
		out.PaymentStatus = string(s.PaymentStatus)
		out.Metadata = s.Metadata
		if out.Metadata == nil {
			out.Metadata = map[string]string{}
		}
		if _, ok := out.Metadata["orderId"]; !ok && s.ClientReferenceID != "" {
			out.Metadata["orderId"] = s.ClientReferenceID
		}
	}
	return out, nil
}
