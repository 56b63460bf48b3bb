package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type Handler struct {
	builder *Builder
	webhook *Webhook
	orders  *order.Service
}

// NewHandler wires the payment routes. webhook may be nil when no processor
// is configured; the webhook route is then not registered.
func NewHandler(builder *Builder, webhook *Webhook, orders *order.Service) *Handler {
	return &Handler{builder: builder, webhook: webhook, orders: orders}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	if h.webhook != nil {
		app.Post("/api/v1/payment/webhook", h.handleWebhook)
	}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payment/create-checkout-session", h.createCheckoutSession)
	app.Post("/api/v1/payment/checkout", h.demoCheckout)
	app.Get("/api/v1/payment/order/:orderId", h.getOrder)
}

func (h *Handler) createCheckoutSession(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(CheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	res, err := h.builder.Checkout(c.UserContext(), userID, *payload)
	if err != nil {
		if id := orderIDOf(err); id != "" {
			return c.Status(apperr.Status(err)).JSON(fiber.Map{"message": apperr.Message(err), "orderId": id})
		}
		return apperr.Respond(c, err)
	}
	return c.JSON(res)
}

// handleWebhook reads the raw body: the signature covers the exact bytes sent.
func (h *Handler) handleWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if _, err := h.webhook.Handle(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": apperr.Message(err)})
	}
	return c.JSON(fiber.Map{"received": true})
}

type demoProduct struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}

type demoCheckoutRequest struct {
	Products        []demoProduct         `json:"products"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
}

// demoCheckout confirms an order synchronously without any processor.
func (h *Handler) demoCheckout(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	payload := new(demoCheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if len(payload.Products) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid products data"})
	}

	items := make([]order.Item, 0, len(payload.Products))
	for _, p := range payload.Products {
		items = append(items, order.Item{ProductID: p.ID, Name: p.Name, Qty: p.Quantity, Price: p.Price, Image: p.Image})
	}
	o, err := h.orders.Create(c.UserContext(), userID, order.Draft{
		Items:           items,
		ShippingAddress: payload.ShippingAddress,
		PaymentMethod:   "Demo Payment",
	}, order.StatusConfirmed)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order confirmed",
		"orderId": o.ID,
		"status":  o.Status,
		"order":   o,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	o, err := h.orders.Get(c.UserContext(), userID, c.Params("orderId"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(o)
}
