package user

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/cart"
)

// CartMerger folds the cart a client kept while logged out into the
// server-side cart.
type CartMerger interface {
	Merge(ctx context.Context, userID string, items []cart.Item) ([]cart.Item, error)
}

type Handler struct {
	service *Service
	issuer  *auth.Issuer
	carts   CartMerger
}

func NewHandler(s *Service, issuer *auth.Issuer, carts CartMerger) *Handler {
	return &Handler{service: s, issuer: issuer, carts: carts}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/users/register", h.register)
	app.Post("/api/v1/users/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/users/profile", h.profile)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Cart     []cart.ClientItem `json:"cart"`
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	u, err := h.service.Register(c.UserContext(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	token, err := h.issuer.IssueToken(u.ID, u.Email)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"_id":     u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
		"token":   token,
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	u, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	token, err := h.issuer.IssueToken(u.ID, u.Email)
	if err != nil {
		return apperr.Respond(c, err)
	}

	items, err := h.carts.Merge(c.UserContext(), u.ID, cart.FromClient(payload.Cart))
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"_id":     u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
		"token":   token,
		"cart":    items,
	})
}

func (h *Handler) profile(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	u, err := h.service.GetByID(c.UserContext(), userID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(u)
}
