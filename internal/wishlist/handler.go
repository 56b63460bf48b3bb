package wishlist

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/wishlist/my-wishlist", h.getWishlist)
	app.Post("/api/v1/wishlist/add/:productId", h.addProduct)
	app.Delete("/api/v1/wishlist/remove/:productId", h.removeProduct)
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	w, err := h.service.Get(c.UserContext(), userID)
	return h.respond(c, w, err)
}

func (h *Handler) addProduct(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	w, err := h.service.Add(c.UserContext(), userID, utils.CopyString(c.Params("productId")))
	return h.respond(c, w, err)
}

func (h *Handler) removeProduct(c *fiber.Ctx) error {
	userID, err := auth.GetUserIDFromCtx(c)
	if err != nil {
		return apperr.Respond(c, err)
	}
	w, err := h.service.Remove(c.UserContext(), userID, utils.CopyString(c.Params("productId")))
	return h.respond(c, w, err)
}

func (h *Handler) respond(c *fiber.Ctx, w Wishlist, err error) error {
	if err != nil {
		return apperr.Respond(c, err)
	}
	items, err := h.service.Items(c.UserContext(), w)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "count": len(items), "wishlist": items})
}
