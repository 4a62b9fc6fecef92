package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type SettingsHandler struct {
	s        service.SettingsService
	auth     service.AuthService
	siteName string
}

func NewSettingsHandler(service service.SettingsService, auth service.AuthService, siteName string) *SettingsHandler {
	return &SettingsHandler{s: service, auth: auth, siteName: siteName}
}

func (h *SettingsHandler) HomePage(c *fiber.Ctx) error {
	home, err := h.s.Home(c.Context())
	if err != nil {
		return fail(c, err)
	}

	return c.Render("admin_home", view(c, h.siteName, fiber.Map{
		"Home":  home,
		"Saved": c.Query("saved") == "1",
	}))
}

func (h *SettingsHandler) UpdateHome(c *fiber.Ctx) error {
	var form transfer.HomeForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Unable to read the form.")
	}

	if err := h.s.UpdateHome(c.Context(), &form); err != nil {
		return fail(c, err)
	}

	return c.Redirect("/admin/home?saved=1")
}

func (h *SettingsHandler) OffersPasswordPage(c *fiber.Ctx) error {
	return c.Render("admin_offers_password", view(c, h.siteName, nil))
}

func (h *SettingsHandler) UpdateOffersPassword(c *fiber.Ctx) error {
	var form transfer.OfferPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("admin_offers_password", view(c, h.siteName, fiber.Map{
			"Error": "Unable to read the form.",
		}))
	}

	if err := h.auth.ChangeOfferPassword(c.Context(), &form); err != nil {
		if !errors.Is(err, service.ErrInvalidInput) {
			return fail(c, err)
		}
		return c.Status(fiber.StatusBadRequest).Render("admin_offers_password", view(c, h.siteName, fiber.Map{
			"Error": service.Message(err),
		}))
	}

	return c.Render("admin_offers_password", view(c, h.siteName, fiber.Map{
		"Success": "Saved. New visitors need the new password.",
	}))
}
