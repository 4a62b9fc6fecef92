package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/api/middleware"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/session"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type AuthHandler struct {
	s        service.AuthService
	signer   *session.Signer
	now      func() time.Time
	siteName string
}

func NewAuthHandler(service service.AuthService, signer *session.Signer, now func() time.Time, siteName string) *AuthHandler {
	if now == nil {
		now = time.Now
	}
	return &AuthHandler{s: service, signer: signer, now: now, siteName: siteName}
}

func (h *AuthHandler) OffersLoginPage(c *fiber.Ctx) error {
	if session.AllowOffer(middleware.Claims(c), h.now()) {
		return c.Redirect("/offers")
	}
	return c.Render("offers_login", view(c, h.siteName, nil))
}

func (h *AuthHandler) OffersLogin(c *fiber.Ctx) error {
	var form transfer.OfferLoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("offers_login", view(c, h.siteName, fiber.Map{
			"Error": "Unable to read the form.",
		}))
	}

	if err := h.s.CheckOfferPassword(c.Context(), form.Password); err != nil {
		if service.StatusOf(err) == fiber.StatusInternalServerError {
			return fail(c, err)
		}
		return c.Status(fiber.StatusUnauthorized).Render("offers_login", view(c, h.siteName, fiber.Map{
			"Error": "Wrong password.",
		}))
	}

	if err := h.signer.IssueOffer(c, h.now()); err != nil {
		return fail(c, err)
	}
	return c.Redirect("/offers")
}

func (h *AuthHandler) OffersLogout(c *fiber.Ctx) error {
	session.Clear(c, session.OfferCookie)
	return c.Redirect("/")
}

func (h *AuthHandler) AdminLoginPage(c *fiber.Ctx) error {
	if IsAdmin(c) {
		return c.Redirect("/admin")
	}
	return c.Render("admin_login", view(c, h.siteName, fiber.Map{
		"Changed": c.Query("changed") == "1",
	}))
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var form transfer.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("admin_login", view(c, h.siteName, fiber.Map{
			"Error": "Unable to read the form.",
		}))
	}

	if err := h.s.Authenticate(c.Context(), form.Username, form.Password); err != nil {
		if service.StatusOf(err) == fiber.StatusInternalServerError {
			return fail(c, err)
		}
		return c.Status(fiber.StatusUnauthorized).Render("admin_login", view(c, h.siteName, fiber.Map{
			"Error":    service.Message(err),
			"Username": form.Username,
		}))
	}

	if err := h.signer.IssueAdmin(c, h.now()); err != nil {
		return fail(c, err)
	}
	slog.Info("admin signed in", "ip", c.IP())
	return c.Redirect("/admin")
}

func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	session.Clear(c, session.AdminCookie)
	return c.Redirect("/")
}
