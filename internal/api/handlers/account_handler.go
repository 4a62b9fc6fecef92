package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/session"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

var accountMessages = map[string]string{
	"code_missing":       "Enter the verification code.",
	"nothing_to_update":  "Enter a new username or a new password.",
	"password_too_short": "The new password must be at least 8 characters.",
	"password_too_long":  "The new password must be at most 72 bytes.",
	"code_not_found":     "No verification code has been requested yet.",
	"code_already_used":  "That verification code was already used. Request a new one.",
	"code_expired":       "That verification code has expired. Request a new one.",
	"code_mismatch":      "The verification code is not correct.",
	"conflict":           "The account could not be updated. The username may already be taken.",
	"mail_unavailable":   "Mail is not configured, so no code can be sent.",
}

type AccountHandler struct {
	otp      service.OTPService
	auth     service.AuthService
	siteName string
}

func NewAccountHandler(otp service.OTPService, auth service.AuthService, siteName string) *AccountHandler {
	return &AccountHandler{otp: otp, auth: auth, siteName: siteName}
}

func (h *AccountHandler) AccountPage(c *fiber.Ctx) error {
	username, err := h.auth.AdminUsername(c.Context())
	if err != nil {
		return fail(c, err)
	}

	return c.Render("admin_account", view(c, h.siteName, fiber.Map{
		"Username": username,
		"Error":    accountMessages[c.Query("error")],
		"CodeSent": c.Query("sent") == "1",
	}))
}

func (h *AccountHandler) SendCode(c *fiber.Ctx) error {
	if err := h.otp.RequestCode(c.Context()); err != nil {
		if reason := service.ReasonOf(err); reason != "" {
			return c.Redirect("/admin/account?error=" + reason)
		}
		return fail(c, err)
	}
	return c.Redirect("/admin/account?sent=1")
}

// UpdateAccount applies an OTP-gated change. Success signs the admin out so the new
// credentials are used straight away.
func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	var form transfer.AccountChangeForm
	if err := c.BodyParser(&form); err != nil {
		return c.Redirect("/admin/account?error=" + service.OTPReasons[service.ErrCodeMissing])
	}

	if err := h.otp.ApplyChange(c.Context(), &form); err != nil {
		if reason := service.ReasonOf(err); reason != "" {
			return c.Redirect("/admin/account?error=" + reason)
		}
		return fail(c, err)
	}

	session.Clear(c, session.AdminCookie)
	return c.Redirect("/admin/login?changed=1")
}
