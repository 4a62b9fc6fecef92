package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type SiteHandler struct {
	settings service.SettingsService
	offers   service.OfferService
	inquiry  service.InquiryService
	siteName string
}

func NewSiteHandler(settings service.SettingsService, offers service.OfferService, inquiry service.InquiryService, siteName string) *SiteHandler {
	return &SiteHandler{settings: settings, offers: offers, inquiry: inquiry, siteName: siteName}
}

func (h *SiteHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *SiteHandler) Home(c *fiber.Ctx) error {
	home, err := h.settings.Home(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.Render("home", view(c, h.siteName, fiber.Map{"Home": home}))
}

func (h *SiteHandler) Offers(c *fiber.Ctx) error {
	posts, err := h.offers.List(c.Context(), models.PublishedOnly)
	if err != nil {
		return fail(c, err)
	}
	return c.Render("offers", view(c, h.siteName, fiber.Map{"Posts": posts}))
}

func (h *SiteHandler) Post(c *fiber.Ctx) error {
	return h.renderPost(c, fiber.StatusOK, fiber.Map{"Sent": c.Query("sent") == "1"})
}

func (h *SiteHandler) renderPost(c *fiber.Ctx, status int, data fiber.Map) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	post, err := h.offers.Get(c.Context(), id, IsAdmin(c))
	if err != nil {
		return fail(c, err)
	}

	attachments, err := h.offers.ListAttachments(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	data["Post"] = post
	data["Attachments"] = attachments
	if _, ok := data["Inquiry"]; !ok {
		data["Inquiry"] = &transfer.BuyerInquiryForm{}
	}
	return c.Status(status).Render("post", view(c, h.siteName, data))
}

func (h *SiteHandler) Attachment(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	a, err := h.offers.GetAttachment(c.Context(), id, IsAdmin(c))
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, a.MimeType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition(a.Filename))
	return c.Send(a.Data)
}

func (h *SiteHandler) BuyerSubmit(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	var form transfer.BuyerInquiryForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderPost(c, fiber.StatusBadRequest, fiber.Map{
			"Inquiry":      &form,
			"InquiryError": "Unable to read the form.",
		})
	}

	err = h.inquiry.Submit(c.Context(), id, IsAdmin(c), &form)
	switch {
	case err == nil:
		return c.Redirect(fmt.Sprintf("/post/%d?sent=1", id))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrMailUnavailable):
		return h.renderPost(c, service.StatusOf(err), fiber.Map{
			"Inquiry":      &form,
			"InquiryError": service.Message(err),
		})
	}
	return fail(c, err)
}
