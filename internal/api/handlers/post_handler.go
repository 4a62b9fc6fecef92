package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type PostHandler struct {
	s        service.OfferService
	siteName string
}

func NewPostHandler(service service.OfferService, siteName string) *PostHandler {
	return &PostHandler{s: service, siteName: siteName}
}

func (h *PostHandler) Dashboard(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), models.AllPosts)
	if err != nil {
		return fail(c, err)
	}
	return c.Render("admin_dashboard", view(c, h.siteName, fiber.Map{"Posts": posts}))
}

func (h *PostHandler) NewPage(c *fiber.Ctx) error {
	post := withBlankRow(&models.Post{IsPublished: true})
	return h.renderEdit(c, fiber.StatusOK, "new", post, nil, "")
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	form := transfer.OfferFormFromValues(formValues(c))

	uploads, err := parseUploads(c)
	if err != nil {
		return h.formError(c, "new", form.Post(0), nil, err)
	}

	if _, err := h.s.Create(c.Context(), form, uploads); err != nil {
		return h.formError(c, "new", form.Post(0), nil, err)
	}

	return c.Redirect("/admin")
}

func (h *PostHandler) EditPage(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	post, err := h.s.Get(c.Context(), id, true)
	if err != nil {
		return fail(c, err)
	}

	attachments, err := h.s.ListAttachments(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	return h.renderEdit(c, fiber.StatusOK, "edit", withBlankRow(post), attachments, "")
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	form := transfer.OfferFormFromValues(formValues(c))

	uploads, err := parseUploads(c)
	if err == nil {
		err = h.s.Update(c.Context(), id, form, uploads)
	}
	if err != nil {
		attachments, listErr := h.s.ListAttachments(c.Context(), id)
		if listErr != nil {
			return fail(c, listErr)
		}
		return h.formError(c, "edit", form.Post(id), attachments, err)
	}

	return c.Redirect("/admin")
}

func (h *PostHandler) TogglePost(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.TogglePublished(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.Redirect("/admin")
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.Redirect("/admin")
}

func (h *PostHandler) RemoveAttachment(c *fiber.Ctx) error {
	id, err := GetID(c)
	if err != nil {
		return fail(c, err)
	}

	postID, err := h.s.DeleteAttachment(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.Redirect(fmt.Sprintf("/admin/edit/%d", postID))
}

// OversizeForm answers an offer form post whose body was refused before routing. None of
// the fields arrived, so the form comes back blank or as stored. It reports false for
// paths that are not offer forms.
func (h *PostHandler) OversizeForm(c *fiber.Ctx) (bool, error) {
	path := strings.TrimSuffix(c.Path(), "/")
	msg := service.Message(service.ErrOversizeUpload)
	status := fiber.StatusRequestEntityTooLarge

	if path == "/admin/new" {
		return true, h.renderEdit(c, status, "new", withBlankRow(&models.Post{IsPublished: true}), nil, msg)
	}

	rest, ok := strings.CutPrefix(path, "/admin/edit/")
	if !ok {
		return false, nil
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return false, nil
	}

	post, err := h.s.Get(c.Context(), id, true)
	if err != nil {
		return true, fail(c, err)
	}
	attachments, err := h.s.ListAttachments(c.Context(), id)
	if err != nil {
		return true, fail(c, err)
	}
	return true, h.renderEdit(c, status, "edit", withBlankRow(post), attachments, msg)
}

// formError re-renders the offer form with what the admin typed. Only input problems
// are shown inline; everything else goes through fail.
func (h *PostHandler) formError(c *fiber.Ctx, mode string, post *models.Post, attachments []*models.Attachment, err error) error {
	if !errors.Is(err, service.ErrInvalidInput) && !errors.Is(err, service.ErrOversizeUpload) {
		return fail(c, err)
	}
	return h.renderEdit(c, fiber.StatusBadRequest, mode, withBlankRow(post), attachments, service.Message(err))
}

func (h *PostHandler) renderEdit(c *fiber.Ctx, status int, mode string, post *models.Post, attachments []*models.Attachment, msg string) error {
	return c.Status(status).Render("admin_edit", view(c, h.siteName, fiber.Map{
		"Mode":        mode,
		"Post":        post,
		"Attachments": attachments,
		"Error":       msg,
	}))
}
