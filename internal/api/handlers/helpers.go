package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/api/middleware"
	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

const attachmentField = "attachments"

var errBadID = errors.New("invalid id")

func GetID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func IsAdmin(c *fiber.Ctx) bool {
	return middleware.Claims(c).Admin
}

// view merges the values every page needs into data.
func view(c *fiber.Ctx, siteName string, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	data["SiteName"] = siteName
	data["IsAdmin"] = IsAdmin(c)
	return data
}

// fail turns a service error into a response. Internal detail only reaches the log.
func fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadID) {
		return c.Status(fiber.StatusNotFound).SendString("Not found.")
	}

	status := service.StatusOf(err)
	switch status {
	case fiber.StatusNotFound:
		return c.Status(status).SendString("Not found.")
	case fiber.StatusInternalServerError:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).SendString("Internal server error.")
	}
	return c.Status(status).SendString(service.Message(err))
}

// formValues collects every submitted field, keeping repeated fields in order.
func formValues(c *fiber.Ctx) transfer.FormValues {
	values := transfer.FormValues{}

	if form, err := c.MultipartForm(); err == nil {
		for k, v := range form.Value {
			values[k] = v
		}
		return values
	}

	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		values[key] = append(values[key], string(v))
	})
	return values
}

// parseUploads reads the attachment files of a multipart form. Empty file inputs are
// skipped; an oversize file stops the whole form before any bytes are read.
func parseUploads(c *fiber.Ctx) ([]service.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var uploads []service.Upload
	for _, fh := range form.File[attachmentField] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		if fh.Size > service.MaxAttachmentSize {
			slog.Info("attachment rejected", "filename", fh.Filename, "size", fh.Size)
			return nil, service.ErrOversizeUpload
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}

		uploads = append(uploads, service.Upload{
			Filename: fh.Filename,
			MimeType: fh.Header.Get(fiber.HeaderContentType),
			Size:     fh.Size,
			Data:     data,
		})
	}

	return uploads, nil
}

// withBlankRow gives the edit form at least one line item row to type into.
func withBlankRow(post *models.Post) *models.Post {
	if post.Offer == nil {
		post.Offer = &models.Offer{}
	}
	if len(post.Offer.Items) == 0 {
		post.Offer.Items = []models.OfferItem{{}}
	}
	return post
}

// contentDisposition builds an RFC 5987 attachment header so any filename survives.
func contentDisposition(filename string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.WriteString("attachment; filename*=UTF-8''")
	for i := 0; i < len(filename); i++ {
		ch := filename[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}
