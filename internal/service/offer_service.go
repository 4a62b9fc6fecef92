package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

const MaxAttachmentSize = 20 * 1024 * 1024

const octetStream = "application/octet-stream"

// Upload is one file taken off a multipart form.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

type OfferService interface {
	Create(ctx context.Context, form *transfer.OfferForm, uploads []Upload) (int64, error)
	Get(ctx context.Context, id int64, includeDrafts bool) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, id int64, form *transfer.OfferForm, uploads []Upload) error
	TogglePublished(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	AddAttachment(ctx context.Context, postID int64, upload Upload) (int64, error)
	DeleteAttachment(ctx context.Context, id int64) (int64, error)
	ListAttachments(ctx context.Context, postID int64) ([]*models.Attachment, error)
	GetAttachment(ctx context.Context, id int64, includeDrafts bool) (*models.Attachment, error)
}

type offerService struct {
	pr    repository.PostRepository
	ar    repository.AttachmentRepository
	store ObjectStore
}

// NewOfferService wires the offer repositories. store may be nil, in which case
// attachment bytes live in the database.
func NewOfferService(pr repository.PostRepository, ar repository.AttachmentRepository, store ObjectStore) OfferService {
	return &offerService{
		pr:    pr,
		ar:    ar,
		store: store,
	}
}

// CheckUploads rejects oversize files before anything is written.
func CheckUploads(uploads []Upload) error {
	for _, u := range uploads {
		if u.Size > MaxAttachmentSize || int64(len(u.Data)) > MaxAttachmentSize {
			slog.Info("attachment rejected", "filename", u.Filename, "size", u.Size)
			return ErrOversizeUpload
		}
	}
	return nil
}

func (s *offerService) Create(ctx context.Context, form *transfer.OfferForm, uploads []Upload) (int64, error) {
	if err := transfer.Validate(form); err != nil {
		slog.Info(err.Error())
		return 0, invalid(err)
	}
	if err := CheckUploads(uploads); err != nil {
		return 0, err
	}

	postID, err := s.pr.Create(ctx, form.Post(0))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The post stays even if an upload below fails; the admin can re-upload from the edit page.
	for _, u := range uploads {
		if _, err := s.AddAttachment(ctx, postID, u); err != nil {
			return postID, err
		}
	}

	return postID, nil
}

func (s *offerService) Get(ctx context.Context, id int64, includeDrafts bool) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if post == nil || (!post.IsPublished && !includeDrafts) {
		return nil, ErrNotFound
	}

	return post, nil
}

func (s *offerService) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	posts, err := s.pr.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return posts, nil
}

func (s *offerService) Update(ctx context.Context, id int64, form *transfer.OfferForm, uploads []Upload) error {
	if _, err := s.Get(ctx, id, true); err != nil {
		return err
	}
	if err := transfer.Validate(form); err != nil {
		slog.Info(err.Error())
		return invalid(err)
	}
	if err := CheckUploads(uploads); err != nil {
		return err
	}

	if err := s.pr.Update(ctx, form.Post(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, u := range uploads {
		if _, err := s.AddAttachment(ctx, id, u); err != nil {
			return err
		}
	}

	return nil
}

func (s *offerService) TogglePublished(ctx context.Context, id int64) error {
	found, err := s.pr.TogglePublished(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Delete removes the attachments first; the store does not cascade.
func (s *offerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id, true); err != nil {
		return err
	}

	attachments, err := s.ar.ListByPostID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.ar.RemoveByPostID(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	for _, a := range attachments {
		s.deleteObject(ctx, a)
	}

	if err := s.pr.Remove(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	slog.Info("offer deleted", "post_id", id, "attachments", len(attachments))
	return nil
}

func (s *offerService) AddAttachment(ctx context.Context, postID int64, upload Upload) (int64, error) {
	if err := CheckUploads([]Upload{upload}); err != nil {
		return 0, err
	}

	a := &models.Attachment{
		PostID:   postID,
		Filename: attachmentName(upload.Filename),
		MimeType: detectMime(upload.MimeType, upload.Data),
		Size:     int64(len(upload.Data)),
		Data:     upload.Data,
	}

	if s.store != nil {
		key, err := s.store.NewKey()
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
		if err := s.store.Put(ctx, key, upload.Data, a.MimeType); err != nil {
			return 0, fmt.Errorf("%w: object store: %v", ErrStoreUnavailable, err)
		}
		a.ObjectKey = key
		a.Data = []byte{}
	}

	id, err := s.ar.Create(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	slog.Info("attachment stored", "post_id", postID, "attachment_id", id, "size", a.Size, "mime", a.MimeType)
	return id, nil
}

// DeleteAttachment returns the owning post id so the caller can go back to its edit page.
func (s *offerService) DeleteAttachment(ctx context.Context, id int64) (int64, error) {
	a, err := s.ar.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if a == nil {
		return 0, ErrNotFound
	}

	if err := s.ar.Remove(ctx, id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.deleteObject(ctx, a)

	return a.PostID, nil
}

func (s *offerService) ListAttachments(ctx context.Context, postID int64) ([]*models.Attachment, error) {
	attachments, err := s.ar.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return attachments, nil
}

// GetAttachment loads an attachment with its bytes. Attachments of unpublished posts are
// only visible with includeDrafts.
func (s *offerService) GetAttachment(ctx context.Context, id int64, includeDrafts bool) (*models.Attachment, error) {
	a, err := s.ar.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if a == nil {
		return nil, ErrNotFound
	}

	if _, err := s.Get(ctx, a.PostID, includeDrafts); err != nil {
		return nil, err
	}

	if a.ObjectKey != "" {
		if s.store == nil {
			slog.Error("attachment is in object storage but no store is configured", "attachment_id", id)
			return nil, ErrStoreUnavailable
		}
		data, err := s.store.Get(ctx, a.ObjectKey)
		if err != nil {
			return nil, fmt.Errorf("%w: object store: %v", ErrStoreUnavailable, err)
		}
		a.Data = data
	}

	return a, nil
}

func (s *offerService) deleteObject(ctx context.Context, a *models.Attachment) {
	if a.ObjectKey == "" || s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, a.ObjectKey); err != nil {
		slog.Error("object delete failed", "key", a.ObjectKey, "error", err)
	}
}

// detectMime keeps what the client declared and only sniffs when it said nothing useful.
func detectMime(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != octetStream {
		return declared
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return octetStream
	}
	return kind.MIME.Value
}

func attachmentName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "attachment"
	}
	return name
}
