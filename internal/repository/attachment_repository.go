package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.Attachment, error)
	Remove(ctx context.Context, id int64) error
	RemoveByPostID(ctx context.Context, postID int64) error
}

type attachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, a *models.Attachment) (int64, error) {
	query := `
		INSERT INTO post_attachments (post_id, filename, mime_type, size_bytes, data, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var objectKey sql.NullString
	if a.ObjectKey != "" {
		objectKey = sql.NullString{String: a.ObjectKey, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, a.PostID, a.Filename, a.MimeType, a.Size, a.Data, objectKey, time.Now().UTC()).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	query := `
		SELECT id, post_id, filename, mime_type, size_bytes, data, object_key, created_at
		FROM post_attachments
		WHERE id = $1
	`

	var (
		a         models.Attachment
		objectKey sql.NullString
		createdAt dbTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.PostID,
		&a.Filename,
		&a.MimeType,
		&a.Size,
		&a.Data,
		&objectKey,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	a.ObjectKey = objectKey.String
	a.CreatedAt = createdAt.Time

	return &a, nil
}

// ListByPostID returns attachment metadata only; Data is left empty.
func (r *attachmentRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Attachment, error) {
	query := `
		SELECT id, post_id, filename, mime_type, size_bytes, object_key, created_at
		FROM post_attachments
		WHERE post_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		var (
			a         models.Attachment
			objectKey sql.NullString
			createdAt dbTime
		)
		if err := rows.Scan(&a.ID, &a.PostID, &a.Filename, &a.MimeType, &a.Size, &objectKey, &createdAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		a.ObjectKey = objectKey.String
		a.CreatedAt = createdAt.Time
		attachments = append(attachments, &a)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return attachments, nil
}

func (r *attachmentRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM post_attachments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *attachmentRepository) RemoveByPostID(ctx context.Context, postID int64) error {
	query := `DELETE FROM post_attachments WHERE post_id = $1`
	_, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
