package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	TogglePublished(ctx context.Context, id int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, title, is_published, offer_json, offer_note, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	offerJSON, err := encodeOffer(post.Offer)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO posts (title, content, thumbnail_path, is_published, offer_json, offer_note, created_at, updated_at)
		VALUES ($1, '', NULL, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now().UTC()
	var id int64
	err = r.db.QueryRowContext(ctx, query, post.Title, boolToInt(post.IsPublished), offerJSON, post.OfferNote, now, now).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY id DESC`
	if filter == models.PublishedOnly {
		query = `SELECT ` + postColumns + ` FROM posts WHERE is_published = 1 ORDER BY id DESC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	offerJSON, err := encodeOffer(post.Offer)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE posts
		SET title = $1,
			is_published = $2,
			offer_json = $3,
			offer_note = $4,
			updated_at = $5
		WHERE id = $6
	`
	_, err = r.db.ExecContext(ctx, query, post.Title, boolToInt(post.IsPublished), offerJSON, post.OfferNote, time.Now().UTC(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// TogglePublished flips is_published and touches updated_at. It reports false when no
// post has the id.
func (r *postRepository) TogglePublished(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE posts
		SET is_published = CASE WHEN is_published = 1 THEN 0 ELSE 1 END,
			updated_at = $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return n > 0, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post      models.Post
		published int64
		offerJSON sql.NullString
		offerNote sql.NullString
		createdAt dbTime
		updatedAt dbTime
	)

	err := row.Scan(&post.ID, &post.Title, &published, &offerJSON, &offerNote, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	post.IsPublished = published == 1
	post.OfferNote = offerNote.String
	post.CreatedAt = createdAt.Time
	post.UpdatedAt = updatedAt.Time
	post.Offer = decodeOffer(post.ID, offerJSON.String)

	return &post, nil
}

func encodeOffer(offer *models.Offer) (string, error) {
	var o models.Offer
	if offer != nil {
		o = *offer
	}
	if o.Items == nil {
		o.Items = []models.OfferItem{}
	}
	b, err := json.Marshal(o)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeOffer returns nil for an empty or unreadable payload; the post itself stays usable.
func decodeOffer(postID int64, raw string) *models.Offer {
	if raw == "" {
		return nil
	}
	var offer models.Offer
	if err := json.Unmarshal([]byte(raw), &offer); err != nil {
		slog.Info("unreadable offer_json", "post_id", postID, "error", err)
		return nil
	}
	return &offer
}
