package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

type HomeSettingsRepository interface {
	Get(ctx context.Context) (*models.HomeSettings, error)
	Update(ctx context.Context, s *models.HomeSettings) error
}

type homeSettingsRepository struct {
	db *sql.DB
}

func NewHomeSettingsRepository(db *sql.DB) HomeSettingsRepository {
	return &homeSettingsRepository{db: db}
}

func (r *homeSettingsRepository) Get(ctx context.Context) (*models.HomeSettings, error) {
	query := `
		SELECT hero_title, hero_subtitle, about_title, about_text, updated_at
		FROM home_settings
		WHERE id = 1
	`

	var (
		heroTitle, heroSubtitle, aboutTitle, aboutText sql.NullString
		updatedAt                                      dbTime
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&heroTitle, &heroSubtitle, &aboutTitle, &aboutText, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &models.HomeSettings{
		HeroTitle:    heroTitle.String,
		HeroSubtitle: heroSubtitle.String,
		AboutTitle:   aboutTitle.String,
		AboutText:    aboutText.String,
		UpdatedAt:    updatedAt.Time,
	}, nil
}

// Update writes the canonical columns and keeps the legacy hero_text mirror in step.
func (r *homeSettingsRepository) Update(ctx context.Context, s *models.HomeSettings) error {
	query := `
		UPDATE home_settings
		SET hero_title = $1,
			hero_subtitle = $2,
			about_title = $3,
			about_text = $4,
			hero_text = $5,
			updated_at = $6
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, s.HeroTitle, s.HeroSubtitle, s.AboutTitle, s.AboutText, s.HeroTitle, time.Now().UTC())
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

type OfferAccessRepository interface {
	Get(ctx context.Context) (*models.OfferAccessSettings, error)
	UpdatePasswordHash(ctx context.Context, hash string) error
}

type offerAccessRepository struct {
	db *sql.DB
}

func NewOfferAccessRepository(db *sql.DB) OfferAccessRepository {
	return &offerAccessRepository{db: db}
}

func (r *offerAccessRepository) Get(ctx context.Context) (*models.OfferAccessSettings, error) {
	query := `SELECT password_hash, updated_at FROM offer_access_settings WHERE id = 1`

	var (
		s         models.OfferAccessSettings
		updatedAt dbTime
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&s.PasswordHash, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

func (r *offerAccessRepository) UpdatePasswordHash(ctx context.Context, hash string) error {
	query := `
		UPDATE offer_access_settings
		SET password_hash = $1,
			updated_at = $2
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, hash, time.Now().UTC())
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
