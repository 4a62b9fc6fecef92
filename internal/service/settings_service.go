package service

import (
	"context"
	"fmt"

	"github.com/sunghyun0422/snf.semi/internal/models"
	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

type SettingsService interface {
	Home(ctx context.Context) (*models.HomeSettings, error)
	UpdateHome(ctx context.Context, form *transfer.HomeForm) error
}

type settingsService struct {
	hr repository.HomeSettingsRepository
}

func NewSettingsService(hr repository.HomeSettingsRepository) SettingsService {
	return &settingsService{
		hr: hr,
	}
}

// Home returns the landing page copy. A missing row reads as the stock copy.
func (s *settingsService) Home(ctx context.Context) (*models.HomeSettings, error) {
	home, err := s.hr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if home == nil {
		home = &models.HomeSettings{}
	}
	home.HeroTitle = orDefault(home.HeroTitle, models.DefaultHeroTitle)
	home.HeroSubtitle = orDefault(home.HeroSubtitle, models.DefaultHeroSubtitle)
	home.AboutTitle = orDefault(home.AboutTitle, models.DefaultAboutTitle)
	home.AboutText = orDefault(home.AboutText, models.DefaultAboutText)

	return home, nil
}

func (s *settingsService) UpdateHome(ctx context.Context, form *transfer.HomeForm) error {
	if err := s.hr.Update(ctx, form.Settings()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
