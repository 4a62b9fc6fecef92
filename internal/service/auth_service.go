package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

var errPasswordBytes = errors.New("New password must be at most 72 bytes.")

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) error
	CheckOfferPassword(ctx context.Context, password string) error
	ChangeOfferPassword(ctx context.Context, form *transfer.OfferPasswordForm) error
	AdminUsername(ctx context.Context) (string, error)
}

type authService struct {
	ar repository.AdminUserRepository
	or repository.OfferAccessRepository

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(ar repository.AdminUserRepository, or repository.OfferAccessRepository) AuthService {
	return &authService{
		ar: ar,
		or: or,
	}
}

// dummy returns a hash that no submitted password matches. Unknown usernames are compared
// against it so both failure paths pay for one bcrypt comparison.
func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := hashSecret("snf-semi-no-such-admin")
		if err != nil {
			slog.Error("dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *authService) Authenticate(ctx context.Context, username, password string) error {
	admin, err := s.ar.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if admin == nil || admin.Username != username {
		secretMatches(password, s.dummy())
		slog.Info("admin login rejected")
		return ErrInvalidCredentials
	}

	if !secretMatches(password, admin.PasswordHash) {
		slog.Info("admin login rejected")
		return ErrInvalidCredentials
	}

	return nil
}

func (s *authService) CheckOfferPassword(ctx context.Context, password string) error {
	access, err := s.or.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if access == nil || !secretMatches(password, access.PasswordHash) {
		return ErrInvalidCredentials
	}

	return nil
}

func (s *authService) ChangeOfferPassword(ctx context.Context, form *transfer.OfferPasswordForm) error {
	if err := transfer.Validate(form); err != nil {
		slog.Info(err.Error())
		return invalid(err)
	}
	if len(form.NewPassword) > MaxSecretBytes {
		return invalid(errPasswordBytes)
	}

	hash, err := hashSecret(form.NewPassword)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if err := s.or.UpdatePasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	slog.Info("offer password changed")
	return nil
}

func (s *authService) AdminUsername(ctx context.Context) (string, error) {
	admin, err := s.ar.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if admin == nil {
		return "", ErrNotFound
	}
	return admin.Username, nil
}
