package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/repository"
	"github.com/sunghyun0422/snf.semi/internal/transfer"
)

const (
	OTPTTL              = 10 * time.Minute
	MinAdminPasswordLen = 8
	otpDigits           = 6
)

type OTPService interface {
	RequestCode(ctx context.Context) error
	ApplyChange(ctx context.Context, form *transfer.AccountChangeForm) error
}

type otpService struct {
	or       repository.OTPRepository
	ar       repository.AdminUserRepository
	mailer   Mailer
	to       string
	siteName string
	now      Clock
}

func NewOTPService(or repository.OTPRepository, ar repository.AdminUserRepository, mailer Mailer, to, siteName string, now Clock) OTPService {
	if now == nil {
		now = systemClock
	}
	return &otpService{
		or:       or,
		ar:       ar,
		mailer:   mailer,
		to:       to,
		siteName: siteName,
		now:      now,
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// RequestCode issues a new code and mails it to the operator address. Nothing is stored
// when mail cannot be sent.
func (s *otpService) RequestCode(ctx context.Context) error {
	if !s.mailer.Enabled() || s.to == "" {
		slog.Info("otp requested but mail is not configured")
		return ErrMailUnavailable
	}

	code, err := generateCode()
	if err != nil {
		slog.Error("otp generation failed", "error", err)
		return err
	}

	hash, err := hashSecret(code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	expiresAt := s.now().Add(OTPTTL)
	if _, err := s.or.Create(ctx, hash, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	err = s.mailer.Send(ctx, Envelope{
		To:      s.to,
		Subject: fmt.Sprintf("[%s] Admin verification code", s.siteName),
		Body: fmt.Sprintf("Your verification code is %s.\n\nIt expires at %s (10 minutes).\n",
			code, expiresAt.UTC().Format("2006-01-02 15:04 MST")),
	})
	if err != nil {
		return err
	}

	slog.Info("otp issued", "expires_at", expiresAt)
	return nil
}

// ApplyChange verifies the latest code and then rewrites the admin identity. The code
// is consumed before the write, so a failed write still burns it.
func (s *otpService) ApplyChange(ctx context.Context, form *transfer.AccountChangeForm) error {
	code := strings.TrimSpace(form.Code)
	newUsername := strings.TrimSpace(form.NewUsername)
	newPassword := form.NewPassword

	if code == "" {
		return ErrCodeMissing
	}
	if newUsername == "" && newPassword == "" {
		return ErrNothingToUpdate
	}
	if newPassword != "" && len(newPassword) < MinAdminPasswordLen {
		return ErrPasswordTooShort
	}
	if len(newPassword) > MaxSecretBytes {
		return ErrPasswordTooLong
	}

	otp, err := s.or.Latest(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if otp == nil {
		return ErrCodeNotFound
	}
	if otp.UsedAt != nil {
		return ErrCodeAlreadyUsed
	}

	now := s.now()
	if now.After(otp.ExpiresAt) {
		return ErrCodeExpired
	}
	if !secretMatches(code, otp.CodeHash) {
		return ErrCodeMismatch
	}

	consumed, err := s.or.MarkUsed(ctx, otp.ID, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !consumed {
		return ErrCodeAlreadyUsed
	}

	if err := s.applyAdminChange(ctx, newUsername, newPassword); err != nil {
		slog.Info("admin account update failed", "error", err)
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}

	slog.Info("admin account updated", "username_changed", newUsername != "", "password_changed", newPassword != "")
	return nil
}

func (s *otpService) applyAdminChange(ctx context.Context, newUsername, newPassword string) error {
	admin, err := s.ar.Get(ctx)
	if err != nil {
		return err
	}
	if admin == nil {
		return errors.New("admin account missing")
	}

	if newUsername != "" {
		admin.Username = newUsername
	}
	if newPassword != "" {
		hash, err := hashSecret(newPassword)
		if err != nil {
			return err
		}
		admin.PasswordHash = hash
	}

	return s.ar.Update(ctx, admin)
}
