package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
)

type OTPRepository interface {
	Create(ctx context.Context, codeHash string, expiresAt time.Time) (int64, error)
	Latest(ctx context.Context) (*models.AdminOTP, error)
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type otpRepository struct {
	db *sql.DB
}

func NewOTPRepository(db *sql.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, codeHash string, expiresAt time.Time) (int64, error) {
	query := `
		INSERT INTO admin_otps (code_hash, expires_at, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, codeHash, expiresAt.UTC(), time.Now().UTC()).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// Latest returns the most recently issued code. Older codes are never consulted.
func (r *otpRepository) Latest(ctx context.Context) (*models.AdminOTP, error) {
	query := `
		SELECT id, code_hash, expires_at, used_at, created_at
		FROM admin_otps
		ORDER BY id DESC
		LIMIT 1
	`

	var (
		otp       models.AdminOTP
		expiresAt dbTime
		usedAt    dbTime
		createdAt dbTime
	)
	err := r.db.QueryRowContext(ctx, query).Scan(&otp.ID, &otp.CodeHash, &expiresAt, &usedAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	otp.ExpiresAt = expiresAt.Time
	otp.CreatedAt = createdAt.Time
	if !usedAt.Time.IsZero() {
		t := usedAt.Time
		otp.UsedAt = &t
	}

	return &otp, nil
}

// MarkUsed consumes the code only if nobody consumed it first. It reports whether this
// call did the consuming.
func (r *otpRepository) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `UPDATE admin_otps SET used_at = $1 WHERE id = $2 AND used_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return n == 1, nil
}

// PruneBefore deletes codes created before cutoff, always keeping the latest one.
func (r *otpRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM admin_otps
		WHERE created_at < $1
			AND id <> (SELECT MAX(id) FROM admin_otps)
	`
	res, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return n, nil
}
