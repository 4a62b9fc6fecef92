package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/database"
	"github.com/sunghyun0422/snf.semi/internal/models"
)

var ErrDuplicateUsername = errors.New("username already taken")

type AdminUserRepository interface {
	Get(ctx context.Context) (*models.AdminUser, error)
	Update(ctx context.Context, user *models.AdminUser) error
}

type adminUserRepository struct {
	db *sql.DB
}

func NewAdminUserRepository(db *sql.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

func (r *adminUserRepository) Get(ctx context.Context) (*models.AdminUser, error) {
	var (
		user      models.AdminUser
		updatedAt dbTime
	)
	query := "SELECT id, username, password_hash, updated_at FROM admin_users WHERE id = 1"
	err := r.db.QueryRowContext(ctx, query).Scan(&user.ID, &user.Username, &user.PasswordHash, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}

func (r *adminUserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	query := `
		UPDATE admin_users
		SET username = $1,
			password_hash = $2,
			updated_at = $3
		WHERE id = 1
	`
	_, err := r.db.ExecContext(ctx, query, user.Username, user.PasswordHash, time.Now().UTC())
	if err != nil {
		slog.Info(err.Error())
		if database.IsUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return err
	}

	return nil
}
