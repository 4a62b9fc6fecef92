package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sunghyun0422/snf.semi/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Seed holds the values written when a singleton row is missing.
type Seed struct {
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	OfferPassword     string
}

// Reconciler brings whichever historical schema the store holds up to the current shape.
// Ensure runs the work once per process; later calls return immediately.
// A failed run is not remembered, so the next caller retries.
type Reconciler struct {
	db      *sql.DB
	dialect Dialect
	seed    Seed

	mu   sync.Mutex
	done atomic.Bool
}

func NewReconciler(db *sql.DB, dialect Dialect, seed Seed) *Reconciler {
	return &Reconciler{db: db, dialect: dialect, seed: seed}
}

type column struct {
	table string
	name  string
	def   string
}

func (r *Reconciler) Ensure(ctx context.Context) error {
	if r.done.Load() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done.Load() {
		return nil
	}

	if err := r.db.PingContext(ctx); err != nil {
		slog.Error("schema reconcile: store unreachable", "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"create tables", r.createTables},
		{"add columns", r.addColumns},
		{"seed singletons", r.seedSingletons},
		{"backfill", r.backfill},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			slog.Error("schema reconcile failed", "step", step.name, "error", err)
			return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, step.name, err)
		}
	}

	r.done.Store(true)
	slog.Info("schema reconciled", "dialect", r.dialect.Name)
	return nil
}

func (r *Reconciler) createTables(ctx context.Context) error {
	d := r.dialect
	tables := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS posts (
			id %s,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			thumbnail_path TEXT,
			is_published INTEGER NOT NULL DEFAULT 1,
			offer_json TEXT,
			offer_note TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, d.SerialPK),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS post_attachments (
			id %s,
			post_id %s NOT NULL REFERENCES posts(id),
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			data %s,
			object_key TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, d.SerialPK, d.RefType, d.BlobType),
		`CREATE INDEX IF NOT EXISTS idx_post_attachments_post_id ON post_attachments(post_id)`,
		`CREATE TABLE IF NOT EXISTS home_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			hero_title TEXT,
			hero_subtitle TEXT,
			about_title TEXT,
			about_text TEXT,
			hero_text TEXT,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS offer_access_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			password_hash TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS admin_users (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS admin_otps (
			id %s,
			code_hash TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			used_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, d.SerialPK),
	}

	for _, ddl := range tables {
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// optionalColumns lists every column some earlier version of the site created without.
// Text columns are added nullable so backfill can tell "never set" from a stored value.
func optionalColumns() []column {
	return []column{
		{"posts", "is_published", "INTEGER NOT NULL DEFAULT 1"},
		{"posts", "offer_json", "TEXT"},
		{"posts", "offer_note", "TEXT"},
		{"post_attachments", "object_key", "TEXT"},
		{"home_settings", "hero_text", "TEXT"},
		{"home_settings", "hero_title", "TEXT"},
		{"home_settings", "hero_subtitle", "TEXT"},
		{"home_settings", "about_title", "TEXT"},
		{"home_settings", "about_text", "TEXT"},
		{"home_settings", "updated_at", "TIMESTAMP"},
		{"offer_access_settings", "updated_at", "TIMESTAMP"},
		{"admin_users", "updated_at", "TIMESTAMP"},
	}
}

func (r *Reconciler) addColumns(ctx context.Context) error {
	for _, c := range optionalColumns() {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.def)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			if IsDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("add %s.%s: %w", c.table, c.name, err)
		}
		slog.Info("schema column added", "table", c.table, "column", c.name)
	}
	return nil
}

func (r *Reconciler) rowExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = 1", table)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Reconciler) seedSingletons(ctx context.Context) error {
	now := time.Now().UTC()

	exists, err := r.rowExists(ctx, "home_settings")
	if err != nil {
		return err
	}
	if !exists {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO home_settings (id, hero_title, hero_subtitle, about_title, about_text, hero_text, updated_at)
			VALUES (1, $1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			models.DefaultHeroTitle, models.DefaultHeroSubtitle, models.DefaultAboutTitle,
			models.DefaultAboutText, models.DefaultHeroTitle, now)
		if err != nil {
			return fmt.Errorf("seed home_settings: %w", err)
		}
	}

	exists, err = r.rowExists(ctx, "offer_access_settings")
	if err != nil {
		return err
	}
	if !exists {
		hash, err := bcrypt.GenerateFromPassword([]byte(r.seed.OfferPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO offer_access_settings (id, password_hash, updated_at)
			VALUES (1, $1, $2)
			ON CONFLICT (id) DO NOTHING`, string(hash), now)
		if err != nil {
			return fmt.Errorf("seed offer_access_settings: %w", err)
		}
	}

	exists, err = r.rowExists(ctx, "admin_users")
	if err != nil {
		return err
	}
	if !exists {
		hash := r.seed.AdminPasswordHash
		if hash == "" {
			b, err := bcrypt.GenerateFromPassword([]byte(r.seed.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			hash = string(b)
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO admin_users (id, username, password_hash, updated_at)
			VALUES (1, $1, $2, $3)
			ON CONFLICT (id) DO NOTHING`, r.seed.AdminUsername, hash, now)
		if err != nil {
			return fmt.Errorf("seed admin_users: %w", err)
		}
	}

	return nil
}

// backfill copies hero_text and hero_title into each other when one side was never set,
// then fills any canonical column that is still NULL with its default.
func (r *Reconciler) backfill(ctx context.Context) error {
	stmts := []struct {
		query string
		args  []any
	}{
		{`UPDATE home_settings SET hero_title = hero_text
			WHERE (hero_title IS NULL OR hero_title = '') AND hero_text IS NOT NULL AND hero_text <> ''`, nil},
		{`UPDATE home_settings SET hero_text = hero_title
			WHERE hero_text IS NULL AND hero_title IS NOT NULL`, nil},
		{`UPDATE home_settings SET hero_title = $1 WHERE hero_title IS NULL`, []any{models.DefaultHeroTitle}},
		{`UPDATE home_settings SET hero_subtitle = $1 WHERE hero_subtitle IS NULL`, []any{models.DefaultHeroSubtitle}},
		{`UPDATE home_settings SET about_title = $1 WHERE about_title IS NULL`, []any{models.DefaultAboutTitle}},
		{`UPDATE home_settings SET about_text = $1 WHERE about_text IS NULL`, []any{models.DefaultAboutText}},
		{`UPDATE posts SET offer_note = '' WHERE offer_note IS NULL`, nil},
	}

	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s.query, s.args...); err != nil {
			return err
		}
	}
	return nil
}
