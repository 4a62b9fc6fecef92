package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var ErrStoreUnavailable = errors.New("store unavailable")

const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open connects to the store named by dbType and verifies it answers a ping.
// For postgres a non-empty authToken replaces the password in a URL-style dsn, which is
// how short-lived managed database tokens are presented.
func Open(ctx context.Context, dbType, dsn, authToken string) (*sql.DB, Dialect, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch dbType {
	case TypePostgres:
		db, err = sql.Open("postgres", withPassword(dsn, authToken))
		dialect = Postgres
	case TypeSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, Dialect{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		db, err = sql.Open("sqlite", withForeignKeys(dsn))
		dialect = SQLite
	default:
		return nil, Dialect{}, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		slog.Info(err.Error())
		return nil, Dialect{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if dialect.Name == TypeSQLite {
		// one writer; also keeps an in-memory database alive on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		slog.Info(err.Error())
		db.Close()
		return nil, Dialect{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return db, dialect, nil
}

func withPassword(dsn, token string) string {
	if token == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), token)
	return u.String()
}

// ensureDir creates the directory of a file-backed sqlite dsn.
func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// IsDuplicateColumn reports whether err is the store's "column already exists" failure.
func IsDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "42701"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
