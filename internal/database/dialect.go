package database

// Dialect holds the DDL fragments that differ between postgres and sqlite.
// Queries use $n placeholders, numbered in order of appearance, which both accept.
type Dialect struct {
	Name     string
	SerialPK string
	RefType  string
	BlobType string
}

var (
	Postgres = Dialect{
		Name:     TypePostgres,
		SerialPK: "BIGSERIAL PRIMARY KEY",
		RefType:  "BIGINT",
		BlobType: "BYTEA",
	}
	SQLite = Dialect{
		Name:     TypeSQLite,
		SerialPK: "INTEGER PRIMARY KEY AUTOINCREMENT",
		RefType:  "INTEGER",
		BlobType: "BLOB",
	}
)
