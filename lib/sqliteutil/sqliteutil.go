// Package sqliteutil opens sql databases for either a local sqlite file
// or a remote libsql URL, applying a schema on open.
package sqliteutil

import (
	"database/sql"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") {
		return "libsql"
	}
	return "sqlite"
}

// OpenDB opens the database at dsn and executes the schema. The schema
// must be idempotent (CREATE TABLE IF NOT EXISTS ...).
func OpenDB(schema, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverFor(dsn), dsn)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
