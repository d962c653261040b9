package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgDiskFull is the SQLSTATE postgres reports when it cannot extend a relation.
const pgDiskFull = "53100"

// IsStorageFull reports whether a write failed because the database ran out
// of space, for either the postgres or sqlite dialect.
func IsStorageFull(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgDiskFull
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "no space left on device")
}
