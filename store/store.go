package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// validID reports whether id can be used against a UUID primary key. Invalid
// ids are treated as absent rows instead of round-tripping to Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
