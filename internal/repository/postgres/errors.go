package postgres

import (
	"errors"

	"github.com/lib/pq"
	"github.com/openmusic/playlists-api/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapConstraint turns constraint violations into domain errors. Anything else
// is returned as is.
func mapConstraint(err error, what string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return domain.Conflict("%s already exists", what)
	case pqForeignKeyViolation:
		return domain.NotFound("%s references a missing row (%s)", what, pqErr.Constraint)
	}
	return err
}
