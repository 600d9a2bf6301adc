package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// Errors names the domain errors that database failures translate to. A nil
// field leaves that class of failure unmapped.
type Errors struct {
	NotFound   error
	Duplicate  error
	Constraint error
}

// Map translates err: sql.ErrNoRows becomes NotFound, unique violations
// become Duplicate, and foreign key or check violations become Constraint
// joined with the driver error. Anything else is returned unchanged.
func (m Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if m.NotFound != nil && errors.Is(err, sql.ErrNoRows) {
		return m.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		if m.Duplicate != nil {
			return m.Duplicate
		}
	case CodeForeignKeyViolation, CodeCheckViolation:
		if m.Constraint != nil {
			return errors.Join(m.Constraint, err)
		}
	}
	return err
}
