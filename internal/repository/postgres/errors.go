package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abenov/accounts-server/internal/model"
)

const uniqueViolation = "23505"

// conflictError translates a unique-constraint violation into the typed
// conflict carrying the offending field name. This keeps the uniqueness
// guarantee in the write path: two racing inserts cannot both commit.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}

	switch pgErr.ConstraintName {
	case "users_username_key":
		return &model.ConflictError{Fields: []string{"Username"}}
	case "users_email_key":
		return &model.ConflictError{Fields: []string{"Email"}}
	case "users_mobile_number_key":
		return &model.ConflictError{Fields: []string{"Mobile number"}}
	case "websites_name_key":
		return &model.ConflictError{Fields: []string{"Name"}}
	default:
		return &model.ConflictError{Fields: []string{pgErr.ConstraintName}}
	}
}
