package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

const uniqueViolation = "23505"

// mapError translates driver errors into domain failure kinds.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrResourceNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return &domain.DuplicateIdentityError{Field: "username"}
		case "users_email_key":
			return &domain.DuplicateIdentityError{Field: "email"}
		default:
			return &domain.DuplicateIdentityError{Field: "identity"}
		}
	}
	return err
}
