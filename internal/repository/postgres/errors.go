package postgres

import (
	"errors"

	"go-headhunter-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

// Unique constraints that mean "this email is taken"
var emailConstraints = map[string]bool{
	"users_email_key":            true,
	"hr_profiles_email_key":      true,
	"student_profiles_email_key": true,
}

// mapWriteError turns unique violations into domain errors and passes anything else through.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	if emailConstraints[pgErr.ConstraintName] {
		return domain.ErrDuplicateEmail.Wrap(err)
	}
	if pgErr.ConstraintName == "student_profiles_github_username_key" {
		return domain.ErrDuplicateGithubUsername.Wrap(err)
	}
	return err
}
