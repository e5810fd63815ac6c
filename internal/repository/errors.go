package repository

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrJobNotFound         = errors.New("job not found")
	ErrJobVersionConflict  = errors.New("job was modified concurrently")
	ErrJobHasApplications  = errors.New("job has applications")
	ErrApplicationNotFound = errors.New("application not found")
	ErrStatusChanged       = errors.New("application status changed concurrently")
	ErrResumeKeyTaken      = errors.New("resume key already referenced")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
