package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"jobportal/internal/models"
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts account and fills in CreatedAt. A duplicate username yields ErrUsernameTaken.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	const query = `
		INSERT INTO accounts (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		string(account.Role),
	).Scan(&account.CreatedAt)
	if pgCode(err) == pgUniqueViolation {
		return ErrUsernameTaken
	}
	return err
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	const query = `
		SELECT id, username, password_hash, role, created_at
		FROM accounts WHERE username = $1
	`

	var (
		account models.Account
		role    string
	)
	if err := r.db.QueryRow(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&role,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	account.Role = models.Role(role)
	return account, nil
}
