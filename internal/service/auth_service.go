package service

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"jobportal/internal/apperr"
	"jobportal/internal/ids"
	"jobportal/internal/models"
	"jobportal/internal/repository"
	"jobportal/internal/security"
)

type AuthService struct {
	accounts AccountStore
	hasher   *security.PasswordHasher
	tokens   *security.TokenIssuer
	log      zerolog.Logger
}

func NewAuthService(accounts AccountStore, hasher *security.PasswordHasher, tokens *security.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	// Length is checked in bytes in Register; validator counts runes.
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// Register creates an account. The role defaults to user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Role = strings.TrimSpace(input.Role)
	if err := validateStruct(&input); err != nil {
		return models.Account{}, err
	}
	if len(input.Password) > security.MaxPasswordBytes {
		return models.Account{}, apperr.Newf(apperr.KindValidation, "password must be at most %d bytes", security.MaxPasswordBytes)
	}

	role := models.RoleUser
	if input.Role != "" {
		role = models.Role(input.Role)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.Account{}, errors.Wrap(err, "hash password")
	}

	account := models.Account{
		ID:           ids.New(),
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return models.Account{}, apperr.Conflict("username already exists")
		}
		return models.Account{}, errors.Wrap(err, "create account")
	}

	s.log.Info().Str("account_id", account.ID).Str("role", string(account.Role)).Msg("account registered")
	account.PasswordHash = nil
	return account, nil
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     models.Account
}

// Login checks credentials and issues a session token. An unknown username and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := validateStruct(&input); err != nil {
		return LoginResult{}, err
	}

	account, err := s.accounts.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.hasher.VerifyAbsent(input.Password)
			return LoginResult{}, errInvalidCredentials()
		}
		return LoginResult{}, errors.Wrap(err, "find account")
	}

	if !s.hasher.Verify(input.Password, account.PasswordHash) {
		return LoginResult{}, errInvalidCredentials()
	}

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "issue token")
	}

	account.PasswordHash = nil
	return LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Account:     account,
	}, nil
}

// Verify validates a session token and returns its claims.
func (s *AuthService) Verify(token string) (*security.Claims, error) {
	return s.tokens.Parse(token)
}

func errInvalidCredentials() error {
	return apperr.New(apperr.KindUnauthorized, "invalid credentials")
}
