package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const minPasswordLen = 8

// AuthUseCase opens sessions for customers.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates an account and opens a session for it. Logins are
// case-insensitive; a taken login yields ErrAlreadyExists.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.Session, error) {
	login, err := credentials(login, password)
	if err != nil {
		return nil, err
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	usr, err := u.users.Create(ctx, login, hash)
	if err != nil {
		return nil, err
	}
	return u.openSession(usr)
}

// Authenticate opens a session for an existing account. Unknown logins and
// wrong passwords are indistinguishable to the caller.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.Session, error) {
	login, err := credentials(login, password)
	if err != nil {
		return nil, err
	}

	usr, err := u.users.GetByLogin(ctx, login)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return nil, domainErrors.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, domainErrors.ErrInvalidCredentials
	}
	return u.openSession(usr)
}

// ParseToken resolves a session token to its user id.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// Profile returns the account behind a session.
func (u *AuthUseCase) Profile(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, domainErrors.ErrInvalidCredentials
	}
	usr, err := u.users.GetByID(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.ErrInvalidCredentials
	}
	return usr, err
}

func (u *AuthUseCase) openSession(usr *model.User) (*model.Session, error) {
	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.Session{UserID: usr.ID, Login: usr.Login, Token: token}, nil
}

// credentials normalizes the login and rejects blank input.
func credentials(login, password string) (string, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	return login, nil
}

func checkPasswordLength(password string) error {
	switch {
	case len(password) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", domainErrors.ErrValidation, minPasswordLen)
	case len(password) > pkgAuth.MaxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", domainErrors.ErrValidation, pkgAuth.MaxPasswordBytes)
	}
	return nil
}
