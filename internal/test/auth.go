package test

import (
	"context"
	"strings"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const stubHashPrefix = "hash:"

// HasherStub stores passwords as "hash:<password>" unless overridden.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return stubHashPrefix + password, nil
}

func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if stored, ok := strings.CutPrefix(hash, stubHashPrefix); !ok || stored != password {
		return pkgAuth.ErrPasswordMismatch
	}
	return nil
}

// StrategyStub issues the literal token "token" and resolves every token to
// user 1 unless overridden.
type StrategyStub struct {
	IssueFn func(int64) (string, error)
	ParseFn func(string) (int64, error)
	NameVal string
}

func (s StrategyStub) IssueToken(userID int64) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID)
	}
	return "token", nil
}

func (s StrategyStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

func (s StrategyStub) Name() string {
	if s.NameVal == "" {
		return "stub"
	}
	return s.NameVal
}

// TokenParserStub resolves tokens for the auth middleware: ParseFn first,
// then Err, then ID.
type TokenParserStub struct {
	ID      int64
	Err     error
	ParseFn func(string) (int64, error)
}

func (s TokenParserStub) ParseToken(token string) (int64, error) {
	switch {
	case s.ParseFn != nil:
		return s.ParseFn(token)
	case s.Err != nil:
		return 0, s.Err
	default:
		return s.ID, nil
	}
}

// AuthFacadeStub answers account operations for handler tests.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (int64, error)
	ProfileFn      func(context.Context, int64) (*model.User, error)
}

func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn == nil {
		return "token", nil
	}
	return s.RegisterFn(ctx, login, password)
}

func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn == nil {
		return "token", nil
	}
	return s.AuthenticateFn(ctx, login, password)
}

func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn == nil {
		return 1, nil
	}
	return s.ParseFn(token)
}

func (s AuthFacadeStub) Profile(ctx context.Context, userID int64) (*model.User, error) {
	if s.ProfileFn == nil {
		return &model.User{ID: userID, Login: "user"}, nil
	}
	return s.ProfileFn(ctx, userID)
}

// StorefrontFacadeStub satisfies the whole HTTP facade; embed overrides per area.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	ProductFacadeStub
	HealthFacadeStub
}

var (
	_ pkgAuth.PasswordHasher = HasherStub{}
	_ pkgAuth.Strategy       = StrategyStub{}
)
