// Package session keeps the single login token of the storefront.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/iyhunko/hifi-storefront/internal/kvstore"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
)

// TokenKey is the store key holding the session token.
const TokenKey = "token"

// LoginFailedMessage is shown for every failed login.
const LoginFailedMessage = "login failed, please check your credentials"

// ErrNoSession is returned by Current when nobody is logged in.
var ErrNoSession = errors.New("no active session")

// AuthError reports a failed login. Err keeps the underlying cause.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return LoginFailedMessage
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Authenticator trades credentials for a token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// Session is the logged in state. Holding one means the user is logged in.
type Session struct {
	Token string `json:"token"`
}

// Gate creates and destroys the session.
type Gate struct {
	store kvstore.Store
	auth  Authenticator
}

// NewGate creates a Gate persisting the token into store.
func NewGate(store kvstore.Store, auth Authenticator) *Gate {
	return &Gate{store: store, auth: auth}
}

// Login authenticates the credentials and persists the issued token.
func (g *Gate) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, &model.ValidationError{Field: "email"}
	}
	if strings.TrimSpace(password) == "" {
		return nil, &model.ValidationError{Field: "password"}
	}

	token, err := g.auth.Authenticate(ctx, email, password)
	if err != nil {
		slog.Info("login failed", slog.Any("err", err))
		return nil, &AuthError{Err: err}
	}
	if token == "" {
		return nil, &AuthError{Err: errors.New("empty token issued")}
	}

	if err := g.store.Set(ctx, TokenKey, token); err != nil {
		return nil, &repository.StorageError{Op: "write", Key: TokenKey, Err: err}
	}
	return &Session{Token: token}, nil
}

// IsActive reports whether a token is persisted.
func (g *Gate) IsActive(ctx context.Context) (bool, error) {
	_, err := g.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Current returns the active session or ErrNoSession.
func (g *Gate) Current(ctx context.Context) (*Session, error) {
	token, err := g.store.Get(ctx, TokenKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, &repository.StorageError{Op: "read", Key: TokenKey, Err: err}
	}
	if token == "" {
		return nil, ErrNoSession
	}
	return &Session{Token: token}, nil
}

// Logout removes the token. Logging out without a session is not an error.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.store.Remove(ctx, TokenKey); err != nil {
		return &repository.StorageError{Op: "remove", Key: TokenKey, Err: err}
	}
	return nil
}
