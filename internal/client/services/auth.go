// Package services contains application services for the shopkeeper client.
// This file defines the authentication service: login, logout, profile
// caching, session status and the liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange username/password for a credential pair and persist it
//     together with the user's profile. A rejected login returns an error
//     matching client.ErrInvalidCredentials; the store is left untouched.
//   - Logout: clear every stored credential. Idempotent.
//   - Profile: fetch the current user's profile and refresh the cached copy.
//   - Status: describe the local session without contacting the server.
//   - Ping: check server liveness.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	Status(ctx context.Context) (*SessionStatus, error)
	Ping(ctx context.Context) error
}

// SessionStatus is a local view of the session. Token fields are read from
// the access credential without verifying its signature and are empty when
// the credential is not a JWT.
type SessionStatus struct {
	Authenticated bool
	User          *models.User
	Subject       string
	ExpiresAt     time.Time
}

// Expired reports whether the access credential's own expiry has passed.
// The server stays the authority; an expired credential is renewed on the
// next request.
func (s *SessionStatus) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type authService struct {
	client client.Client
	store  credentials.Store
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// credential store.
func NewAuthService(c client.Client, store credentials.Store, log logging.Logger) AuthService {
	return &authService{client: c, store: store, log: log}
}

// Login authenticates against the server and replaces the stored session.
// When the login response carries no profile, it is fetched separately; a
// failed fetch does not fail the login.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	if username == "" {
		return nil, common.ErrorEmptyUsername
	}

	res, err := a.client.Login(ctx, username, string(password))
	common.WipeByteArray(password)
	if err != nil {
		if errors.Is(err, client.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.store.SetSession(ctx, res.Access, res.Refresh, res.User); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	a.log.Info(ctx, "logged in", "username", username)

	if res.User != nil {
		return res.User, nil
	}

	user, err := a.Profile(ctx)
	if err != nil {
		a.log.Warn(ctx, "profile fetch after login failed", "error", err)
		return &models.User{Username: username}, nil
	}
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := getJSON(ctx, a.client, profilePath, &user); err != nil {
		return nil, err
	}
	if err := a.store.SetProfile(ctx, &user); err != nil {
		return nil, fmt.Errorf("caching profile: %w", err)
	}
	return &user, nil
}

func (a *authService) Status(ctx context.Context) (*SessionStatus, error) {
	access, err := a.store.Access(ctx)
	if err != nil {
		return nil, err
	}
	st := &SessionStatus{Authenticated: access != ""}
	if !st.Authenticated {
		return st, nil
	}

	if st.User, err = a.store.Profile(ctx); err != nil {
		return nil, err
	}

	if claims, ok := inspectToken(access); ok {
		st.Subject = claims.subject()
		if claims.ExpiresAt != nil {
			st.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return st, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// accessClaims covers both the standard subject and the user_id claim the
// API puts into its tokens.
type accessClaims struct {
	UserID any `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *accessClaims) subject() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.UserID != nil {
		return fmt.Sprint(c.UserID)
	}
	return ""
}

// inspectToken decodes token's claims without verifying it. The client has
// no key to verify with; the result is informational only.
func inspectToken(token string) (*accessClaims, bool) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, false
	}
	return &claims, true
}
