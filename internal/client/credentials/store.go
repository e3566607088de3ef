// Package credentials owns the session's access and refresh credentials and
// the cached user profile.
//
// The store is the single shared mutable resource of a session: the request
// gateway reads the access credential for every request and writes it after
// a renewal, login writes all three values, and logout or a failed renewal
// clears them together. Presence of the access credential is the only test
// for "authenticated"; expiry is never inspected here.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// Store persists session credentials. Implementations are safe for
// concurrent use. Absent credentials are reported as "".
type Store interface {
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, token string) error
	SetRefresh(ctx context.Context, token string) error

	// SwapAccess stores access only while the stored refresh credential still
	// equals refresh, and reports whether it did. A renewal that completes
	// after a logout or a new login must not overwrite that newer state.
	SwapAccess(ctx context.Context, refresh, access string) (bool, error)

	// SetSession replaces the whole session in one step. A nil user removes
	// any cached profile.
	SetSession(ctx context.Context, access, refresh string, user *models.User) error

	Profile(ctx context.Context) (*models.User, error)
	SetProfile(ctx context.Context, user *models.User) error

	// Clear removes both credentials and the profile as one unit. Clearing
	// an empty store is a no-op.
	Clear(ctx context.Context) error

	IsAuthenticated(ctx context.Context) (bool, error)
}
