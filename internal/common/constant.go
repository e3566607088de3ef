// Package common contains constants, sentinel errors and small helpers shared
// by the shopkeeper client packages.
package common

// Header names used on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "
)

// Metadata keys under which the credential store persists session state.
// They mirror the keys the web front end keeps in localStorage.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UserProfileKey  = "user"
)
