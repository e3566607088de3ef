// Package client talks to the shop API over HTTP.
//
// # Overview
//
// The package provides:
//  1. Gateway, the authenticated request path. Every request carries the
//     stored access credential as a bearer token; a 401 triggers one renewal
//     with the refresh credential, shared by all concurrent callers, followed
//     by a single replay of the request.
//  2. Login and Ping, the unauthenticated endpoints.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI,
//     opening the SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrInvalidCredentials, ErrNoRefreshCredential, ErrSessionExpired,
// ErrUnexpectedStatus and ErrUnavailable. Transport errors are returned
// unchanged.
//
// Concurrency & Contexts
//
// Gateway is safe for concurrent use. All operations accept context.Context;
// a caller whose context ends stops waiting for a shared renewal, while the
// renewal itself completes under its own timeout so the store stays
// consistent.
//
// See Also
//
//   - Interface:  Client
//   - HTTP impl:  Gateway
//   - DB helpers: InitDatabase, RunMigrations
package client
