package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable = errors.New("server unavailable")

	// ErrInvalidCredentials reports a login rejected by the server. The
	// concrete error is *InvalidCredentialsError carrying the server message.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoRefreshCredential reports a 401 while no refresh credential is
	// stored. The session is cleared; the user has to log in again.
	ErrNoRefreshCredential = errors.New("no refresh credential")

	// ErrSessionExpired reports a failed renewal. The session is cleared.
	ErrSessionExpired = errors.New("session expired")

	ErrUnexpectedStatus = errors.New("unexpected status")

	errBodyNotReplayable = errors.New("request body cannot be replayed")
)

// InvalidCredentialsError carries the server's message for a rejected login.
type InvalidCredentialsError struct {
	Detail string
}

func (e *InvalidCredentialsError) Error() string {
	if e.Detail == "" {
		return ErrInvalidCredentials.Error()
	}
	return e.Detail
}

func (e *InvalidCredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// StatusError is a non-2xx API response turned into an error.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Detail)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
