package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	loginUser string
	loginPass []byte
	loginRet  *models.User
	loginErr  error

	logoutCalled bool
	logoutErr    error

	profile    *models.User
	profileErr error

	status    *services.SessionStatus
	statusErr error

	pingErr error
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (*models.User, error) {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	return f.loginRet, f.loginErr
}
func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}
func (f *fakeAuth) Profile(context.Context) (*models.User, error) { return f.profile, f.profileErr }
func (f *fakeAuth) Status(context.Context) (*services.SessionStatus, error) {
	if f.status == nil && f.statusErr == nil {
		return &services.SessionStatus{}, nil
	}
	return f.status, f.statusErr
}
func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func TestLogin_Success(t *testing.T) {
	out := capturePrint(t)
	f := &fakeAuth{loginRet: &models.User{Username: "admin", FirstName: "Ada", LastName: "Admin"}}
	a := &App{authService: f, out: io.Discard}

	pw := []byte("admin123")
	stubInputs(t, "admin", pw)

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "admin", f.loginUser)
	assert.Equal(t, "admin123", string(f.loginPass))
	assert.Equal(t, make([]byte, len(pw)), pw, "password wiped")
	assert.Equal(t, []string{"Welcome, Ada Admin (admin)!"}, *out)
}

func TestLogin_ErrorPropagates(t *testing.T) {
	capturePrint(t)
	f := &fakeAuth{loginErr: &client.InvalidCredentialsError{Detail: "nope"}}
	a := &App{authService: f, out: io.Discard}
	stubInputs(t, "admin", []byte("x"))

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
}

func TestLogin_InputError(t *testing.T) {
	origST := getSimpleText
	t.Cleanup(func() { getSimpleText = origST })
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return "", io.EOF }

	a := &App{authService: &fakeAuth{}, out: io.Discard}
	require.ErrorIs(t, a.Login(context.Background()), io.EOF)
}

func TestLogout(t *testing.T) {
	out := capturePrint(t)
	f := &fakeAuth{}
	a := &App{authService: f}

	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, f.logoutCalled)
	assert.Equal(t, []string{"Logged out"}, *out)

	f.logoutErr = errors.New("disk")
	require.Error(t, a.Logout(context.Background()))
}

func TestWhoAmI(t *testing.T) {
	out := capturePrint(t)
	f := &fakeAuth{profile: &models.User{Username: "admin", Email: "admin@shop.test", Role: "admin", IsStaff: true}}
	a := &App{authService: f}

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Equal(t, []string{
		"admin <admin@shop.test>",
		"role: admin  staff: true  superuser: false",
	}, *out)

	f.profileErr = client.ErrSessionExpired
	require.ErrorIs(t, a.WhoAmI(context.Background()), client.ErrSessionExpired)
}

func TestStatus_Output(t *testing.T) {
	orig := now
	t.Cleanup(func() { now = orig })
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }

	t.Run("logged out", func(t *testing.T) {
		out := capturePrint(t)
		a := &App{authService: &fakeAuth{}}
		require.NoError(t, a.Status(context.Background()))
		assert.Equal(t, []string{"Not logged in"}, *out)
	})

	t.Run("valid token", func(t *testing.T) {
		out := capturePrint(t)
		a := &App{authService: &fakeAuth{status: &services.SessionStatus{
			Authenticated: true,
			User:          &models.User{Username: "admin"},
			Subject:       "1",
			ExpiresAt:     base.Add(4 * time.Minute),
		}}}
		require.NoError(t, a.Status(context.Background()))
		assert.Equal(t, []string{"Logged in as admin", "Token subject: 1", "Access token expires in 4m0s"}, *out)
	})

	t.Run("expired token", func(t *testing.T) {
		out := capturePrint(t)
		a := &App{authService: &fakeAuth{status: &services.SessionStatus{
			Authenticated: true,
			ExpiresAt:     base.Add(-90 * time.Second),
		}}}
		require.NoError(t, a.Status(context.Background()))
		assert.Equal(t, []string{"Logged in as unknown user", "Access token expired 1m30s ago (renewed on next request)"}, *out)
	})
}
