package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// now is the clock used for expiry display.
var now = time.Now

// Login prompts for username and password and replaces the stored session.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", user.DisplayName()))
	return nil
}

// Logout forgets the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI fetches the current profile from the server.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.Profile(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("%s <%s>", u.DisplayName(), u.Email))
	printlnFn(fmt.Sprintf("role: %s  staff: %t  superuser: %t", u.Role, u.IsStaff, u.IsSuperuser))
	return nil
}

// Status prints the local session state without contacting the server.
func (a *App) Status(ctx context.Context) error {
	st, err := a.authService.Status(ctx)
	if err != nil {
		return err
	}

	if !st.Authenticated {
		printlnFn("Not logged in")
		return nil
	}

	who := "unknown user"
	if st.User != nil {
		who = st.User.DisplayName()
	}
	printlnFn("Logged in as " + who)

	if st.Subject != "" {
		printlnFn("Token subject: " + st.Subject)
	}
	if !st.ExpiresAt.IsZero() {
		t := now()
		if st.Expired(t) {
			printlnFn(fmt.Sprintf("Access token expired %s ago (renewed on next request)", t.Sub(st.ExpiresAt).Round(time.Second)))
		} else {
			printlnFn(fmt.Sprintf("Access token expires in %s", st.ExpiresAt.Sub(t).Round(time.Second)))
		}
	}
	return nil
}
