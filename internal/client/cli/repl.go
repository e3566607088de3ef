package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error
	Audit(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the shopkeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                          - show available commands
//	  - login                         - authenticate
//	  - status                        - show the local session state
//	  - exit | quit                   - leave the program
//
//	Logged in:
//	  - help                          - show available commands
//	  - whoami                        - fetch the current profile
//	  - status                        - show the local session state
//	  - audit [page] [key=value ...]  - list audit log entries
//	  - stats [key=value ...]         - audit statistics
//	  - export pdf|excel [key=value]  - export the audit log
//	  - logout                        - log out
//	  - exit | quit                   - leave the program
//
// Errors returned by command handlers are reported to the user and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, status, audit [page] [key=value...], stats, export pdf|excel, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "status":
			err = a.Status(ctx)

		case "audit":
			err = a.Audit(ctx, args)

		case "stats":
			err = a.Stats(ctx, args)

		case "export":
			err = a.Export(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describeError(err))
		}
	}
}

// describeError turns an error into a message for the user.
func describeError(err error) string {
	var ice *client.InvalidCredentialsError
	var se *client.StatusError

	switch {
	case errors.As(err, &ice):
		return "Login failed: " + ice.Error()
	case errors.Is(err, client.ErrSessionExpired):
		return "Session expired, please log in again"
	case errors.Is(err, client.ErrNoRefreshCredential):
		return "Not logged in"
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable"
	case errors.As(err, &se) && se.Code == http.StatusForbidden:
		return "Permission denied: " + se.Detail
	case errors.As(err, &se) && se.Code == http.StatusUnauthorized:
		return "Not authorized: " + se.Detail
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	}
	return "Error: " + err.Error()
}
