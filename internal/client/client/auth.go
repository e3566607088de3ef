package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the login endpoint's success payload. User is present
// only when the server includes the profile.
type LoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user,omitempty"`
}

// Login exchanges username and password for a credential pair. It does not
// touch the store. A 400, 401 or 403 answer is returned as
// *InvalidCredentialsError with the server's message.
func (g *Gateway) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := g.postJSON(ctx, g.loginPath, loginRequest{Username: username, Password: password}, &out)

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return nil, &InvalidCredentialsError{Detail: se.Detail}
		}
	}
	if err != nil {
		return nil, err
	}

	if out.Access == "" || out.Refresh == "" {
		return nil, fmt.Errorf("login response is missing credentials")
	}
	return &out, nil
}
