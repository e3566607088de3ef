package client

import (
	"context"
	"net/http"
)

// Client is the API surface used by the services layer.
type Client interface {
	Request(ctx context.Context, rawURL string, opts RequestOptions) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Ping(ctx context.Context) error
}

// RequestOptions describes a request issued through the gateway. An empty
// Method means GET.
type RequestOptions struct {
	Method string
	Header http.Header
	Body   []byte
}

var _ Client = (*Gateway)(nil)
