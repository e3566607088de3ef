package services

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/netx"
)

const (
	profilePath     = "/api/users/profile/"
	auditPath       = "/api/audit/"
	auditStatsPath  = "/api/audit/stats/"
	auditPDFPath    = "/api/audit/export_pdf/"
	auditExcelPath  = "/api/audit/export_excel/"
	maxDocumentSize = 64 << 20
)

// getJSON issues an authenticated GET and decodes a 2xx body into out.
func getJSON(ctx context.Context, c client.Client, rawURL string, out any) error {
	resp, err := get(ctx, c, rawURL, "application/json")
	if err != nil {
		return err
	}
	return netx.DecodeJSON(resp, out)
}

// getBytes issues an authenticated GET and returns the 2xx body with its
// content type.
func getBytes(ctx context.Context, c client.Client, rawURL string) ([]byte, string, error) {
	resp, err := get(ctx, c, rawURL, "")
	if err != nil {
		return nil, "", err
	}
	defer netx.DrainAndClose(resp)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, "", err
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func get(ctx context.Context, c client.Client, rawURL, accept string) (*http.Response, error) {
	var h http.Header
	if accept != "" {
		h = http.Header{"Accept": []string{accept}}
	}

	resp, err := c.Request(ctx, rawURL, client.RequestOptions{Method: http.MethodGet, Header: h})
	if err != nil {
		return nil, err
	}
	if !netx.IsSuccess(resp.StatusCode) {
		return nil, &client.StatusError{Code: resp.StatusCode, Detail: netx.ReadDetail(resp)}
	}
	return resp, nil
}
