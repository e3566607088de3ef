// Package netx contains helpers for consuming HTTP responses from the API.
package netx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// DrainAndClose discards what is left of resp.Body (bounded) and closes it so
// the underlying connection can be reused. A nil resp is a no-op.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// DecodeJSON decodes resp.Body into v and closes the body.
func DecodeJSON(resp *http.Response, v any) error {
	defer DrainAndClose(resp)
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", resp.Request.URL.Path, err)
	}
	return nil
}

// ReadDetail extracts a human-readable error message from a non-success
// response and closes the body. The API reports errors as {"detail": "..."};
// other bodies are returned trimmed, and an empty body yields the status text.
func ReadDetail(resp *http.Response) string {
	defer DrainAndClose(resp)

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}

	if s := strings.TrimSpace(string(b)); s != "" && !strings.HasPrefix(s, "{") {
		return s
	}
	return resp.Status
}
