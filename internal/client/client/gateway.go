package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultLoginPath      = "/api/token/"
	DefaultRefreshPath    = "/api/token/refresh/"
	DefaultRefreshTimeout = 15 * time.Second

	// renewalKey is the single-flight key; a gateway serves one session.
	renewalKey = "session"
)

// Gateway issues authenticated requests against the API. It attaches the
// stored access credential, and on a 401 renews it once with the refresh
// credential and replays the request.
//
// Concurrent requests that hit a 401 together share one renewal. A request
// whose 401 was caused by a credential that has since been replaced retries
// with the replacement and does not renew again.
//
// A Gateway is safe for concurrent use.
type Gateway struct {
	baseURL        *url.URL
	loginPath      string
	refreshPath    string
	refreshTimeout time.Duration

	httpClient *http.Client
	store      credentials.Store
	limiter    *rate.Limiter
	log        logging.Logger

	renewals singleflight.Group
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets the client used for every outbound call.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// WithRateLimit caps outbound requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(g *Gateway) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithEndpoints overrides the login and refresh paths. Empty values keep the
// defaults.
func WithEndpoints(loginPath, refreshPath string) Option {
	return func(g *Gateway) {
		if loginPath != "" {
			g.loginPath = loginPath
		}
		if refreshPath != "" {
			g.refreshPath = refreshPath
		}
	}
}

// WithRefreshTimeout bounds a renewal call, independent of the caller's
// context.
func WithRefreshTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.refreshTimeout = d
		}
	}
}

// NewGateway returns a gateway for the API at baseURL, which must be absolute.
func NewGateway(baseURL string, store credentials.Store, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	g := &Gateway{
		baseURL:        u,
		loginPath:      DefaultLoginPath,
		refreshPath:    DefaultRefreshPath,
		refreshTimeout: DefaultRefreshTimeout,
		httpClient:     http.DefaultClient,
		store:          store,
		log:            logging.NewNop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Store returns the credential store the gateway reads from.
func (g *Gateway) Store() credentials.Store {
	return g.store
}

// Request builds a request for rawURL, resolved against the base URL when
// relative, and issues it through Do.
func (g *Gateway) Request(ctx context.Context, rawURL string, opts RequestOptions) (*http.Response, error) {
	target, err := g.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	if opts.Body != nil {
		req, err = http.NewRequestWithContext(ctx, method, target, bytes.NewReader(opts.Body))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	}
	if err != nil {
		return nil, err
	}
	if opts.Header != nil {
		req.Header = opts.Header.Clone()
	}

	return g.Do(req)
}

// Do issues req with the current access credential, renewing and replaying it
// at most once on 401. A request with a body must provide GetBody for the
// replay; http.NewRequest does so for in-memory bodies.
//
// Any response other than the first 401 is returned as is, including a 401
// from the replay. Transport errors are returned unchanged. A failed renewal
// yields ErrSessionExpired, a missing refresh credential
// ErrNoRefreshCredential; both leave the store cleared.
func (g *Gateway) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req = req.Clone(ctx)
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	log := g.log.With("request_id", req.Header.Get(common.RequestIDHeaderName))

	sent, err := g.store.Access(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := g.send(req, sent)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	netx.DrainAndClose(resp)

	log.Debug(ctx, "request unauthorized, renewing access credential",
		"method", req.Method, "path", req.URL.Path)

	access, err := g.renew(ctx, log, sent)
	if err != nil {
		return nil, err
	}

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	return g.send(retry, access)
}

// Ping reports whether the API answers at all. Any HTTP response counts.
func (g *Gateway) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	netx.DrainAndClose(resp)
	return nil
}

// send issues a copy of req carrying token as its bearer credential. An empty
// token leaves the Authorization header as the caller set it.
func (g *Gateway) send(req *http.Request, token string) (*http.Response, error) {
	if err := g.wait(req.Context()); err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return g.httpClient.Do(out)
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// renew returns the access credential to replay with. Callers that 401 while
// a renewal is in flight join it; the caller stops waiting when its own
// context ends, the renewal itself runs to completion.
func (g *Gateway) renew(ctx context.Context, log logging.Logger, sent string) (string, error) {
	ch := g.renewals.DoChan(renewalKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
		defer cancel()
		return g.renewSession(rctx, log, sent)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (g *Gateway) renewSession(ctx context.Context, log logging.Logger, sent string) (string, error) {
	current, err := g.store.Access(ctx)
	if err != nil {
		return "", err
	}
	if current != "" && current != sent {
		log.Debug(ctx, "access credential already replaced, skipping renewal")
		return current, nil
	}
	if current == "" && sent != "" {
		// an earlier renewal failed or the user logged out after this request was sent
		return "", fmt.Errorf("%w: session ended before renewal", ErrSessionExpired)
	}

	refresh, err := g.store.Refresh(ctx)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		log.Info(ctx, "no refresh credential, ending session")
		g.endSession(ctx, log, "")
		return "", ErrNoRefreshCredential
	}

	log.Info(ctx, "renewing access credential")

	access, err := g.callRefresh(ctx, refresh)
	if err != nil {
		log.Warn(ctx, "access credential renewal failed", "error", err)
		g.endSession(ctx, log, refresh)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	swapped, err := g.store.SwapAccess(ctx, refresh, access)
	if err != nil {
		return "", err
	}
	if !swapped {
		// logout or a new login happened while renewing
		current, err := g.store.Access(ctx)
		if err != nil {
			return "", err
		}
		if current == "" {
			return "", fmt.Errorf("%w: session ended during renewal", ErrSessionExpired)
		}
		return current, nil
	}

	log.Info(ctx, "access credential renewed")
	return access, nil
}

// endSession clears the store unless a different session replaced the one
// that failed. An empty refresh clears unconditionally.
func (g *Gateway) endSession(ctx context.Context, log logging.Logger, refresh string) {
	if refresh != "" {
		current, err := g.store.Refresh(ctx)
		if err == nil && current != "" && current != refresh {
			return
		}
	}
	if err := g.store.Clear(ctx); err != nil {
		log.Error(ctx, "failed to clear credentials", "error", err)
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// callRefresh exchanges refresh for a new access credential. A refresh field
// in the response is ignored; the refresh credential is never rotated.
func (g *Gateway) callRefresh(ctx context.Context, refresh string) (string, error) {
	var out refreshResponse
	if err := g.postJSON(ctx, g.refreshPath, refreshRequest{Refresh: refresh}, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("renewal response carries no access credential")
	}
	return out.Access, nil
}

// postJSON posts in to path without credentials and decodes a 2xx response
// into out. Non-2xx responses become *StatusError.
func (g *Gateway) postJSON(ctx context.Context, path string, in, out any) error {
	target, err := g.resolve(path)
	if err != nil {
		return err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	if err := g.wait(ctx); err != nil {
		return err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	if !netx.IsSuccess(resp.StatusCode) {
		return &StatusError{Code: resp.StatusCode, Detail: netx.ReadDetail(resp)}
	}
	return netx.DecodeJSON(resp, out)
}

func (g *Gateway) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	return g.baseURL.ResolveReference(ref).String(), nil
}

// rewind returns a copy of req with a fresh body for the replay.
func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return out, nil
	}
	if req.GetBody == nil {
		return nil, errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBodyNotReplayable, err)
	}
	out.Body = body
	return out, nil
}
