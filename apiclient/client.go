// Package apiclient talks to the salon booking REST API. It attaches the
// session's bearer token, refreshes it once on a 401 and normalizes error
// messages and list payloads.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath    = "/auth/token/refresh/"
	refreshTimeout = 15 * time.Second
)

// TokenStore holds the access and refresh tokens of one session.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(ctx context.Context, access string) error
	ClearTokens(ctx context.Context) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tokens     TokenStore
	refreshes  *singleflight.Group
}

// New builds a client for baseURL (for example http://localhost:8000/api/v1).
// A nil httpClient gets a 30s timeout and an instrumented transport.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		refreshes:  &singleflight.Group{},
	}
}

// WithTokens returns a client bound to one session's tokens. It shares the
// transport and the refresh de-duplication of c.
func (c *Client) WithTokens(tokens TokenStore) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

type request struct {
	method    string
	path      string
	query     url.Values
	body      []byte
	noRefresh bool
	anonymous bool
}

// Do sends one request and decodes a 2xx JSON answer into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, request{method: method, path: path, query: query}, body, out)
}

// DoAnonymous sends a request without credentials and without the refresh
// flow, for login and the public site.
func (c *Client) DoAnonymous(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, request{method: method, path: path, query: query, noRefresh: true, anonymous: true}, body, out)
}

func (c *Client) do(ctx context.Context, req request, body, out any) error {
	method, path := req.method, req.path
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.body = raw
	}
	raw, err := c.send(ctx, req, false)
	if err != nil {
		return err
	}
	return decodeInto(raw, out, method, path)
}

func decodeInto(raw []byte, out any, method, path string) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if rm, ok := out.(*json.RawMessage); ok {
		*rm = append((*rm)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs req. retried marks the second attempt after a refresh so
// that a request is never retried twice.
func (c *Client) send(ctx context.Context, req request, retried bool) ([]byte, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.method, req.path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried && !req.noRefresh && c.tokens != nil {
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		return c.send(ctx, req, true)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: extractMessage(raw), Body: raw}
	}
	return raw, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil && !req.anonymous {
		if token := c.tokens.AccessToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

// refresh exchanges the refresh token for a new access token. Concurrent
// 401s of the same session share one exchange, which outlives the request
// that started it. On failure both tokens are cleared and
// ErrSessionExpired is returned; a caller that gives up waiting gets its
// own context error and leaves the tokens alone.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.expire(ctx, "no refresh token")
		return ErrSessionExpired
	}
	detached := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		rctx, cancel := context.WithTimeout(detached, refreshTimeout)
		defer cancel()
		return nil, c.exchange(rctx, refreshToken)
	})
	select {
	case <-ctx.Done():
		return fmt.Errorf("refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return fmt.Errorf("%w: %v", ErrSessionExpired, res.Err)
		}
		return nil
	}
}

// exchange runs one refresh round-trip and stores or clears the tokens.
func (c *Client) exchange(ctx context.Context, refreshToken string) error {
	refreshCounter.WithLabelValues("attempt").Inc()
	var out struct {
		Access string `json:"access"`
	}
	raw, err := c.send(ctx, request{
		method:    http.MethodPost,
		path:      refreshPath,
		body:      mustJSON(map[string]string{"refresh": refreshToken}),
		noRefresh: true,
		anonymous: true,
	}, true)
	if err == nil {
		if jerr := json.Unmarshal(raw, &out); jerr != nil || out.Access == "" {
			err = fmt.Errorf("refresh: missing access token")
		}
	}
	if err != nil {
		refreshCounter.WithLabelValues("failure").Inc()
		c.expire(ctx, err.Error())
		return err
	}
	refreshCounter.WithLabelValues("success").Inc()
	if err := c.tokens.SetAccessToken(ctx, out.Access); err != nil {
		c.logger.Warn("store refreshed access token", "err", err)
	}
	return nil
}

func (c *Client) expire(ctx context.Context, reason string) {
	c.logger.Info("session expired, clearing tokens", "reason", reason)
	if err := c.tokens.ClearTokens(ctx); err != nil {
		c.logger.Warn("clear tokens", "err", err)
	}
}

func mustJSON(v any) []byte {
	raw, _ := json.Marshal(v)
	return raw
}
