// Package api is the HTTP client for the registry backend.
//
// Client wraps net/http with the base URL, a fixed timeout, JSON headers
// and the bearer token from the session store, and turns every non-2xx
// answer into a typed error from pkg/apperr. A 401 clears the stored
// session and fires the OnUnauthorized hook, whichever endpoint was called.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmockd/regdesk/pkg/apperr"
	"github.com/getmockd/regdesk/pkg/logging"
	"github.com/getmockd/regdesk/pkg/session"
)

// DefaultBaseURL is used when no API_BASE_URL is configured.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the registry API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	session        session.Store
	log            *slog.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession sets the store the bearer token is read from.
func WithSession(s session.Store) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// OnUnauthorized registers fn to run after a 401 has cleared the session.
// The CLI uses it to point the user at the login command.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		session: session.NewMemory(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session store.
func (c *Client) Session() session.Store {
	return c.session
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, PathHealth, nil, nil)
	return err
}

// call performs a request and returns the response body of a 2xx answer.
// query and body may be nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, &apperr.NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.NetworkError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, c.handleError(method, path, resp.StatusCode, data)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if token := session.Token(c.session); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) handleError(method, path string, status int, body []byte) error {
	err := parseError(status, body)
	switch status {
	case http.StatusUnauthorized:
		if clearErr := session.ClearAuth(c.session); clearErr != nil {
			c.log.Warn("failed to clear session", "error", clearErr)
		}
		c.log.Info("session rejected by backend", "method", method, "path", path)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case http.StatusForbidden:
		c.log.Warn("access denied", "method", method, "path", path)
	case http.StatusNotFound:
		c.log.Debug("not found", "method", method, "path", path)
	case http.StatusInternalServerError:
		c.log.Error("backend error", "method", method, "path", path, "error", err)
	case http.StatusServiceUnavailable:
		c.log.Error("backend unavailable", "method", method, "path", path)
	}
	return err
}

func parseError(status int, body []byte) error {
	var resp apperr.Response
	if json.Unmarshal(body, &resp) == nil && (resp.Error != "" || resp.Message != "") {
		return apperr.FromResponse(status, &resp)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 {
		msg = http.StatusText(status)
	}
	return apperr.FromStatus(status, msg)
}

// unwrap returns the payload of a {success, data, message} envelope, or
// data itself when it is not an envelope.
func unwrap(data []byte) ([]byte, error) {
	var probe map[string]json.RawMessage
	if json.Unmarshal(data, &probe) != nil {
		return data, nil
	}
	if _, wrapped := probe["success"]; !wrapped {
		return data, nil
	}
	raw, ok := probe["data"]
	if !ok {
		return nil, errors.New("response envelope has no data")
	}
	return raw, nil
}

// decodeOne decodes a single object, wrapped or not.
func decodeOne[T any](data []byte) (T, error) {
	var out T
	data, err := unwrap(data)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
