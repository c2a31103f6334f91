// Package apiclient talks to the project-management backend.
//
// A single Client owns the HTTP transport and the request hook that attaches
// the bearer token, so every resource area shares the same authentication.
// Resource areas (Auth, Project, Projects, Users, Admin, Storage) are thin
// typed wrappers around it.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// TokenSource supplies the bearer token for outgoing requests.
// *session.Session satisfies it.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

type requestIDKey struct{}

// WithRequestID makes outgoing requests carry rid in X-Request-Id.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("downstream %s %s -> %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// IsAuthError reports whether err is a 401 or 403 from the backend, which
// means the session is no longer accepted.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	http       *resty.Client
	tokens     TokenSource
	storageURL string

	Auth     *AuthAPI
	Project  *ProjectAPI
	Projects *ProjectsAPI
	Users    *UsersAPI
	Admin    *AdminAPI
	Storage  *StorageAPI
}

// Option tweaks a Client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithStorageURL sets the base URL uploaded file paths are resolved against.
// It defaults to the API base URL.
func WithStorageURL(u string) Option {
	return func(c *Client) {
		c.storageURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL)
	}
}

// New creates a client for the backend at baseURL. tokens may be nil for
// anonymous use (login, register).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	c := &Client{
		http:       resty.New().SetBaseURL(base),
		tokens:     tokens,
		storageURL: base,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetHeader("Accept", "application/json; charset=utf-8").
		OnBeforeRequest(c.authorize)

	c.Auth = &AuthAPI{c: c}
	c.Project = &ProjectAPI{c: c}
	c.Projects = &ProjectsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Admin = &AdminAPI{c: c}
	c.Storage = &StorageAPI{c: c}

	return c
}

// authorize is the one interceptor every request goes through.
func (c *Client) authorize(_ *resty.Client, r *resty.Request) error {
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			r.SetAuthToken(tok)
		}
	}

	rid, _ := r.Context().Value(requestIDKey{}).(string)
	if rid == "" {
		rid = uuid.NewString()
	}
	r.SetHeader("X-Request-Id", rid)

	return nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// do sends r and decodes a 2xx body into out (when out is not nil).
func (c *Client) do(r *resty.Request, method, path string, out any) error {
	if r.Body != nil {
		r.SetHeader("Content-Type", "application/json; charset=utf-8")
	}
	resp, err := r.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return &APIError{
			Method: method,
			URL:    path,
			Status: resp.StatusCode(),
			Body:   strings.TrimSpace(resp.String()),
		}
	}
	if out == nil {
		return nil
	}

	return decode(resp.Body(), out)
}

// decode reads body into out. String targets also accept a bare text body,
// which is how the backend answers with tokens and file paths.
func decode(body []byte, out any) error {
	if s, ok := out.(*string); ok {
		if err := json.Unmarshal(body, s); err != nil {
			*s = strings.TrimSpace(string(body))
		}
		return nil
	}
	if len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(c.request(ctx), http.MethodGet, path, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	r := c.request(ctx)
	if body != nil {
		r.SetBody(body)
	}

	return c.do(r, http.MethodPost, path, out)
}
