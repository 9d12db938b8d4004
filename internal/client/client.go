// Package client is an HTTP client for the auth portal API. It keeps the
// session cookie in a cookie jar, so callers never handle the token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go-auth-portal/internal/model"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 10 * time.Second
	defaultError   = "An error occurred"
)

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err means the session is missing or invalid.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return true
	}
	return err != nil && (strings.Contains(err.Error(), "401") || strings.Contains(err.Error(), "Unauthorized"))
}

type forwardedKey struct{}

// WithForwardedFor makes requests sent with ctx carry chain as their
// X-Forwarded-For header, so the API rate-limits the original visitor.
func WithForwardedFor(ctx context.Context, chain string) context.Context {
	return context.WithValue(ctx, forwardedKey{}, chain)
}

// ForwardedFor returns the chain set by WithForwardedFor.
func ForwardedFor(ctx context.Context) string {
	chain, _ := ctx.Value(forwardedKey{}).(string)
	return chain
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A jar is attached if the
// client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL is required")
	}

	c := &Client{baseURL: baseURL, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginUser, error) {
	var out model.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, nil, &out); err != nil {
		return model.LoginUser{}, err
	}
	return out.User, nil
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error) {
	var out model.RegisterResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, nil, &out); err != nil {
		return model.RegisteredUser{}, err
	}
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// CurrentUser returns the user owning the session cookie held by the jar.
func (c *Client) CurrentUser(ctx context.Context) (model.PublicUser, error) {
	var out model.PublicUser
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out); err != nil {
		return model.PublicUser{}, err
	}
	return out, nil
}

// UserForToken resolves an explicit token, bypassing the jar. The edge server
// uses it to forward a browser's cookie.
func (c *Client) UserForToken(ctx context.Context, token string) (model.PublicUser, error) {
	var out model.PublicUser
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, header, &out); err != nil {
		return model.PublicUser{}, err
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.PublicUser, error) {
	var out model.PublicUser
	if err := c.do(ctx, http.MethodPatch, "/users/me", req, nil, &out); err != nil {
		return model.PublicUser{}, err
	}
	return out, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func (c *Client) do(ctx context.Context, method string, path string, body any, header http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if chain := ForwardedFor(ctx); chain != "" {
		req.Header.Set("X-Forwarded-For", chain)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(env, decodeErr)}
	}
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		return fmt.Errorf("client: decode response: %w", decodeErr)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode data: %w", err)
	}
	return nil
}

func errorMessage(env envelope, decodeErr error) string {
	if decodeErr != nil {
		return defaultError
	}
	if env.Message != "" {
		return env.Message
	}
	if env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return defaultError
}
