// Package authclient talks to the login service on behalf of the terminal
// client.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tinytelemetry/orbit/internal/auth"
	"github.com/tinytelemetry/orbit/internal/session"
)

// APIError is a non-2xx reply from the service.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("authclient: %d %s (request %s)", e.Status, msg, e.RequestID)
	}
	return fmt.Sprintf("authclient: %d %s", e.Status, msg)
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the login service.
type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log.With().Str("component", "authclient").Logger(),
	}
}

// Login exchanges credentials for a session record.
func (c *Client) Login(ctx context.Context, username, password string) (session.Record, error) {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	err := c.call(ctx, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return session.Record{}, err
	}
	if resp.Token == "" {
		return session.Record{}, errors.New("authclient: login response carried no token")
	}
	return session.Record{Token: resp.Token, Username: username, ExpiresAt: resp.ExpiresAt}, nil
}

// Profile returns the claims the service decoded from token.
func (c *Client) Profile(ctx context.Context, token string) (auth.Claims, error) {
	var resp struct {
		User auth.Claims `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/profile", token, nil, &resp); err != nil {
		return auth.Claims{}, err
	}
	return resp.User, nil
}

// Logout asks the service to clear its cookie.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/api/logout", token, nil, nil)
}

// call performs one request and decodes the reply into dest.
func (c *Client) call(ctx context.Context, method, path, token string, body interface{}, dest interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authclient: marshal body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("authclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("authclient: read response: %w", err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("call finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if dest != nil && len(data) > 0 {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("authclient: unmarshal response: %w", err)
		}
	}
	return nil
}
