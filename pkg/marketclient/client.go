/**
 * @description
 * This package provides the client for the FlipCash marketplace REST API. It
 * encapsulates request construction, bearer authentication for the private
 * channel, response parsing and error normalization for every backend
 * resource group (auth, partner, leads, visits, agent operations, finance).
 *
 * The client exposes two channels:
 *   - public: no authentication (OTP send/verify, token refresh)
 *   - private: attaches the current access token from the TokenSource; on a
 *     401 carrying a token-invalid marker it asks the source to refresh the
 *     access token exactly once and replays the original request once. A
 *     second consecutive token failure tears the session down.
 *
 * There are no retries beyond that single auth replay and no client-side
 * caching; transient failures surface to the caller for manual retry.
 *
 * @dependencies
 * - bytes, context, encoding/json, net/http, time: Standard Go libraries.
 */

package marketclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSessionExpired is returned when the access token is rejected and the
// refresh attempt could not produce a usable replacement.
var ErrSessionExpired = errors.New("session expired")

// ErrNoTokenSource is returned when a private call is made before a token
// source has been configured.
var ErrNoTokenSource = errors.New("no token source configured")

// TokenSource supplies bearer tokens for the private channel and owns the
// reaction to authorization failures. The session manager implements it.
type TokenSource interface {
	// AccessToken returns the current access token.
	AccessToken() (string, error)
	// RefreshAccess exchanges the refresh token for a new access token.
	RefreshAccess(ctx context.Context) error
	// SessionExpired is invoked after refresh-and-replay has failed; the
	// implementation must tear the local session down.
	SessionExpired(ctx context.Context)
}

// Client is a client for the marketplace backend API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTPClient = h }
}

// WithTimeout sets the per-request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// NewClient creates a new marketplace API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the token source used by the private channel.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// public issues a request on the unauthenticated channel.
func (c *Client) public(ctx context.Context, method, path string, in, out interface{}) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, body, contentType, out, false)
}

// private issues a request on the authenticated channel with the
// refresh-once-and-replay policy applied.
func (c *Client) private(ctx context.Context, method, path string, in, out interface{}) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, body, contentType, out, true)
}

// privateMultipart issues an authenticated multipart form submission. The
// body is fully buffered so the auth replay stays safe.
func (c *Client) privateMultipart(ctx context.Context, path string, fields map[string]string, files []UploadFile, out interface{}) error {
	body, contentType, err := encodeMultipart(fields, files)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, path, body, contentType, out, true)
}

// send executes one request, applying bearer auth and the single
// refresh-and-replay cycle for private calls. The request body is held as a
// byte slice so the replayed request is identical to the original.
func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string, out interface{}, private bool) error {
	if private && c.tokens == nil {
		return ErrNoTokenSource
	}

	refreshed := false
	for {
		resp, respBody, err := c.execute(ctx, method, path, body, contentType, private)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return decodeJSON(respBody, out)
		}

		apiErr := parseAPIError(resp.StatusCode, respBody)

		if private && resp.StatusCode == http.StatusUnauthorized && apiErr.TokenInvalid() {
			if refreshed {
				// The replayed request was rejected too; no further
				// refresh attempts are made.
				log.Printf("level=warn component=marketclient op=%s_%s msg=\"replayed request rejected; tearing down session\"", strings.ToLower(method), path)
				c.tokens.SessionExpired(ctx)
				return fmt.Errorf("%w: %s", ErrSessionExpired, apiErr.Error())
			}
			if err := c.tokens.RefreshAccess(ctx); err != nil {
				log.Printf("level=warn component=marketclient op=refresh msg=\"token refresh failed; tearing down session\" err=%v", err)
				c.tokens.SessionExpired(ctx)
				return fmt.Errorf("%w: %v", ErrSessionExpired, err)
			}
			refreshed = true
			continue
		}

		return apiErr
	}
}

// execute performs a single HTTP round trip and reads the full body.
func (c *Client) execute(ctx context.Context, method, path string, body []byte, contentType string, private bool) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if private {
		token, err := c.tokens.AccessToken()
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, respBody, nil
}

// encodeJSON marshals a request payload, returning a nil body for nil input.
func encodeJSON(in interface{}) ([]byte, string, error) {
	if in == nil {
		return nil, "", nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return body, "application/json", nil
}

// decodeJSON unmarshals a response body into out, tolerating empty bodies.
func decodeJSON(body []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// queryPath appends URL query values to a path.
func queryPath(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
