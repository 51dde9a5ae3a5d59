/**
 * @description
 * Authentication endpoints. OTP send/verify and token refresh run on the
 * public channel; logout and the current-user lookup require a bearer token.
 */

package marketclient

import (
	"context"
	"net/http"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// SendOTPRequest asks the backend to dispatch a one-time code.
type SendOTPRequest struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
}

// OTPChallenge reports the lifetime of a dispatched code.
type OTPChallenge struct {
	ExpiresIn   int `json:"expires_in"`
	ResendAfter int `json:"resend_after"`
}

// VerifyOTPRequest exchanges a code for a token pair.
type VerifyOTPRequest struct {
	Phone    string `json:"phone"`
	Code     string `json:"code"`
	DeviceID string `json:"device_id"`
}

// LoginResult is the outcome of a successful OTP verification.
type LoginResult struct {
	Tokens  domain.TokenPair `json:"tokens"`
	User    domain.User      `json:"user"`
	Created bool             `json:"created"`
}

// refreshRequest exchanges the refresh token for a new access token.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResult carries the rotated tokens. The backend may or may not
// rotate the refresh token; an empty Refresh means the old one stays valid.
type RefreshResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// SendOTP dispatches a login OTP to the given phone number.
func (c *Client) SendOTP(ctx context.Context, req SendOTPRequest) (*OTPChallenge, error) {
	var out OTPChallenge
	if err := c.public(ctx, http.MethodPost, "/auth/otp/send", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP exchanges a received code for a token pair and user profile.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error) {
	var out LoginResult
	if err := c.public(ctx, http.MethodPost, "/auth/otp/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a fresh access token. This runs
// on the public channel so it works with an already-expired access token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*RefreshResult, error) {
	var out RefreshResult
	if err := c.public(ctx, http.MethodPost, "/auth/token/refresh", refreshRequest{Refresh: refresh}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the backend to invalidate the refresh token. Callers treat
// failures as best-effort: local state is cleared regardless.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	return c.private(ctx, http.MethodPost, "/auth/logout", refreshRequest{Refresh: refresh}, nil)
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.private(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
