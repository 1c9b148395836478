// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sellerconsole/internal/models"
)

// AuthResult is the outcome of a successful sign-in or activation.
type AuthResult struct {
	AccessToken string        `json:"accessToken"`
	Seller      models.Seller `json:"user"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/seller/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("backend login: no access token in response")
	}
	return &out, nil
}

// Register creates a seller account and returns the activation token that
// must accompany the emailed activation code.
func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	var out struct {
		ActivationToken string `json:"activationToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/seller/auth/register", in, &out); err != nil {
		return "", err
	}
	return out.ActivationToken, nil
}

// Verify activates a new account.
func (c *Client) Verify(ctx context.Context, code, activationToken string) (*AuthResult, error) {
	body := map[string]string{"activationCode": code, "activationToken": activationToken}
	var out AuthResult
	if err := c.do(ctx, http.MethodPost, "/seller/auth/verify", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the seller the current token belongs to.
func (c *Client) Profile(ctx context.Context) (*models.Seller, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/seller/auth/profile", nil, &raw); err != nil {
		return nil, err
	}
	return oneOf[models.Seller](raw, "user")
}

// GoogleURL is where the browser is sent to start Google sign-in. The
// backend redirects back to callback with the token in the query string.
func (c *Client) GoogleURL(callback string) string {
	q := url.Values{"redirect": {callback}}
	return c.baseURL + "/seller/auth/google?" + q.Encode()
}

// TwoFAGenerate starts 2FA enrolment and returns the QR code URL, which is
// either an image data URL or an otpauth:// URI.
func (c *Client) TwoFAGenerate(ctx context.Context) (string, error) {
	var out struct {
		QRCodeURL string `json:"qrCodeUrl"`
	}
	if err := c.do(ctx, http.MethodGet, "/seller/2fa/generate", nil, &out); err != nil {
		return "", err
	}
	return out.QRCodeURL, nil
}

// TwoFAVerify checks a one-time code against the seller's 2FA secret.
func (c *Client) TwoFAVerify(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/seller/2fa/verify", map[string]string{"code": code}, nil)
}

// TokenExpiry reads the exp claim of an access token without verifying the
// signature; the backend remains the authority on validity.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
