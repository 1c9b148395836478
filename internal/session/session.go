// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. The seller's backend access token is kept
// sealed inside the session payload and never reaches the browser.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "bb_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32

	// minTTL keeps a session alive briefly even when the token is about to expire.
	minTTL = time.Minute
)

// ErrNoToken is returned by Store.Token when the session holds no token.
var ErrNoToken = errors.New("session: no backend token")

// Data holds the session payload stored in Valkey: the seller's identity,
// a snapshot of their brand, onboarding and 2FA progress, and the sealed
// backend token.
type Data struct {
	SellerID    string    `json:"seller_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	ProfilePic  string    `json:"profile_pic,omitempty"`
	Username    string    `json:"username,omitempty"`
	SealedToken string    `json:"sealed_token,omitempty"`
	TokenExpiry time.Time `json:"token_expiry,omitzero"`

	BrandID   string `json:"brand_id,omitempty"`
	BrandName string `json:"brand_name,omitempty"`

	ProfileComplete   bool `json:"profile_complete"`
	AgreementAccepted bool `json:"agreement_accepted"`
	TwoFAEnabled      bool `json:"two_fa_enabled"`
	TwoFADone         bool `json:"two_fa_done"`

	// ActivationToken is set between sign-up and code verification, when
	// the session has no seller yet.
	ActivationToken string `json:"activation_token,omitempty"`
	PendingEmail    string `json:"pending_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether the session belongs to a signed-in seller.
func (d *Data) Authenticated() bool {
	return d != nil && d.SellerID != "" && d.SealedToken != ""
}

// Onboarded reports whether the seller may use the console proper.
func (d *Data) Onboarded() bool {
	return (d.ProfileComplete || d.AgreementAccepted) && d.BrandID != ""
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	sealer *Sealer
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie Secure (set it when serving over TLS).
func NewStore(client *redis.Client, secure bool, sealer *Sealer) *Store {
	return &Store{
		client: client,
		sealer: sealer,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// SetToken seals token into data and records its expiry.
func (s *Store) SetToken(data *Data, token string, expiry time.Time) error {
	sealed, err := s.sealer.Seal([]byte(token))
	if err != nil {
		return fmt.Errorf("session seal token: %w", err)
	}
	data.SealedToken = sealed
	data.TokenExpiry = expiry
	return nil
}

// Token opens the backend token held in data.
func (s *Store) Token(data *Data) (string, error) {
	if data == nil || data.SealedToken == "" {
		return "", ErrNoToken
	}
	plain, err := s.sealer.Open(data.SealedToken)
	if err != nil {
		return "", fmt.Errorf("session open token: %w", err)
	}
	return string(plain), nil
}

// Create generates a new session, stores it in Valkey, and sets the
// session cookie on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()
	ttl := s.ttlFor(data)

	if err := s.save(ctx, id, data, ttl); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data from Valkey using the session ID from the
// request cookie. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Update replaces the session data in Valkey without changing the session
// ID or cookie. Resets the TTL.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return errors.New("session update: no cookie")
	}
	return s.save(ctx, cookie.Value, data, s.ttlFor(data))
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// ttlFor bounds the session lifetime by the backend token's expiry.
func (s *Store) ttlFor(data *Data) time.Duration {
	return boundTTL(s.ttl, data.TokenExpiry, time.Now())
}

func boundTTL(ttl time.Duration, expiry, now time.Time) time.Duration {
	if expiry.IsZero() {
		return ttl
	}
	left := expiry.Sub(now)
	if left < minTTL {
		return minTTL
	}
	if left < ttl {
		return left
	}
	return ttl
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
