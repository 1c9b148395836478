// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sellerconsole/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// Console paths the gates redirect to.
const (
	SignInPath    = "/sign-in"
	TwoFAPath     = "/2fa/verify"
	AgreementPath = "/onboarding/agreement"
	BrandPath     = "/onboarding/brand"
)

// LoadSession retrieves the session from Valkey and stores it in the
// request context. It does not enforce authentication; a store failure is
// logged and the request continues as anonymous.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				setLogSeller(r.Context(), data.SellerID)
				ctx := context.WithValue(r.Context(), SessionKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous visitors, and sellers whose backend token has
// expired, to the sign-in page. Must be applied after LoadSession.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if !sess.Authenticated() || tokenExpired(sess, time.Now()) {
			Redirect(w, r, SignInPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Require2FA holds sellers with two-factor enabled at the code prompt until
// they pass it. Must be applied after RequireAuth.
func Require2FA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess != nil && sess.TwoFAEnabled && !sess.TwoFADone {
			Redirect(w, r, TwoFAPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireOnboarded sends sellers who have not accepted the agreement, or
// have no brand yet, to the matching onboarding step.
func RequireOnboarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromCtx(r.Context())
		if sess == nil {
			Redirect(w, r, SignInPath)
			return
		}
		if !sess.Onboarded() {
			Redirect(w, r, OnboardingStep(sess))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// OnboardingStep returns the onboarding page a seller still has to visit,
// or "/" when onboarding is complete.
func OnboardingStep(sess *session.Data) string {
	switch {
	case !sess.ProfileComplete && !sess.AgreementAccepted:
		return AgreementPath
	case sess.BrandID == "":
		return BrandPath
	}
	return "/"
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// Redirect navigates the browser to target. HTMX requests get an
// HX-Redirect header so the whole page changes, not just the swapped
// fragment.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// IsHTMX reports whether the request was made by HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func tokenExpired(sess *session.Data, now time.Time) bool {
	return !sess.TokenExpiry.IsZero() && !now.Before(sess.TokenExpiry)
}
