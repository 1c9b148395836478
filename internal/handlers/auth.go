// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
)

// Auth groups sign-in, sign-up, verification, two-factor and onboarding
// handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	backend  *backend.Client
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, api *backend.Client) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		backend:  api,
	}
}

// SignInPage renders the sign-in form.
func (a *Auth) SignInPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess.Authenticated() {
		http.Redirect(w, r, nextStep(sess), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "sign_in", &render.PageData{
		Title: "Sign In",
	})
}

// SignIn exchanges credentials for a backend token and starts a session.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	page := &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Email": email},
	}
	if fe := validateSignIn(email, password); fe != nil {
		page.Errors = fe
		a.renderer.Page(w, r, "sign_in", page)
		return
	}

	res, err := a.backend.Login(r.Context(), email, password)
	if err != nil {
		slog.Info("sign in rejected", "email", email, "error", err)
		page.Flashes = []render.Flash{authFailure("Sign in failed", err, "Invalid email or password.")}
		a.renderer.Page(w, r, "sign_in", page)
		return
	}

	a.startSession(w, r, res)
}

// SignUpPage renders the registration form.
func (a *Auth) SignUpPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "sign_up", &render.PageData{
		Title: "Create an account",
	})
}

// SignUp registers a seller and sends them to the activation code prompt.
func (a *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	in := backend.RegisterInput{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		PhoneNumber:     strings.TrimSpace(r.FormValue("phoneNumber")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	page := &render.PageData{
		Title: "Create an account",
		Data: map[string]any{
			"Name":        in.Name,
			"Email":       in.Email,
			"PhoneNumber": in.PhoneNumber,
		},
	}
	if fe := validateSignUp(in); fe != nil {
		page.Errors = fe
		a.renderer.Page(w, r, "sign_up", page)
		return
	}

	activation, err := a.backend.Register(r.Context(), in)
	if err != nil {
		slog.Info("sign up rejected", "email", in.Email, "error", err)
		page.Flashes = []render.Flash{authFailure("Sign up failed", err, "Could not create your account.")}
		a.renderer.Page(w, r, "sign_up", page)
		return
	}

	err = a.replaceSession(w, r, &session.Data{
		ActivationToken: activation,
		PendingEmail:    in.Email,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	middleware.Redirect(w, r, "/verify")
}

// VerifyPage renders the activation code prompt.
func (a *Auth) VerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.ActivationToken == "" {
		http.Redirect(w, r, "/sign-up", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "verify", &render.PageData{
		Title: "Verify your email",
		Data:  map[string]any{"Email": sess.PendingEmail},
	})
}

// Verify submits the activation code and signs the new seller in.
func (a *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.ActivationToken == "" {
		middleware.Redirect(w, r, "/sign-up")
		return
	}

	code := strings.TrimSpace(r.FormValue("activationCode"))
	page := &render.PageData{
		Title: "Verify your email",
		Data:  map[string]any{"Email": sess.PendingEmail},
	}
	if code == "" {
		page.Errors = map[string]string{"activationCode": "Please enter your activation code."}
		a.renderer.Page(w, r, "verify", page)
		return
	}

	res, err := a.backend.Verify(r.Context(), code, sess.ActivationToken)
	if err != nil {
		slog.Info("activation rejected", "email", sess.PendingEmail, "error", err)
		page.Flashes = []render.Flash{{Type: "error", Title: "Verification failed", Message: "Wrong activation code"}}
		a.renderer.Page(w, r, "verify", page)
		return
	}

	a.startSession(w, r, res)
}

// GoogleStart sends the browser to the backend's Google sign-in, which
// returns to GoogleCallback with an access token.
func (a *Auth) GoogleStart(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.backend.GoogleURL(externalURL(r, "/auth/callback")), http.StatusFound)
}

// GoogleCallback completes a Google sign-in.
func (a *Auth) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("accessToken")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		a.renderer.PageStatus(w, r, http.StatusBadRequest, "sign_in", &render.PageData{
			Title:   "Sign In",
			Flashes: []render.Flash{{Type: "error", Title: "Google sign in failed", Message: "No access token was returned."}},
		})
		return
	}

	seller, err := a.backend.WithToken(token).Profile(r.Context())
	if err != nil {
		slog.Warn("google profile fetch failed", "error", err)
		a.renderer.PageStatus(w, r, http.StatusBadGateway, "sign_in", &render.PageData{
			Title:   "Sign In",
			Flashes: []render.Flash{authFailure("Google sign in failed", err, "Please try again.")},
		})
		return
	}

	a.startSession(w, r, &backend.AuthResult{AccessToken: token, Seller: *seller})
}

// SignOut destroys the session.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	signOut(a.sessions, w, r)
}

// TwoFAPage renders the code prompt for sellers with two-factor enabled.
func (a *Auth) TwoFAPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.TwoFADone || !sess.TwoFAEnabled {
		http.Redirect(w, r, middleware.OnboardingStep(sess), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "two_factor", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerify checks the code with the backend and unlocks the console.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	code := strings.TrimSpace(r.FormValue("code"))

	page := &render.PageData{Title: "Two-Factor Authentication"}
	if !validCode(code) {
		page.Errors = map[string]string{"code": "Enter the 6-digit code from your authenticator app."}
		a.renderer.Page(w, r, "two_factor", page)
		return
	}

	token, err := a.sessions.Token(sess)
	if err != nil {
		signOut(a.sessions, w, r)
		return
	}
	if err := a.backend.WithToken(token).TwoFAVerify(r.Context(), code); err != nil {
		slog.Info("2fa code rejected", "seller", sess.SellerID, "error", err)
		page.Flashes = []render.Flash{authFailure("Verification failed", err, "Invalid code. Please try again.")}
		a.renderer.Page(w, r, "two_factor", page)
		return
	}

	sess.TwoFADone = true
	if err := a.replaceSession(w, r, sess); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	middleware.Redirect(w, r, middleware.OnboardingStep(sess))
}

// startSession builds the session of a freshly authenticated seller: their
// profile and brand are fetched concurrently and cached in the session.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, res *backend.AuthResult) {
	data, err := a.sellerSession(r.Context(), res)
	if err != nil {
		slog.Error("sign in profile fetch failed", "error", err)
		a.renderer.PageStatus(w, r, http.StatusBadGateway, "sign_in", &render.PageData{
			Title:   "Sign In",
			Flashes: []render.Flash{{Type: "error", Title: "Sign in failed", Message: "Could not load your seller profile. Please try again."}},
		})
		return
	}

	if err := a.replaceSession(w, r, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("seller signed in", "seller", data.SellerID)
	middleware.Redirect(w, r, nextStep(data))
}

func (a *Auth) sellerSession(ctx context.Context, res *backend.AuthResult) (*session.Data, error) {
	api := a.backend.WithToken(res.AccessToken)

	var (
		details *models.Seller
		brand   *models.Brand
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = api.ProfileDetails(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		brand, err = api.MyBrand(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seller := res.Seller
	if details != nil {
		seller = *details
	}
	data := &session.Data{
		SellerID:        seller.ID,
		Email:           seller.Email,
		Name:            seller.Name,
		ProfilePic:      seller.ProfilePic,
		Username:        seller.Username,
		ProfileComplete: seller.IsCompleted,
		TwoFAEnabled:    seller.TwoFactorEnabled,
		CreatedAt:       time.Now(),
	}
	if data.SellerID == "" {
		return nil, errors.New("backend returned a seller without id")
	}
	if brand != nil {
		data.BrandID = brand.ID
		data.BrandName = brand.Name
	}

	expiry, _ := backend.TokenExpiry(res.AccessToken)
	if err := a.sessions.SetToken(data, res.AccessToken, expiry); err != nil {
		return nil, err
	}
	return data, nil
}

// replaceSession drops the current session, if any, and creates a new one
// so a session id never survives a privilege change.
func (a *Auth) replaceSession(w http.ResponseWriter, r *http.Request, data *session.Data) error {
	if _, err := r.Cookie(session.CookieName); err == nil {
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("old session destroy failed", "error", err)
		}
	}
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		return err
	}
	return nil
}

// nextStep is where a signed-in seller lands.
func nextStep(sess *session.Data) string {
	if sess.TwoFAEnabled && !sess.TwoFADone {
		return middleware.TwoFAPath
	}
	return middleware.OnboardingStep(sess)
}

// authFailure builds an error flash from a backend error, preferring the
// backend's own message.
func authFailure(title string, err error, fallback string) render.Flash {
	msg := fallback
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < http.StatusInternalServerError {
		msg = apiErr.Message
	}
	return render.Flash{Type: "error", Title: title, Message: msg}
}

func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// externalURL builds an absolute URL for path on the host the browser used.
func externalURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, path)
}
