package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/render"
)

// AgreementPage shows the seller agreement to sellers whose profile is not
// complete.
func (a *Auth) AgreementPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.ProfileComplete || sess.AgreementAccepted {
		http.Redirect(w, r, middleware.OnboardingStep(sess), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "agreement", &render.PageData{
		Title: "Seller Agreement",
		Data:  map[string]any{"Agreement": a.renderer.Agreement()},
	})
}

// AcceptAgreement records acceptance in the session and moves on to brand
// creation.
func (a *Auth) AcceptAgreement(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if r.FormValue("accept") != "on" {
		a.renderer.Page(w, r, "agreement", &render.PageData{
			Title:  "Seller Agreement",
			Data:   map[string]any{"Agreement": a.renderer.Agreement()},
			Errors: map[string]string{"accept": "Please read and accept the agreement to continue."},
		})
		return
	}

	sess.AgreementAccepted = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	middleware.Redirect(w, r, middleware.OnboardingStep(sess))
}

// BrandPage renders the brand creation form.
func (a *Auth) BrandPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.BrandID != "" {
		http.Redirect(w, r, middleware.OnboardingStep(sess), http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "brand", &render.PageData{
		Title: "Create your brand",
	})
}

// CreateBrand creates the seller's brand and opens the console.
func (a *Auth) CreateBrand(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	in := backend.BrandInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Location:    strings.TrimSpace(r.FormValue("location")),
	}

	page := &render.PageData{
		Title: "Create your brand",
		Data: map[string]any{
			"Name":        in.Name,
			"Description": in.Description,
			"Location":    in.Location,
		},
	}
	if fe := validateBrand(in); fe != nil {
		page.Errors = fe
		a.renderer.Page(w, r, "brand", page)
		return
	}

	token, err := a.sessions.Token(sess)
	if err != nil {
		signOut(a.sessions, w, r)
		return
	}
	api := a.backend.WithToken(token)
	brand, err := api.CreateBrand(r.Context(), in)
	if err == nil && (brand == nil || brand.ID == "") {
		brand, err = api.MyBrand(r.Context())
		if err == nil && brand == nil {
			err = errors.New("brand missing after create")
		}
	}
	if err != nil {
		if backend.IsUnauthorized(err) {
			signOut(a.sessions, w, r)
			return
		}
		slog.Error("create brand failed", "seller", sess.SellerID, "error", err)
		page.Flashes = []render.Flash{authFailure("Failed to create brand", err, "Please try again.")}
		a.renderer.Page(w, r, "brand", page)
		return
	}

	sess.BrandID = brand.ID
	sess.BrandName = brand.Name
	if sess.BrandName == "" {
		sess.BrandName = in.Name
	}
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("brand created", "seller", sess.SellerID, "brand", brand.ID)
	middleware.Redirect(w, r, "/")
}
