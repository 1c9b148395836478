// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the seller console.
// Handlers are grouped by concern (auth and onboarding, the console
// proper) and receive their dependencies through the handler struct.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/cache"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
	"sellerconsole/internal/storage"
	"sellerconsole/internal/store"
)

// Request size caps for multipart forms.
const (
	maxFileBytes  = 10 << 20
	maxVideoBytes = 100 << 20
	maxFormBytes  = catalog.MaxImages*maxFileBytes + 1<<20
)

// Console groups the handlers of the signed-in console and their
// dependencies.
type Console struct {
	renderer *render.Renderer
	sessions *session.Store
	backend  *backend.Client
	staging  *staging.Store
	refs     *cache.RefCache
	uploads  *store.UploadStore
	objects  *storage.Client
}

// NewConsole creates the console handler group. uploads may be nil when no
// database is configured; objects is nil unless images go straight to S3.
func NewConsole(renderer *render.Renderer, sessions *session.Store, api *backend.Client, stage *staging.Store, refs *cache.RefCache, uploads *store.UploadStore, objects *storage.Client) *Console {
	return &Console{
		renderer: renderer,
		sessions: sessions,
		backend:  api,
		staging:  stage,
		refs:     refs,
		uploads:  uploads,
		objects:  objects,
	}
}

// client returns a backend client acting as the signed-in seller. When the
// session holds no usable token the seller is signed out and ok is false.
func (c *Console) client(w http.ResponseWriter, r *http.Request) (*backend.Client, *session.Data, bool) {
	sess := middleware.SessionFromCtx(r.Context())
	token, err := c.sessions.Token(sess)
	if err != nil {
		slog.Warn("session token unusable", "error", err)
		signOut(c.sessions, w, r)
		return nil, nil, false
	}
	return c.backend.WithToken(token), sess, true
}

// unauthorized signs the seller out when err is a rejected credential and
// reports whether it did.
func (c *Console) unauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	slog.Info("backend rejected session token", "path", r.URL.Path)
	signOut(c.sessions, w, r)
	return true
}

// loadFailed answers a failed read of backend data.
func (c *Console) loadFailed(w http.ResponseWriter, r *http.Request, what string, err error) {
	if c.unauthorized(w, r, err) {
		return
	}
	slog.Error("backend load failed", "what", what, "error", err)
	c.renderer.Error(w, r, http.StatusBadGateway, "Could not load "+what+". Please try again.")
}

// uploader returns where product and variant images go: the console's own
// bucket when configured, otherwise the backend. Uploads are recorded in
// the ledger when there is one.
func (c *Console) uploader(api *backend.Client, sellerID, draftID string) catalog.Uploader {
	var up catalog.Uploader = api
	if c.objects != nil {
		up = c.objects
	}
	if c.uploads != nil {
		return c.uploads.Track(up, sellerID, draftID)
	}
	return up
}

// attach marks uploaded URLs as referenced by a saved entity.
func (c *Console) attach(r *http.Request, urls []string) {
	if c.uploads == nil || len(urls) == 0 {
		return
	}
	if _, err := c.uploads.Attach(r.Context(), urls); err != nil {
		slog.Warn("upload ledger attach failed", "error", err)
	}
}

func signOut(sessions *session.Store, w http.ResponseWriter, r *http.Request) {
	if err := sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	middleware.Redirect(w, r, middleware.SignInPath)
}

// feedback splits an operation error into inline field errors and flashes.
func feedback(err error) (catalog.FieldErrors, []render.Flash) {
	var fe catalog.FieldErrors
	if errors.As(err, &fe) {
		return fe, nil
	}
	var n *catalog.Notice
	if errors.As(err, &n) {
		return nil, []render.Flash{render.FlashFromNotice(n)}
	}
	return nil, []render.Flash{{Type: "error", Title: "Something went wrong", Message: "Please try again."}}
}

func noticeFlashes(notices []*catalog.Notice) []render.Flash {
	out := make([]render.Flash, 0, len(notices))
	for _, n := range notices {
		out = append(out, render.FlashFromNotice(n))
	}
	return out
}

// doneFlashes maps the "done" query parameter set by post/redirect/get
// flows to a confirmation.
var doneFlashes = map[string]render.Flash{
	"product-created":     render.Success("Product created", "Your product has been created."),
	"product-updated":     render.Success("Product updated", "Your changes have been saved."),
	"product-deleted":     render.Success("Product deleted", "The product has been removed."),
	"options-saved":       render.Success("Variant options saved", "The option axes have been saved."),
	"variant-saved":       render.Success("Variant saved", "The variant has been saved."),
	"subcategory-saved":   render.Success("Sub-category saved", "The sub-category has been saved."),
	"subcategory-deleted": render.Success("Sub-category deleted", "The sub-category has been removed."),
	"video-saved":         render.Success("Video saved", "The video has been saved."),
	"two-factor-enabled":  render.Success("Two-factor enabled", "Your account now asks for a code at sign-in."),
	"profile-updated":     render.Success("Profile updated successfully", "Your profile has been updated successfully"),
	"draft-discarded":     render.Success("Draft discarded", "Your unsaved changes were removed."),
}

func doneFlash(r *http.Request) []render.Flash {
	if f, ok := doneFlashes[r.URL.Query().Get("done")]; ok {
		return []render.Flash{f}
	}
	return nil
}
