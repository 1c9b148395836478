// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/imaging"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
)

func draftPath(d *catalog.ProductDraft) string {
	return "/products/drafts/" + url.PathEscape(d.ID)
}

// NewProduct starts a draft for a new product.
func (c *Console) NewProduct(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	d := catalog.NewDraft(uuid.NewString())
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	middleware.Redirect(w, r, draftPath(d))
}

// EditProduct starts a draft prefilled from an existing product.
func (c *Console) EditProduct(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	p, err := api.Product(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		c.loadFailed(w, r, "the product", err)
		return
	}
	if p == nil {
		c.renderer.Error(w, r, http.StatusNotFound, "That product no longer exists.")
		return
	}

	d := catalog.EditDraft(uuid.NewString(), *p)
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	middleware.Redirect(w, r, draftPath(d))
}

// ShowDraft renders the product form of a draft.
func (c *Console) ShowDraft(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// UpdateDraftFields stores the text and category fields of the form.
func (c *Console) UpdateDraftFields(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	if !c.applyFields(w, r, api, sess, d) {
		return
	}
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// StageFiles adds selected images to the draft. Each file gets a preview;
// files past the image limit or that are not images are dropped with a
// notice.
func (c *Console) StageFiles(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	if err := parseMultipart(w, r, maxFormBytes); err != nil {
		slog.Warn("stage files: bad form", "draft", d.ID, "error", err)
		c.draftPage(w, r, api, sess, d, nil, []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)})
		return
	}
	keepTypedFields(r, d)

	previews := c.staging.Previews(sess.SellerID)
	var (
		candidates []catalog.StagedFile
		flashes    []render.Flash
	)
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := readUpload(fh, maxFileBytes)
		if err != nil {
			slog.Warn("stage files: unreadable file", "name", fh.Filename, "error", err)
			flashes = append(flashes, render.Flash{
				Type:    "error",
				Title:   "File skipped",
				Message: fh.Filename + " could not be read or is larger than 10 MB.",
			})
			continue
		}
		if !catalog.IsImageType(f.ContentType) {
			candidates = append(candidates, catalog.StagedFile{Name: f.Name, ContentType: f.ContentType})
			continue
		}

		var thumb []byte
		if imaging.Previewable(f.ContentType) {
			thumb, err = imaging.Thumbnail(bytes.NewReader(f.Data), imaging.PreviewWidth)
			if err != nil {
				slog.Warn("stage files: no thumbnail", "name", f.Name, "error", err)
			}
		}
		staged, err := previews.Put(r.Context(), f, thumb)
		if err != nil {
			slog.Error("stage files: preview store failed", "error", err)
			flashes = append(flashes, render.FlashFromNotice(catalog.ErrUploadFailed))
			continue
		}
		candidates = append(candidates, staged)
	}

	kept, notices := d.AddFiles(candidates)
	revokeDropped(r, previews, candidates, kept)

	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, append(flashes, noticeFlashes(notices)...))
}

// revokeDropped releases previews that were stored but not staged.
func revokeDropped(r *http.Request, previews *staging.Previews, candidates, kept []catalog.StagedFile) {
	keep := make(map[string]bool, len(kept))
	for _, f := range kept {
		keep[f.ID] = true
	}
	var drop []string
	for _, f := range candidates {
		if f.ID != "" && !keep[f.ID] {
			drop = append(drop, f.ID)
		}
	}
	if err := previews.Revoke(r.Context(), drop...); err != nil {
		slog.Warn("revoke dropped previews failed", "error", err)
	}
}

// DraftPreview serves the thumbnail of a staged image.
func (c *Console) DraftPreview(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	thumb, err := c.staging.Previews(sess.SellerID).Thumb(r.Context(), chi.URLParam(r, "fileID"))
	if errors.Is(err, staging.ErrPreviewNotFound) || (err == nil && len(thumb) == 0) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("preview read failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(thumb)
}

// UnstageFile removes a staged image and its preview.
func (c *Console) UnstageFile(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	if f, removed := d.RemoveStaged(chi.URLParam(r, "fileID")); removed && f.ID != "" {
		if err := c.staging.Previews(sess.SellerID).Revoke(r.Context(), f.ID); err != nil {
			slog.Warn("revoke preview failed", "error", err)
		}
	}
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// RemoveDraftImage drops an already uploaded image from the draft.
func (c *Console) RemoveDraftImage(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	d.RemoveUploaded(r.FormValue("url"))
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// UploadDraftImages uploads every staged image in one request.
func (c *Console) UploadDraftImages(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)

	previews := c.staging.Previews(sess.SellerID)
	if err := d.UploadStaged(r.Context(), previews, c.uploader(api, sess.SellerID, d.ID)); err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("upload staged images failed", "draft", d.ID, "error", err)
		_, flashes := feedback(err)
		c.draftPage(w, r, api, sess, d, nil, flashes)
		return
	}

	if !c.saveDraft(w, r, sess, d) {
		return
	}
	slog.Info("draft images uploaded", "draft", d.ID, "count", len(d.Uploaded))
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// AddDraftAxis stages an option axis on a new product.
func (c *Console) AddDraftAxis(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	if _, err := d.AddAxis(r.FormValue("axisName"), splitValues(r.FormValue("axisValues"))); err != nil {
		_, flashes := feedback(err)
		c.draftPage(w, r, api, sess, d, nil, flashes)
		return
	}
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// EditDraftAxis replaces a staged axis.
func (c *Console) EditDraftAxis(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	err := d.EditAxis(chi.URLParam(r, "axisID"), r.FormValue("axisName"), splitValues(r.FormValue("axisValues")))
	if err != nil {
		_, flashes := feedback(err)
		c.draftPage(w, r, api, sess, d, nil, flashes)
		return
	}
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// RemoveDraftAxis drops a staged axis.
func (c *Console) RemoveDraftAxis(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	d.RemoveAxis(chi.URLParam(r, "axisID"))
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// RemoveDraftAxisValue drops one value of a staged axis.
func (c *Console) RemoveDraftAxisValue(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	keepTypedFields(r, d)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		err = d.Variants.RemoveValue(chi.URLParam(r, "axisID"), index)
	}
	if err != nil {
		_, flashes := feedback(err)
		c.draftPage(w, r, api, sess, d, nil, flashes)
		return
	}
	if !c.saveDraft(w, r, sess, d) {
		return
	}
	c.draftPage(w, r, api, sess, d, nil, nil)
}

// SubmitDraft creates or updates the product. On failure the draft keeps
// everything the seller entered.
func (c *Console) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	api, sess, d, ok := c.loadDraft(w, r)
	if !ok {
		return
	}
	if !c.applyFields(w, r, api, sess, d) {
		return
	}

	updating := d.IsUpdate()
	images := append([]string(nil), d.Uploaded...)
	err := d.Submit(r.Context(), api, c.staging.Previews(sess.SellerID))
	if err != nil {
		if !c.saveDraft(w, r, sess, d) {
			return
		}
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("product submit failed", "seller", sess.SellerID, "draft", d.ID, "error", err)
		fe, flashes := feedback(err)
		c.draftPage(w, r, api, sess, d, fe, flashes)
		return
	}

	c.attach(r, images)
	if err := c.staging.DeleteDraft(r.Context(), sess.SellerID, d.ID); err != nil {
		slog.Warn("delete draft failed", "draft", d.ID, "error", err)
	}

	done := "product-created"
	if updating {
		done = "product-updated"
	}
	slog.Info(done, "seller", sess.SellerID, "draft", d.ID)
	middleware.Redirect(w, r, "/products?done="+done)
}

// DiscardDraft throws a draft away along with its previews.
func (c *Console) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id := chi.URLParam(r, "draftID")

	d, err := c.staging.LoadDraft(r.Context(), sess.SellerID, id)
	if err == nil && len(d.Staged) > 0 {
		ids := make([]string, 0, len(d.Staged))
		for _, f := range d.Staged {
			ids = append(ids, f.ID)
		}
		if err := c.staging.Previews(sess.SellerID).Revoke(r.Context(), ids...); err != nil {
			slog.Warn("revoke previews failed", "draft", id, "error", err)
		}
	}
	if err := c.staging.DeleteDraft(r.Context(), sess.SellerID, id); err != nil {
		slog.Warn("delete draft failed", "draft", id, "error", err)
	}
	middleware.Redirect(w, r, "/products?done=draft-discarded")
}

// loadDraft resolves the draft named in the URL for the signed-in seller.
func (c *Console) loadDraft(w http.ResponseWriter, r *http.Request) (*backend.Client, *session.Data, *catalog.ProductDraft, bool) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	d, err := c.staging.LoadDraft(r.Context(), sess.SellerID, chi.URLParam(r, "draftID"))
	if errors.Is(err, staging.ErrDraftNotFound) {
		c.renderer.Error(w, r, http.StatusNotFound, "This draft has expired. Please start again.")
		return nil, nil, nil, false
	}
	if err != nil {
		slog.Error("load draft failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not load your draft.")
		return nil, nil, nil, false
	}
	return api, sess, d, true
}

func (c *Console) saveDraft(w http.ResponseWriter, r *http.Request, sess *session.Data, d *catalog.ProductDraft) bool {
	if err := c.staging.SaveDraft(r.Context(), sess.SellerID, d); err != nil {
		slog.Error("save draft failed", "draft", d.ID, "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not save your draft.")
		return false
	}
	return true
}

// applyFields copies the posted form fields into the draft. A category
// change clears a sub-category that does not belong to it.
func (c *Console) applyFields(w http.ResponseWriter, r *http.Request, api *backend.Client, sess *session.Data, d *catalog.ProductDraft) bool {
	rd, err := c.refs.Load(r.Context(), sess.SellerID, api)
	if err != nil {
		c.loadFailed(w, r, "categories", err)
		return false
	}

	d.SetFields(catalog.FieldInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Inventory:   r.FormValue("inventory"),
	})
	if cat := r.FormValue("categoryId"); cat != d.Fields.CategoryID {
		d.SelectCategory(cat, rd.SubCategories)
	}
	if err := d.SelectSubCategory(r.FormValue("subCategoryId"), rd.SubCategories); err != nil {
		slog.Debug("stale sub-category ignored", "draft", d.ID)
	}
	return true
}

// keepTypedFields copies the text fields sent along with an image or
// option form, so the re-rendered product form keeps what was typed.
func keepTypedFields(r *http.Request, d *catalog.ProductDraft) {
	if err := r.ParseForm(); err != nil {
		return
	}
	if _, ok := r.PostForm["name"]; !ok {
		return
	}
	d.SetFields(catalog.FieldInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Inventory:   r.PostFormValue("inventory"),
	})
}

func (c *Console) draftPage(w http.ResponseWriter, r *http.Request, api *backend.Client, sess *session.Data, d *catalog.ProductDraft, errs catalog.FieldErrors, flashes []render.Flash) {
	rd, err := c.refs.Load(r.Context(), sess.SellerID, api)
	if err != nil {
		c.loadFailed(w, r, "categories", err)
		return
	}

	title := "New product"
	if d.IsUpdate() {
		title = "Edit product"
	}
	data := map[string]any{
		"Draft":         d,
		"Path":          draftPath(d),
		"Categories":    rd.Categories,
		"SubCategories": rd.SubCategoriesOf(d.Fields.CategoryID),
		"MaxImages":     catalog.MaxImages,
	}
	if axis, found := d.Variants.Find(r.URL.Query().Get("axis")); found {
		data["EditingAxis"] = axis
	}

	c.renderer.Page(w, r, "product_form", &render.PageData{
		Title:   title,
		Section: "products",
		Data:    data,
		Errors:  errs,
		Flashes: flashes,
	})
}
