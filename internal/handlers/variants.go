// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
	"sellerconsole/internal/tables"
)

// variantRow is one row of the variants table.
type variantRow struct {
	tables.RowView
	IsDefault bool
	Actions   []tables.Action
}

// variantAxis is one option axis on the variant form with its current
// choice.
type variantAxis struct {
	Option   models.VariantOption
	Selected string
}

func variantsPath(productID string) string {
	return "/products/" + url.PathEscape(productID) + "/variants"
}

func variantFormPath(productID, formID string) string {
	return variantsPath(productID) + "/forms/" + url.PathEscape(formID)
}

func variantColumns() []tables.Column[models.Variant] {
	return []tables.Column[models.Variant]{
		{
			Key: "name", Header: "Name",
			Cell: func(v models.Variant) string { return v.Name },
			Less: func(a, b models.Variant) bool { return a.Name < b.Name },
		},
		{
			Key: "options", Header: "Options",
			Cell: func(v models.Variant) string { return v.Label() },
		},
		{
			Key: "price", Header: "Price",
			Cell: func(v models.Variant) string { return render.Money(v.Price) },
			Less: func(a, b models.Variant) bool { return a.Price < b.Price },
		},
		{
			Key: "stock", Header: "Stock",
			Cell: func(v models.Variant) string { return strconv.Itoa(v.StockQuantity()) },
			Less: func(a, b models.Variant) bool { return a.StockQuantity() < b.StockQuantity() },
		},
	}
}

// Variants lists the variants of a product.
func (c *Console) Variants(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	q := r.URL.Query()
	dialog, err := tables.ParseDialog(q, tables.EntityVariant)
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var redirect string
	err = tables.Dispatch(dialog, tables.Handlers{
		None:   func() error { return nil },
		Create: func() error { redirect = variantsPath(productID) + "/new"; return nil },
		EditVariant: func(ref tables.EntityRef) error {
			redirect = variantsPath(productID) + "/" + url.PathEscape(ref.ID) + "/edit"
			return nil
		},
	})
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if redirect != "" {
		middleware.Redirect(w, r, redirect)
		return
	}

	var (
		product  *models.Product
		variants []models.Variant
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		product, err = api.Product(ctx, productID)
		return err
	})
	g.Go(func() (err error) {
		variants, err = api.Variants(ctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		c.loadFailed(w, r, "variants", err)
		return
	}
	if product == nil {
		c.renderer.Error(w, r, http.StatusNotFound, "That product no longer exists.")
		return
	}

	t := tables.New(variantColumns(), variants, func(v models.Variant) string { return v.ID })
	t.ApplyQuery(q)
	byID := make(map[string]models.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}
	views := t.View()
	rows := make([]variantRow, 0, len(views))
	for _, v := range views {
		ref := tables.EntityRef{Kind: tables.EntityVariant, ID: v.ID}
		rows = append(rows, variantRow{
			RowView:   v,
			IsDefault: byID[v.ID].IsDefault,
			Actions:   []tables.Action{{Label: "Edit", Dialog: tables.Dialog{Kind: tables.DialogEditVariant, Ref: ref}}},
		})
	}

	c.renderer.Page(w, r, "variants", &render.PageData{
		Title:   "Variants of " + product.Name,
		Section: "products",
		Flashes: doneFlash(r),
		Data: map[string]any{
			"Product": product,
			"Headers": t.Headers(),
			"Rows":    rows,
			"Path":    variantsPath(productID),
		},
	})
}

// NewVariant opens an empty variant form.
func (c *Console) NewVariant(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	productID := chi.URLParam(r, "productID")
	c.startVariantForm(w, r, sess, catalog.NewVariantForm(productID))
}

// EditVariant opens the form of an existing variant.
func (c *Console) EditVariant(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")
	variantID := chi.URLParam(r, "variantID")

	variants, err := api.Variants(r.Context(), productID)
	if err != nil {
		c.loadFailed(w, r, "variants", err)
		return
	}
	for _, v := range variants {
		if v.ID == variantID {
			f := catalog.VariantFormFrom(v)
			f.ProductID = productID
			c.startVariantForm(w, r, sess, f)
			return
		}
	}
	c.renderer.Error(w, r, http.StatusNotFound, "That variant no longer exists.")
}

func (c *Console) startVariantForm(w http.ResponseWriter, r *http.Request, sess *session.Data, f *catalog.VariantForm) {
	formID := uuid.NewString()
	if !c.saveVariantForm(w, r, sess, formID, f) {
		return
	}
	middleware.Redirect(w, r, variantFormPath(f.ProductID, formID))
}

// ShowVariantForm renders a staged variant form.
func (c *Console) ShowVariantForm(w http.ResponseWriter, r *http.Request) {
	api, _, f, ok := c.loadVariantForm(w, r)
	if !ok {
		return
	}
	c.variantFormPage(w, r, api, f, nil, nil)
}

// UpdateVariantFields stores the posted fields and option choices.
func (c *Console) UpdateVariantFields(w http.ResponseWriter, r *http.Request) {
	api, sess, f, ok := c.loadVariantForm(w, r)
	if !ok {
		return
	}
	options, ok := c.applyVariantFields(w, r, api, f)
	if !ok {
		return
	}
	if !c.saveVariantForm(w, r, sess, chi.URLParam(r, "formID"), f) {
		return
	}
	c.renderVariantForm(w, r, f, options, nil, nil)
}

// UploadVariantImages uploads images straight away and adds their URLs to
// the form. Files past the image limit are not sent.
func (c *Console) UploadVariantImages(w http.ResponseWriter, r *http.Request) {
	api, sess, f, ok := c.loadVariantForm(w, r)
	if !ok {
		return
	}
	formID := chi.URLParam(r, "formID")
	if err := parseMultipart(w, r, maxFormBytes); err != nil {
		slog.Warn("variant images: bad form", "error", err)
		c.variantFormPage(w, r, api, f, nil, []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)})
		return
	}

	var (
		files   []catalog.File
		flashes []render.Flash
	)
	for _, fh := range r.MultipartForm.File["images"] {
		file, err := readUpload(fh, maxFileBytes)
		if err != nil || !catalog.IsImageType(file.ContentType) {
			flashes = append(flashes, render.FlashFromNotice(catalog.ErrFilesSkipped))
			continue
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		c.variantFormPage(w, r, api, f, nil, append(flashes, render.FlashFromNotice(catalog.ErrNoImagesSelected)))
		return
	}
	free := catalog.MaxImages - len(f.Images)
	if len(files) > free {
		flashes = append(flashes, render.FlashFromNotice(catalog.ErrMaxImages))
		files = files[:max(free, 0)]
	}

	if len(files) > 0 {
		urls, err := c.uploader(api, sess.SellerID, formID).UploadImages(r.Context(), files)
		if err != nil {
			if c.unauthorized(w, r, err) {
				return
			}
			slog.Warn("variant image upload failed", "form", formID, "error", err)
			c.variantFormPage(w, r, api, f, nil, append(flashes, render.FlashFromNotice(catalog.ErrUploadFailed)))
			return
		}
		if err := f.AddImages(urls); err != nil {
			_, fl := feedback(err)
			flashes = append(flashes, fl...)
		}
	}

	if !c.saveVariantForm(w, r, sess, formID, f) {
		return
	}
	c.variantFormPage(w, r, api, f, nil, flashes)
}

// RemoveVariantImage drops an image from the form.
func (c *Console) RemoveVariantImage(w http.ResponseWriter, r *http.Request) {
	api, sess, f, ok := c.loadVariantForm(w, r)
	if !ok {
		return
	}
	f.RemoveImage(r.FormValue("url"))
	if !c.saveVariantForm(w, r, sess, chi.URLParam(r, "formID"), f) {
		return
	}
	c.variantFormPage(w, r, api, f, nil, nil)
}

// SaveVariant creates or updates the variant.
func (c *Console) SaveVariant(w http.ResponseWriter, r *http.Request) {
	api, sess, f, ok := c.loadVariantForm(w, r)
	if !ok {
		return
	}
	formID := chi.URLParam(r, "formID")
	options, ok := c.applyVariantFields(w, r, api, f)
	if !ok {
		return
	}

	if err := f.Submit(r.Context(), api); err != nil {
		if !c.saveVariantForm(w, r, sess, formID, f) {
			return
		}
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("variant save failed", "product", f.ProductID, "error", err)
		fe, flashes := feedback(err)
		c.renderVariantForm(w, r, f, options, fe, flashes)
		return
	}

	c.attach(r, f.Images)
	if err := c.staging.DeleteVariantForm(r.Context(), sess.SellerID, formID); err != nil {
		slog.Warn("delete variant form failed", "form", formID, "error", err)
	}
	slog.Info("variant saved", "seller", sess.SellerID, "product", f.ProductID, "variant", f.ID)
	middleware.Redirect(w, r, variantsPath(f.ProductID)+"?done=variant-saved")
}

// applyVariantFields copies the posted fields into the form. Each axis is
// posted as "option-<axisID>" holding the chosen value id, or "" for none.
func (c *Console) applyVariantFields(w http.ResponseWriter, r *http.Request, api *backend.Client, f *catalog.VariantForm) ([]models.VariantOption, bool) {
	options, err := api.Options(r.Context(), f.ProductID)
	if err != nil {
		c.loadFailed(w, r, "variant options", err)
		return nil, false
	}

	f.SetFields(catalog.VariantInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Stock:       r.FormValue("stockQuantity"),
		IsDefault:   r.FormValue("isDefault") == "on",
	})
	if err := r.ParseForm(); err != nil {
		slog.Warn("variant form parse failed", "error", err)
	}
	for _, axis := range options {
		field := "option-" + axis.ID
		if _, posted := r.Form[field]; !posted {
			continue
		}
		if err := f.SelectOptionValue(axis, r.Form.Get(field)); err != nil {
			slog.Debug("unknown option value ignored", "axis", axis.ID)
		}
	}
	return options, true
}

func (c *Console) loadVariantForm(w http.ResponseWriter, r *http.Request) (*backend.Client, *session.Data, *catalog.VariantForm, bool) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	productID := chi.URLParam(r, "productID")
	f, err := c.staging.LoadVariantForm(r.Context(), sess.SellerID, chi.URLParam(r, "formID"))
	if errors.Is(err, staging.ErrDraftNotFound) || (err == nil && f.ProductID != productID) {
		c.renderer.Error(w, r, http.StatusNotFound, "This form has expired. Please start again.")
		return nil, nil, nil, false
	}
	if err != nil {
		slog.Error("load variant form failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not load your changes.")
		return nil, nil, nil, false
	}
	return api, sess, f, true
}

func (c *Console) saveVariantForm(w http.ResponseWriter, r *http.Request, sess *session.Data, formID string, f *catalog.VariantForm) bool {
	if err := c.staging.SaveVariantForm(r.Context(), sess.SellerID, formID, f); err != nil {
		slog.Error("save variant form failed", "form", formID, "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not save your changes.")
		return false
	}
	return true
}

func (c *Console) variantFormPage(w http.ResponseWriter, r *http.Request, api *backend.Client, f *catalog.VariantForm, errs catalog.FieldErrors, flashes []render.Flash) {
	options, err := api.Options(r.Context(), f.ProductID)
	if err != nil {
		c.loadFailed(w, r, "variant options", err)
		return
	}
	c.renderVariantForm(w, r, f, options, errs, flashes)
}

func (c *Console) renderVariantForm(w http.ResponseWriter, r *http.Request, f *catalog.VariantForm, options []models.VariantOption, errs catalog.FieldErrors, flashes []render.Flash) {
	axes := make([]variantAxis, 0, len(options))
	for _, o := range options {
		axes = append(axes, variantAxis{Option: o, Selected: f.Selected(o)})
	}

	title := "Add variant"
	if f.IsUpdate() {
		title = "Edit variant"
	}
	c.renderer.Page(w, r, "variant_form", &render.PageData{
		Title:   title,
		Section: "products",
		Errors:  errs,
		Flashes: flashes,
		Data: map[string]any{
			"Form":      f,
			"Axes":      axes,
			"Path":      variantFormPath(f.ProductID, chi.URLParam(r, "formID")),
			"Back":      variantsPath(f.ProductID),
			"MaxImages": catalog.MaxImages,
		},
	})
}
