package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
)

var errNoAxes = &catalog.Notice{
	Title:       "No options",
	Description: "Add at least one option before saving.",
}

func optionsPath(productID string) string {
	return "/products/" + url.PathEscape(productID) + "/options"
}

// ShowOptions opens the variant options drawer of a product. Opening it
// restages the axes the product already has.
func (c *Console) ShowOptions(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	existing, err := api.Options(r.Context(), productID)
	if err != nil {
		c.loadFailed(w, r, "variant options", err)
		return
	}
	comp := &catalog.Composer{}
	comp.Load(existing)
	if !c.saveOptions(w, r, sess, productID, comp) {
		return
	}
	c.optionsPage(w, r, api, productID, comp, nil)
}

// AddOption stages an axis in the drawer.
func (c *Console) AddOption(w http.ResponseWriter, r *http.Request) {
	c.withOptions(w, r, func(comp *catalog.Composer) error {
		_, err := comp.Add(r.FormValue("name"), splitValues(r.FormValue("values")))
		return err
	})
}

// EditOption replaces a staged axis.
func (c *Console) EditOption(w http.ResponseWriter, r *http.Request) {
	c.withOptions(w, r, func(comp *catalog.Composer) error {
		return comp.Edit(chi.URLParam(r, "axisID"), r.FormValue("name"), splitValues(r.FormValue("values")))
	})
}

// RemoveOption drops a staged axis.
func (c *Console) RemoveOption(w http.ResponseWriter, r *http.Request) {
	c.withOptions(w, r, func(comp *catalog.Composer) error {
		comp.Remove(chi.URLParam(r, "axisID"))
		return nil
	})
}

// RemoveOptionValue drops one value of a staged axis.
func (c *Console) RemoveOptionValue(w http.ResponseWriter, r *http.Request) {
	c.withOptions(w, r, func(comp *catalog.Composer) error {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			return err
		}
		return comp.RemoveValue(chi.URLParam(r, "axisID"), index)
	})
}

// SaveOptions sends the staged axes in one request. A product that
// already had axes gets them replaced.
func (c *Console) SaveOptions(w http.ResponseWriter, r *http.Request) {
	api, sess, comp, ok := c.loadOptions(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	if comp.Len() == 0 {
		c.optionsPage(w, r, api, productID, comp, []render.Flash{render.FlashFromNotice(errNoAxes)})
		return
	}

	existing, err := api.Options(r.Context(), productID)
	if err == nil {
		err = api.SaveOptions(r.Context(), productID, comp.SerializeOptions(), len(existing) > 0)
	}
	if err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("save variant options failed", "product", productID, "error", err)
		c.optionsPage(w, r, api, productID, comp, []render.Flash{render.FlashFromNotice(catalog.ErrOptionsSaveFailed)})
		return
	}

	if err := c.staging.DeleteOptions(r.Context(), sess.SellerID, productID); err != nil {
		slog.Warn("delete staged options failed", "product", productID, "error", err)
	}
	slog.Info("variant options saved", "seller", sess.SellerID, "product", productID, "axes", comp.Len())
	middleware.Redirect(w, r, "/products?done=options-saved")
}

// CancelOptions closes the drawer without saving.
func (c *Console) CancelOptions(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if err := c.staging.DeleteOptions(r.Context(), sess.SellerID, chi.URLParam(r, "productID")); err != nil {
		slog.Warn("delete staged options failed", "error", err)
	}
	middleware.Redirect(w, r, "/products")
}

// withOptions applies a mutation to the staged composer and re-renders the
// drawer.
func (c *Console) withOptions(w http.ResponseWriter, r *http.Request, mutate func(*catalog.Composer) error) {
	api, sess, comp, ok := c.loadOptions(w, r)
	if !ok {
		return
	}
	productID := chi.URLParam(r, "productID")

	if err := mutate(comp); err != nil {
		_, flashes := feedback(err)
		c.optionsPage(w, r, api, productID, comp, flashes)
		return
	}
	if !c.saveOptions(w, r, sess, productID, comp) {
		return
	}
	c.optionsPage(w, r, api, productID, comp, nil)
}

func (c *Console) loadOptions(w http.ResponseWriter, r *http.Request) (*backend.Client, *session.Data, *catalog.Composer, bool) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return nil, nil, nil, false
	}
	productID := chi.URLParam(r, "productID")
	comp, err := c.staging.LoadOptions(r.Context(), sess.SellerID, productID)
	if errors.Is(err, staging.ErrDraftNotFound) {
		middleware.Redirect(w, r, optionsPath(productID))
		return nil, nil, nil, false
	}
	if err != nil {
		slog.Error("load staged options failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not load your changes.")
		return nil, nil, nil, false
	}
	return api, sess, comp, true
}

func (c *Console) saveOptions(w http.ResponseWriter, r *http.Request, sess *session.Data, productID string, comp *catalog.Composer) bool {
	if err := c.staging.SaveOptions(r.Context(), sess.SellerID, productID, comp); err != nil {
		slog.Error("save staged options failed", "product", productID, "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError, "Could not save your changes.")
		return false
	}
	return true
}

func (c *Console) optionsPage(w http.ResponseWriter, r *http.Request, api *backend.Client, productID string, comp *catalog.Composer, flashes []render.Flash) {
	p, err := api.Product(r.Context(), productID)
	if err != nil {
		c.loadFailed(w, r, "the product", err)
		return
	}
	if p == nil {
		c.renderer.Error(w, r, http.StatusNotFound, "That product no longer exists.")
		return
	}

	data := map[string]any{
		"Product":  p,
		"Composer": comp,
		"Path":     optionsPath(productID),
	}
	if axis, found := comp.Find(r.URL.Query().Get("axis")); found {
		data["EditingAxis"] = axis
	}

	c.renderer.Page(w, r, "product_options", &render.PageData{
		Title:   "Variant options",
		Section: "products",
		Data:    data,
		Flashes: flashes,
	})
}
