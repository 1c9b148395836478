package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/tables"
)

// subCategoryRow is one row of the sub-categories table.
type subCategoryRow struct {
	tables.RowView
	Image   string
	Actions []tables.Action
}

// subCategoryView is the state of the sub-categories page: the table plus
// whichever dialog is open over it.
type subCategoryView struct {
	Dialog  string
	Form    backend.SubCategoryInput
	Confirm *models.SubCategory
	Errors  catalog.FieldErrors
	Flashes []render.Flash
}

// SubCategories renders the sub-categories table and its dialogs.
func (c *Console) SubCategories(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	rd, err := c.refs.Load(r.Context(), sess.SellerID, api)
	if err != nil {
		c.loadFailed(w, r, "sub-categories", err)
		return
	}

	dialog, err := tables.ParseDialog(r.URL.Query(), tables.EntitySubCategory)
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := subCategoryView{Dialog: dialog.Kind.String(), Flashes: doneFlash(r)}
	err = tables.Dispatch(dialog, tables.Handlers{
		None:   func() error { return nil },
		Create: func() error { return nil },
		Update: func(ref tables.EntityRef) error {
			s, found := rd.SubCategory(ref.ID)
			if !found {
				return errRowNotFound
			}
			view.Form = backend.SubCategoryInput{ID: s.ID, Name: s.Name, ImageURL: s.ImageURL, CategoryID: s.CategoryID}
			return nil
		},
		Delete: func(ref tables.EntityRef) error {
			s, found := rd.SubCategory(ref.ID)
			if !found {
				return errRowNotFound
			}
			view.Confirm = &s
			return nil
		},
	})
	if errors.Is(err, errRowNotFound) {
		c.renderer.Error(w, r, http.StatusNotFound, "That sub-category no longer exists.")
		return
	}
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c.subCategoriesPage(w, r, rd, view)
}

// SaveSubCategory creates a sub-category, or updates the one named in the
// URL. The image is either a new upload or the current URL.
func (c *Console) SaveSubCategory(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	rd, err := c.refs.Load(r.Context(), sess.SellerID, api)
	if err != nil {
		c.loadFailed(w, r, "sub-categories", err)
		return
	}

	view := subCategoryView{Dialog: tables.DialogCreate.String()}
	id := chi.URLParam(r, "subCategoryID")
	if id != "" {
		view.Dialog = tables.DialogUpdate.String()
	}

	if err := parseMultipart(w, r, maxFileBytes+1<<20); err != nil {
		slog.Warn("sub-category form invalid", "error", err)
		view.Flashes = []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)}
		c.subCategoriesPage(w, r, rd, view)
		return
	}
	view.Form = backend.SubCategoryInput{
		ID:         id,
		Name:       strings.TrimSpace(r.FormValue("subCategoryName")),
		CategoryID: r.FormValue("categoryId"),
		ImageURL:   r.FormValue("imageUrl"),
	}

	if fh := formFile(r, "image"); fh != nil {
		f, err := readUpload(fh, maxFileBytes)
		if err != nil || !catalog.IsImageType(f.ContentType) {
			view.Errors = catalog.FieldErrors{"imageUrl": "Please choose an image under 10 MB."}
			c.subCategoriesPage(w, r, rd, view)
			return
		}
		imageURL, err := api.UploadCategoryImage(r.Context(), f)
		if err != nil {
			if c.unauthorized(w, r, err) {
				return
			}
			slog.Warn("sub-category image upload failed", "error", err)
			view.Flashes = []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)}
			c.subCategoriesPage(w, r, rd, view)
			return
		}
		view.Form.ImageURL = imageURL
	}

	if fe := validateSubCategory(view.Form); fe != nil {
		view.Errors = fe
		c.subCategoriesPage(w, r, rd, view)
		return
	}

	if id == "" {
		err = api.CreateSubCategory(r.Context(), view.Form)
	} else {
		err = api.UpdateSubCategory(r.Context(), view.Form)
	}
	if err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("save sub-category failed", "seller", sess.SellerID, "error", err)
		view.Flashes = []render.Flash{authFailure("Failed to save sub-category", err, "Please try again.")}
		c.subCategoriesPage(w, r, rd, view)
		return
	}

	c.refs.InvalidateAll(r.Context())
	slog.Info("sub-category saved", "seller", sess.SellerID, "id", id, "name", view.Form.Name)
	middleware.Redirect(w, r, "/sub-categories?done=subcategory-saved")
}

// DeleteSubCategory deletes a sub-category after confirmation.
func (c *Console) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "subCategoryID")

	if err := api.DeleteSubCategory(r.Context(), id); err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("delete sub-category failed", "seller", sess.SellerID, "id", id, "error", err)
		rd, lerr := c.refs.Load(r.Context(), sess.SellerID, api)
		if lerr != nil {
			c.loadFailed(w, r, "sub-categories", lerr)
			return
		}
		c.subCategoriesPage(w, r, rd, subCategoryView{
			Flashes: []render.Flash{authFailure("Failed to delete sub-category", err, "Please try again.")},
		})
		return
	}

	c.refs.InvalidateAll(r.Context())
	slog.Info("sub-category deleted", "seller", sess.SellerID, "id", id)
	middleware.Redirect(w, r, "/sub-categories?done=subcategory-deleted")
}

func (c *Console) subCategoriesPage(w http.ResponseWriter, r *http.Request, rd *catalog.RefData, view subCategoryView) {
	cols := []tables.Column[models.SubCategory]{
		{
			Key: "name", Header: "Name",
			Cell: func(s models.SubCategory) string { return s.Name },
			Less: func(a, b models.SubCategory) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
		},
		{
			Key: "category", Header: "Category",
			Cell: func(s models.SubCategory) string { return categoryName(rd, s.CategoryID) },
			Less: func(a, b models.SubCategory) bool {
				return categoryName(rd, a.CategoryID) < categoryName(rd, b.CategoryID)
			},
		},
	}
	t := tables.New(cols, rd.SubCategories, func(s models.SubCategory) string { return s.ID })
	t.ApplyQuery(r.URL.Query())

	images := make(map[string]string, len(rd.SubCategories))
	for _, s := range rd.SubCategories {
		images[s.ID] = s.ImageURL
	}
	views := t.View()
	rows := make([]subCategoryRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, subCategoryRow{
			RowView: v,
			Image:   images[v.ID],
			Actions: tables.RowActions(tables.EntitySubCategory, v.ID),
		})
	}

	c.renderer.Page(w, r, "sub_categories", &render.PageData{
		Title:   "Sub-categories",
		Section: "sub-categories",
		Errors:  view.Errors,
		Flashes: view.Flashes,
		Data: map[string]any{
			"Headers":    t.Headers(),
			"Rows":       rows,
			"Categories": rd.Categories,
			"Dialog":     view.Dialog,
			"Form":       view.Form,
			"Confirm":    view.Confirm,
		},
	})
}

func categoryName(rd *catalog.RefData, id string) string {
	if c, ok := rd.Category(id); ok {
		return c.Name
	}
	return ""
}
