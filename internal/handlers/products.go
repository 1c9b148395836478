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
	"strings"

	"github.com/go-chi/chi/v5"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/tables"
)

var errRowNotFound = errors.New("row not found")

// productRow is one products table row with what the template needs
// beyond the text cells.
type productRow struct {
	tables.RowView
	Thumb   string
	Actions []tables.Action
}

func productColumns() []tables.Column[models.Product] {
	return []tables.Column[models.Product]{
		{
			Key: "name", Header: "Name",
			Cell: func(p models.Product) string { return p.Name },
			Less: func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
		},
		{
			Key: "category", Header: "Category",
			Cell: func(p models.Product) string { return p.CategoryName() },
			Less: func(a, b models.Product) bool { return a.CategoryName() < b.CategoryName() },
		},
		{
			Key: "subCategory", Header: "Sub-category",
			Cell: func(p models.Product) string { return p.SubCategoryName() },
			Less: func(a, b models.Product) bool { return a.SubCategoryName() < b.SubCategoryName() },
		},
		{
			Key: "price", Header: "Price",
			Cell: func(p models.Product) string { return render.Money(p.BasePrice) },
			Less: func(a, b models.Product) bool { return a.BasePrice < b.BasePrice },
		},
		{
			Key: "stock", Header: "Stock",
			Cell: func(p models.Product) string { return strconv.Itoa(p.StockQuantity()) },
			Less: func(a, b models.Product) bool { return a.StockQuantity() < b.StockQuantity() },
		},
		{
			Key: "images", Header: "Images",
			Cell: func(p models.Product) string { return strconv.Itoa(len(p.Images)) },
		},
	}
}

// Products renders the products table. A "dialog" query parameter opens a
// row action: destructive ones render a confirmation, the others lead to
// their own screen.
func (c *Console) Products(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}
	c.productsPage(w, r, api, doneFlash(r))
}

func (c *Console) productsPage(w http.ResponseWriter, r *http.Request, api *backend.Client, flashes []render.Flash) {
	products, err := api.Products(r.Context())
	if err != nil {
		c.loadFailed(w, r, "products", err)
		return
	}

	q := r.URL.Query()
	dialog, err := tables.ParseDialog(q, tables.EntityProduct)
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var (
		redirect string
		confirm  *models.Product
	)
	err = tables.Dispatch(dialog, tables.Handlers{
		None:   func() error { return nil },
		Create: func() error { redirect = "/products/new"; return nil },
		Update: func(ref tables.EntityRef) error {
			redirect = "/products/" + url.PathEscape(ref.ID) + "/edit"
			return nil
		},
		Delete: func(ref tables.EntityRef) error {
			p, found := findProduct(products, ref.ID)
			if !found {
				return errRowNotFound
			}
			confirm = &p
			return nil
		},
		VariantOption: func(ref tables.EntityRef) error {
			redirect = "/products/" + url.PathEscape(ref.ID) + "/options"
			return nil
		},
		VariantOptionEdit: func(ref tables.EntityRef) error {
			redirect = "/products/" + url.PathEscape(ref.ID) + "/options?edit=1"
			return nil
		},
		AddVariant: func(ref tables.EntityRef) error {
			redirect = "/products/" + url.PathEscape(ref.ID) + "/variants/new"
			return nil
		},
	})
	if errors.Is(err, errRowNotFound) {
		c.renderer.Error(w, r, http.StatusNotFound, "That product no longer exists.")
		return
	}
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if redirect != "" {
		middleware.Redirect(w, r, redirect)
		return
	}

	query := q.Get("q")
	t := tables.New(productColumns(), catalog.FilterProducts(products, query), func(p models.Product) string { return p.ID })
	t.ApplyQuery(q)
	applySelection(t, q)

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	views := t.View()
	rows := make([]productRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, productRow{
			RowView: v,
			Thumb:   byID[v.ID].Thumbnail(),
			Actions: tables.ProductActions(v.ID),
		})
	}

	c.renderer.Page(w, r, "products", &render.PageData{
		Title:   "Products",
		Section: "products",
		Flashes: flashes,
		Data: map[string]any{
			"Headers":     t.Headers(),
			"Rows":        rows,
			"Query":       query,
			"Total":       len(products),
			"Selected":    len(t.Selected()),
			"AllSelected": t.AllSelected(),
			"Confirm":     confirm,
		},
	})
}

// DeleteProduct deletes a product after the confirmation dialog.
func (c *Console) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "productID")

	if err := api.DeleteProduct(r.Context(), id); err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Error("delete product failed", "seller", sess.SellerID, "product", id, "error", err)
		c.productsPage(w, r, api, []render.Flash{{
			Type:    "error",
			Title:   "Failed to delete product",
			Message: "Please try again.",
		}})
		return
	}

	slog.Info("product deleted", "seller", sess.SellerID, "product", id)
	middleware.Redirect(w, r, "/products?done=product-deleted")
}

// applySelection restores row selection from "selected" and "all" query
// parameters.
func applySelection[T any](t *tables.Table[T], q url.Values) {
	if q.Get("all") == "1" {
		t.SelectAll()
		return
	}
	for _, id := range q["selected"] {
		t.Toggle(id)
	}
}

func findProduct(products []models.Product, id string) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
