// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/models"
)

var (
	_ catalog.Uploader      = (*Client)(nil)
	_ catalog.ProductWriter = (*Client)(nil)
	_ catalog.VariantWriter = (*Client)(nil)
)

// Products lists the seller's products.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/product/get-seller-products", nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.Product](raw, "products")
}

// Product finds one of the seller's products by id. Returns nil, nil when
// the seller has no such product.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, nil
}

// CreateProduct persists a new product.
func (c *Client) CreateProduct(ctx context.Context, p catalog.ProductPayload) error {
	return c.do(ctx, http.MethodPost, "/product/create", p, nil)
}

// UpdateProduct overwrites an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id string, p catalog.ProductPayload) error {
	return c.do(ctx, http.MethodPatch, "/product/update/"+url.PathEscape(id), p, nil)
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/product/delete/"+url.PathEscape(id), nil, nil)
}

// UploadImages hosts product or variant images in one multipart request.
func (c *Client) UploadImages(ctx context.Context, files []catalog.File) ([]string, error) {
	return c.upload(ctx, "/product/upload/images", files)
}

// Options lists the option axes of a product.
func (c *Client) Options(ctx context.Context, productID string) ([]models.VariantOption, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/product/option/"+url.PathEscape(productID), nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.VariantOption](raw, "options")
}

// SaveOptions creates (POST) or replaces (PATCH) the option axes of a product.
func (c *Client) SaveOptions(ctx context.Context, productID string, options []catalog.NamedOption, replace bool) error {
	method := http.MethodPost
	if replace {
		method = http.MethodPatch
	}
	body := struct {
		ProductID string                `json:"productId"`
		Options   []catalog.NamedOption `json:"options"`
	}{productID, options}
	return c.do(ctx, method, "/product/add/variant-options", body, nil)
}

// Variants lists the variants of a product.
func (c *Client) Variants(ctx context.Context, productID string) ([]models.Variant, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/product/variants/"+url.PathEscape(productID), nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.Variant](raw, "variants")
}

// CreateVariant adds a variant to a product.
func (c *Client) CreateVariant(ctx context.Context, productID string, p catalog.VariantPayload) error {
	return c.do(ctx, http.MethodPost, "/product/create/variant/"+url.PathEscape(productID), p, nil)
}

// UpdateVariant overwrites a variant.
func (c *Client) UpdateVariant(ctx context.Context, variantID string, p catalog.VariantPayload) error {
	return c.do(ctx, http.MethodPatch, "/product/update/variant/"+url.PathEscape(variantID), p, nil)
}
