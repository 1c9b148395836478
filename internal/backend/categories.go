package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/models"
)

// SubCategoryInput is the sub-category create/update form.
type SubCategoryInput struct {
	ID         string `json:"subCategoryId,omitempty"`
	Name       string `json:"subCategoryName"`
	ImageURL   string `json:"imageUrl"`
	CategoryID string `json:"categoryId"`
}

// Categories lists the marketplace categories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/category/get", nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.Category](raw, "categories")
}

// SubCategories lists every sub-category.
func (c *Client) SubCategories(ctx context.Context) ([]models.SubCategory, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/category/get/sub-categories", nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.SubCategory](raw, "subCategories")
}

// CreateSubCategory adds a sub-category under in.CategoryID.
func (c *Client) CreateSubCategory(ctx context.Context, in SubCategoryInput) error {
	in.ID = ""
	return c.do(ctx, http.MethodPost, "/category/create/sub-category", in, nil)
}

// UpdateSubCategory renames or re-images a sub-category.
func (c *Client) UpdateSubCategory(ctx context.Context, in SubCategoryInput) error {
	return c.do(ctx, http.MethodPatch, "/category/update/sub-category", in, nil)
}

// DeleteSubCategory removes a sub-category.
func (c *Client) DeleteSubCategory(ctx context.Context, id string) error {
	body := map[string]string{"subCategoryId": id}
	return c.do(ctx, http.MethodDelete, "/category/delete/sub-category", body, nil)
}

// UploadCategoryImage hosts a single sub-category image.
func (c *Client) UploadCategoryImage(ctx context.Context, f catalog.File) (string, error) {
	urls, err := c.upload(ctx, "/category/upload/image", []catalog.File{f})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

var _ catalog.RefSource = (*Client)(nil)
