package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"sellerconsole/internal/models"
)

// BrandInput is the brand onboarding form.
type BrandInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ProfileInput is the editable part of the seller profile.
type ProfileInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// UpdateProfile saves the seller's username, email, name and picture.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) error {
	return c.do(ctx, http.MethodPatch, "/auth/seller/update-profile", in, nil)
}

// ProfileDetails returns the seller record including the onboarding flag.
func (c *Client) ProfileDetails(ctx context.Context) (*models.Seller, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/seller/profile/get-details", nil, &raw); err != nil {
		return nil, err
	}
	return oneOf[models.Seller](raw, "seller")
}

// MyBrand returns the seller's brand, or nil when none exists yet.
func (c *Client) MyBrand(ctx context.Context) (*models.Brand, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/brand/get-my-brand", nil, &raw); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	brand, err := oneOf[models.Brand](raw, "brand")
	if err != nil || brand == nil || brand.ID == "" {
		return nil, err
	}
	return brand, nil
}

// CreateBrand registers the seller's brand.
func (c *Client) CreateBrand(ctx context.Context, in BrandInput) (*models.Brand, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/brand/create", in, &raw); err != nil {
		return nil, err
	}
	return oneOf[models.Brand](raw, "newBrand")
}

// Analytics returns the dashboard summary.
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	var out models.Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics/seller", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
