package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/models"
)

// VideoInput is the reel create/update form.
type VideoInput struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Caption   string `json:"caption"`
	VideoURL  string `json:"videoUrl"`
}

// Orders lists orders containing the seller's products.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/order/seller/get-orders", nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.Order](raw, "orders")
}

// Videos lists the seller's reels.
func (c *Client) Videos(ctx context.Context) ([]models.Video, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/reels/get-seller-reels", nil, &raw); err != nil {
		return nil, err
	}
	return listOf[models.Video](raw, "reels")
}

// CreateVideo attaches a new reel to a product.
func (c *Client) CreateVideo(ctx context.Context, in VideoInput) error {
	return c.do(ctx, http.MethodPost, "/reels/create", in, nil)
}

// UpdateVideo replaces the reel of a product.
func (c *Client) UpdateVideo(ctx context.Context, productID string, in VideoInput) error {
	return c.do(ctx, http.MethodPatch, "/reels/update/"+url.PathEscape(productID), in, nil)
}

// UploadVideo hosts a video file and returns its URL.
func (c *Client) UploadVideo(ctx context.Context, f catalog.File) (string, error) {
	urls, err := c.upload(ctx, "/reels/upload/images", []catalog.File{f})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}
