// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"strings"

	"sellerconsole/internal/models"
)

// ErrUnknownOptionValue is returned when a value id is not part of the axis.
var ErrUnknownOptionValue = errors.New("option value does not belong to the axis")

// VariantWriter persists variants.
type VariantWriter interface {
	CreateVariant(ctx context.Context, productID string, p VariantPayload) error
	UpdateVariant(ctx context.Context, variantID string, p VariantPayload) error
}

// VariantInput is the raw text of the variant form fields.
type VariantInput struct {
	Name        string
	Description string
	Price       string
	Stock       string
	IsDefault   bool
}

// VariantPayload is the body of the variant create and update requests.
type VariantPayload struct {
	Name           string   `json:"name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	StockQuantity  int      `json:"stockQuantity"`
	IsDefault      bool     `json:"isDefault"`
	Images         []string `json:"images"`
	OptionValueIDs []string `json:"optionValueIds"`
}

// VariantForm defines one sellable SKU of a product with at most one chosen
// value per option axis. Whether the product ends up with exactly one
// default variant is left to the backend.
type VariantForm struct {
	ID             string   `json:"id,omitempty"`
	ProductID      string   `json:"productId"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          Number   `json:"price"`
	Stock          Number   `json:"stock"`
	IsDefault      bool     `json:"isDefault"`
	Images         []string `json:"images"`
	OptionValueIDs []string `json:"optionValueIds"`
}

// NewVariantForm returns an empty form for a new variant of productID.
func NewVariantForm(productID string) *VariantForm {
	return &VariantForm{ProductID: productID}
}

// VariantFormFrom prefills the form from an existing variant.
func VariantFormFrom(v models.Variant) *VariantForm {
	return &VariantForm{
		ID:             v.ID,
		ProductID:      v.ProductID,
		Name:           v.Name,
		Description:    v.Description,
		Price:          NumberOf(v.Price),
		Stock:          NumberOf(float64(v.StockQuantity())),
		IsDefault:      v.IsDefault,
		Images:         append([]string(nil), v.Images...),
		OptionValueIDs: v.OptionValueIDs(),
	}
}

// IsUpdate reports whether the form edits an existing variant.
func (f *VariantForm) IsUpdate() bool { return f.ID != "" }

// SetFields stores the text fields and the default flag.
func (f *VariantForm) SetFields(in VariantInput) {
	f.Name = in.Name
	f.Description = in.Description
	f.Price = ParseNumber(in.Price)
	f.Stock = ParseNumber(in.Stock)
	f.IsDefault = in.IsDefault
}

// SelectOptionValue sets the chosen value of one axis. Any value of that
// axis chosen before is removed first, so an axis never contributes more
// than one id; an empty valueID ("None") only clears. Other axes keep their
// selection.
func (f *VariantForm) SelectOptionValue(axis models.VariantOption, valueID string) error {
	if valueID != "" && !axis.HasValue(valueID) {
		return ErrUnknownOptionValue
	}

	kept := make([]string, 0, len(f.OptionValueIDs)+1)
	for _, id := range f.OptionValueIDs {
		if !axis.HasValue(id) {
			kept = append(kept, id)
		}
	}
	if valueID != "" {
		kept = append(kept, valueID)
	}
	f.OptionValueIDs = kept
	return nil
}

// Selected returns the chosen value id for an axis, or "" for none.
func (f *VariantForm) Selected(axis models.VariantOption) string {
	for _, id := range f.OptionValueIDs {
		if axis.HasValue(id) {
			return id
		}
	}
	return ""
}

// AddImages appends uploaded image URLs, keeping at most MaxImages.
func (f *VariantForm) AddImages(urls []string) error {
	free := MaxImages - len(f.Images)
	if len(urls) > free {
		if free > 0 {
			f.Images = append(f.Images, urls[:free]...)
		}
		return ErrMaxImages
	}
	f.Images = append(f.Images, urls...)
	return nil
}

// RemoveImage drops an image URL.
func (f *VariantForm) RemoveImage(url string) {
	for i, u := range f.Images {
		if u == url {
			f.Images = append(f.Images[:i], f.Images[i+1:]...)
			return
		}
	}
}

// Validate checks price and stock.
func (f *VariantForm) Validate() error {
	fe := FieldErrors{}
	switch {
	case !f.Price.NonNegative():
		fe["price"] = "Price must be a positive number."
	case !f.Price.AtMost(MaxPrice):
		fe["price"] = "Price is too large."
	}
	switch {
	case !f.Stock.NonNegative() || !f.Stock.Whole():
		fe["stockQuantity"] = "Stock quantity must be a positive number."
	case !f.Stock.AtMost(MaxQuantity):
		fe["stockQuantity"] = "Stock quantity is too large."
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Payload builds the request body. Price and stock are sent as numbers.
func (f *VariantForm) Payload() VariantPayload {
	return VariantPayload{
		Name:           strings.TrimSpace(f.Name),
		Description:    strings.TrimSpace(f.Description),
		Price:          f.Price.Float(),
		StockQuantity:  f.Stock.Int(),
		IsDefault:      f.IsDefault,
		Images:         append([]string{}, f.Images...),
		OptionValueIDs: append([]string{}, f.OptionValueIDs...),
	}
}

// Submit validates and persists the variant.
func (f *VariantForm) Submit(ctx context.Context, w VariantWriter) error {
	if err := f.Validate(); err != nil {
		return err
	}

	var err error
	if f.IsUpdate() {
		err = w.UpdateVariant(ctx, f.ID, f.Payload())
	} else {
		err = w.CreateVariant(ctx, f.ProductID, f.Payload())
	}
	if err != nil {
		return ErrVariantSaveFailed.wrap(err)
	}
	return nil
}
