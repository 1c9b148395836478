// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the marketplace entities exchanged with the BuyBox
// backend. Field names follow the backend's JSON so values decode directly.
package models

import "time"

// MaxProductImages is the most images a product (or variant) may carry.
const MaxProductImages = 5

// Category is a top-level product grouping.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"imageUrl"`
	CategoryID string    `json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
}

// Product is a seller's catalog entry.
type Product struct {
	ID             string       `json:"id"`
	BrandID        string       `json:"brandId"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Images         []string     `json:"images"`
	CategoryID     *string      `json:"categoryId"`
	SubCategoryID  *string      `json:"subCategoryId"`
	BasePrice      float64      `json:"basePrice"`
	Price          float64      `json:"price"`
	Inventory      []Stock      `json:"inventory"`
	Category       *Category    `json:"category"`
	SubCategory    *SubCategory `json:"subCategory"`
	DefaultVariant *Variant     `json:"defaultVariant"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// CategoryName returns the embedded category name, or "" when unset.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// SubCategoryName returns the embedded sub-category name, or "" when unset.
func (p Product) SubCategoryName() string {
	if p.SubCategory == nil {
		return ""
	}
	return p.SubCategory.Name
}

// StockQuantity sums the inventory rows.
func (p Product) StockQuantity() int {
	total := 0
	for _, s := range p.Inventory {
		total += s.Quantity
	}
	return total
}

// Thumbnail returns the first product image, or "".
func (p Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Stock is one inventory row of a product or variant.
type Stock struct {
	Quantity    int        `json:"quantity"`
	RestockDate *time.Time `json:"restockDate,omitempty"`
}

// VariantOption is an option axis of a product, e.g. "Size".
type VariantOption struct {
	ID        string        `json:"id"`
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	Values    []OptionValue `json:"values"`
}

// HasValue reports whether valueID is one of the axis values.
func (o VariantOption) HasValue(valueID string) bool {
	for _, v := range o.Values {
		if v.ID == valueID {
			return true
		}
	}
	return false
}

// OptionValue is a single candidate value of an axis.
type OptionValue struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
}

// Variant is a concrete, sellable SKU of a product.
type Variant struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       float64         `json:"price"`
	IsDefault   bool            `json:"isDefault"`
	Images      []string        `json:"images"`
	Inventory   []Stock         `json:"inventory"`
	Options     []VariantChoice `json:"options"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StockQuantity sums the variant's inventory rows.
func (v Variant) StockQuantity() int {
	total := 0
	for _, s := range v.Inventory {
		total += s.Quantity
	}
	return total
}

// OptionValueIDs lists the option value ids the variant is tagged with.
func (v Variant) OptionValueIDs() []string {
	ids := make([]string, 0, len(v.Options))
	for _, c := range v.Options {
		if c.OptionValue.ID != "" {
			ids = append(ids, c.OptionValue.ID)
		}
	}
	return ids
}

// Label renders the chosen values as "Size: M, Color: Red".
func (v Variant) Label() string {
	label := ""
	for i, c := range v.Options {
		if i > 0 {
			label += ", "
		}
		if c.OptionValue.Option.Name != "" {
			label += c.OptionValue.Option.Name + ": "
		}
		label += c.OptionValue.Value
	}
	return label
}

// VariantChoice links a variant to one option value.
type VariantChoice struct {
	OptionValue struct {
		ID     string `json:"id"`
		Value  string `json:"value"`
		Option struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"option"`
	} `json:"optionValue"`
}
