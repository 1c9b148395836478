package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/models"
)

// RefSource fetches the reference data that populates category selects.
type RefSource interface {
	Categories(ctx context.Context) ([]models.Category, error)
	SubCategories(ctx context.Context) ([]models.SubCategory, error)
}

// RefData is a read-only snapshot of categories and sub-categories, loaded
// once for the lifetime of a screen.
type RefData struct {
	Categories    []models.Category    `json:"categories"`
	SubCategories []models.SubCategory `json:"subCategories"`
}

// LoadRefData fetches categories and sub-categories concurrently.
func LoadRefData(ctx context.Context, src RefSource) (*RefData, error) {
	var rd RefData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cats, err := src.Categories(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		rd.Categories = cats
		return nil
	})
	g.Go(func() error {
		subs, err := src.SubCategories(ctx)
		if err != nil {
			return fmt.Errorf("load sub-categories: %w", err)
		}
		rd.SubCategories = subs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &rd, nil
}

// SubCategoriesOf returns the sub-categories of one category.
func (rd *RefData) SubCategoriesOf(categoryID string) []models.SubCategory {
	return FilterSubCategories(rd.SubCategories, categoryID)
}

// Category looks up a category by id.
func (rd *RefData) Category(id string) (models.Category, bool) {
	for _, c := range rd.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// SubCategory looks up a sub-category by id.
func (rd *RefData) SubCategory(id string) (models.SubCategory, bool) {
	for _, s := range rd.SubCategories {
		if s.ID == id {
			return s, true
		}
	}
	return models.SubCategory{}, false
}

// FilterSubCategories returns exactly the sub-categories whose category is
// categoryID, in their original order. No category yields none.
func FilterSubCategories(all []models.SubCategory, categoryID string) []models.SubCategory {
	out := []models.SubCategory{}
	if categoryID == "" {
		return out
	}
	for _, s := range all {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// FilterProducts keeps products whose name contains query, ignoring case.
// A blank query keeps everything.
func FilterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}
