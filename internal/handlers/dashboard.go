package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
)

// recentOrders is how many orders the dashboard lists.
const recentOrders = 5

// Dashboard renders analytics cards, the monthly chart and the latest
// orders. The three backend reads run concurrently; a failed read blanks
// its panel instead of failing the page.
func (c *Console) Dashboard(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}

	var (
		analytics *models.Analytics
		orders    []models.Order
		products  []models.Product
	)
	errs := make([]error, 3)

	var g errgroup.Group
	g.Go(func() error {
		analytics, errs[0] = api.Analytics(r.Context())
		return nil
	})
	g.Go(func() error {
		orders, errs[1] = api.Orders(r.Context())
		return nil
	})
	g.Go(func() error {
		products, errs[2] = api.Products(r.Context())
		return nil
	})
	g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("dashboard panel failed", "panel", i, "error", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	latest := orders
	if len(latest) > recentOrders {
		latest = latest[:recentOrders]
	}

	data := map[string]any{
		"Analytics":    analytics,
		"Orders":       latest,
		"OrderCount":   len(orders),
		"ProductCount": len(products),
		"Partial":      errs[0] != nil || errs[1] != nil || errs[2] != nil,
	}
	if analytics != nil {
		data["Peak"] = analytics.PeakMonthly()
	}

	c.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    data,
		Flashes: doneFlash(r),
	})
}
