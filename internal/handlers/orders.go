package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/tables"
)

// orderRow is one row of the orders table.
type orderRow struct {
	tables.RowView
	Status models.OrderStatus
}

// statusFilter is one entry of the status filter bar.
type statusFilter struct {
	Status models.OrderStatus
	Count  int
}

func orderColumns() []tables.Column[models.Order] {
	return []tables.Column[models.Order]{
		{
			Key: "id", Header: "Order",
			Cell: func(o models.Order) string { return shortID(o.ID) },
		},
		{
			Key: "customer", Header: "Customer",
			Cell: func(o models.Order) string { return buyerName(o) },
			Less: func(a, b models.Order) bool { return strings.ToLower(buyerName(a)) < strings.ToLower(buyerName(b)) },
		},
		{
			Key: "status", Header: "Status",
			Cell: func(o models.Order) string { return o.Status.Label() },
			Less: func(a, b models.Order) bool { return a.Status < b.Status },
		},
		{
			Key: "items", Header: "Items",
			Cell: func(o models.Order) string { return strconv.Itoa(o.ItemCount()) },
			Less: func(a, b models.Order) bool { return a.ItemCount() < b.ItemCount() },
		},
		{
			Key: "total", Header: "Total",
			Cell: func(o models.Order) string { return render.Money(o.TotalAmount) },
			Less: func(a, b models.Order) bool { return a.TotalAmount < b.TotalAmount },
		},
		{
			Key: "date", Header: "Date",
			Cell: func(o models.Order) string { return o.CreatedAt.Format("Jan 2, 2006") },
			Less: func(a, b models.Order) bool { return a.CreatedAt.Before(b.CreatedAt) },
		},
	}
}

// Orders lists the orders containing the seller's products, newest first
// unless another sort is requested. "status" narrows the list.
func (c *Console) Orders(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}
	orders, err := api.Orders(r.Context())
	if err != nil {
		c.loadFailed(w, r, "orders", err)
		return
	}

	q := r.URL.Query()
	status := models.OrderStatus(strings.ToUpper(q.Get("status")))
	if !status.Valid() {
		status = ""
	}

	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	shown := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		counts[o.Status]++
		if status == "" || o.Status == status {
			shown = append(shown, o)
		}
	}
	filters := make([]statusFilter, 0, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		filters = append(filters, statusFilter{Status: s, Count: counts[s]})
	}

	t := tables.New(orderColumns(), shown, func(o models.Order) string { return o.ID })
	if err := t.Sort("date", true); err != nil {
		c.renderer.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	t.ApplyQuery(q)

	statusOf := make(map[string]models.OrderStatus, len(shown))
	for _, o := range shown {
		statusOf[o.ID] = o.Status
	}
	views := t.View()
	rows := make([]orderRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, orderRow{RowView: v, Status: statusOf[v.ID]})
	}

	c.renderer.Page(w, r, "orders", &render.PageData{
		Title:   "Orders",
		Section: "orders",
		Data: map[string]any{
			"Headers": t.Headers(),
			"Rows":    rows,
			"Filters": filters,
			"Status":  status,
			"Total":   len(orders),
		},
	})
}

// Order shows one order with its lines.
func (c *Console) Order(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}
	orders, err := api.Orders(r.Context())
	if err != nil {
		c.loadFailed(w, r, "orders", err)
		return
	}

	id := chi.URLParam(r, "orderID")
	for _, o := range orders {
		if o.ID == id {
			c.renderer.Page(w, r, "order_detail", &render.PageData{
				Title:   "Order " + shortID(o.ID),
				Section: "orders",
				Data:    map[string]any{"Order": o},
			})
			return
		}
	}
	c.renderer.Error(w, r, http.StatusNotFound, "That order does not exist.")
}

func buyerName(o models.Order) string {
	if o.User.Name != "" {
		return o.User.Name
	}
	if o.User.Email != "" {
		return o.User.Email
	}
	return o.Email
}

// shortID trims an id to its first eight characters for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
