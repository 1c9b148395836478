package render

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sellerconsole/internal/markdown"
	"sellerconsole/internal/models"
)

func funcMap(devMode bool) template.FuncMap {
	return template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "nav-link active"
			}
			return "nav-link"
		},
		"isDev": func() bool {
			return devMode
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"money":       Money,
		"change":      Change,
		"markdown":    markdown.Render,
		"statusClass": StatusClass,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"pct": func(v, peak float64) int {
			if peak <= 0 || v <= 0 {
				return 0
			}
			p := int(v / peak * 100)
			if p > 100 {
				return 100
			}
			return p
		},
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, errors.New("dict: odd number of arguments")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				m[key] = pairs[i+1]
			}
			return m, nil
		},
		"initials": func(name string) string {
			var b strings.Builder
			for _, f := range strings.Fields(name) {
				b.WriteString(strings.ToUpper(string([]rune(f)[:1])))
				if b.Len() >= 2 {
					break
				}
			}
			return b.String()
		},
	}
}

// Money formats an amount as dollars with two decimals and thousands
// separators.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + "." + frac
}

// Change formats a percentage change with an explicit sign, e.g. "+20.1%".
func Change(v float64) string {
	d := decimal.NewFromFloat(v).Round(1)
	if d.IsNegative() {
		return d.StringFixed(1) + "%"
	}
	return "+" + d.StringFixed(1) + "%"
}

// StatusClass maps an order status to its badge class.
func StatusClass(s models.OrderStatus) string {
	switch s {
	case models.OrderPending:
		return "badge badge-pending"
	case models.OrderProcessing:
		return "badge badge-processing"
	case models.OrderShipped:
		return "badge badge-shipped"
	case models.OrderDelivered:
		return "badge badge-delivered"
	case models.OrderCancelled:
		return "badge badge-cancelled"
	}
	return "badge"
}
