package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/session"
)

// helperSession returns a session.Data for an onboarded seller.
func helperSession() *session.Data {
	return &session.Data{
		SellerID:          "seller-1",
		Email:             "ada@example.com",
		Name:              "Ada Lovelace",
		BrandName:         "Analytical Goods",
		ProfileComplete:   true,
		AgreementAccepted: true,
		TwoFADone:         true,
	}
}

// helperRequestWithContext builds an *http.Request whose context carries a
// session, which the console layout expects.
func helperRequestWithContext(method, target string, sess *session.Data) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := req.Context()
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return req.WithContext(ctx)
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return rn
}

// --------------------------------------------------------------------------
// TestNew: verify renderer creation and layout assignment
// --------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"prod mode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New(devMode=%v) returned error: %v", tt.devMode, err)
			}

			layouts := map[string]string{
				"dashboard":       layoutConsole,
				"products":        layoutConsole,
				"product_form":    layoutConsole,
				"product_options": layoutConsole,
				"variants":        layoutConsole,
				"variant_form":    layoutConsole,
				"sub_categories":  layoutConsole,
				"orders":          layoutConsole,
				"order_detail":    layoutConsole,
				"videos":          layoutConsole,
				"settings":        layoutConsole,
				"error":           layoutConsole,
				"sign_in":         layoutAuth,
				"sign_up":         layoutAuth,
				"verify":          layoutAuth,
				"two_factor":      layoutAuth,
				"agreement":       layoutAuth,
				"brand":           layoutAuth,
			}
			for name, want := range layouts {
				if _, ok := rn.templates[name]; !ok {
					t.Errorf("expected template %q to be parsed", name)
					continue
				}
				if got := rn.layouts[name]; got != want {
					t.Errorf("layout of %q: got %q, want %q", name, got, want)
				}
			}

			if len(rn.nav) == 0 {
				t.Error("renderer has no navigation groups")
			}
			if !strings.Contains(string(rn.Agreement()), "<h1") {
				t.Error("agreement should be rendered to HTML")
			}
		})
	}
}

// --------------------------------------------------------------------------
// TestDevAndProdAssets: isDev switches between htmx builds
// --------------------------------------------------------------------------

func TestDevAndProdAssets(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
		want    string
		notWant string
	}{
		{"dev mode", true, "htmx.js", "htmx.min.js"},
		{"prod mode", false, "htmx.min.js", "dist/htmx.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			w := httptest.NewRecorder()
			rn.Page(w, helperRequestWithContext(http.MethodGet, "/sign-in", nil), "sign_in", &PageData{Title: "Sign in"})

			body := w.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("expected %q in rendered output", tt.want)
			}
			if strings.Contains(body, tt.notWant) {
				t.Errorf("did not expect %q in rendered output", tt.notWant)
			}
		})
	}
}

// --------------------------------------------------------------------------
// TestPageRendering: full console page with sidebar and session
// --------------------------------------------------------------------------

func TestPageRendering(t *testing.T) {
	rn := newRenderer(t)

	sess := helperSession()
	req := helperRequestWithContext(http.MethodGet, "/orders", sess)
	w := httptest.NewRecorder()

	rn.Page(w, req, "dashboard", &PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Analytics": &models.Analytics{
				TotalRevenue: models.Metric{Amount: 45231.89, Change: 20.1},
				MonthlyData:  []models.MonthlyTotal{{Month: "Jan", Total: 100}, {Month: "Feb", Total: 50}},
			},
			"Peak": 100.0,
			"Orders": []models.Order{{
				ID: "order-1", Email: "grace@example.com", Status: models.OrderShipped,
				TotalAmount: 12.5, CreatedAt: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			}},
			"OrderCount":   1,
			"ProductCount": 3,
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Analytical Goods",
		"$45,231.89",
		"+20.1%",
		"height: 50%",
		"grace@example.com",
		"badge badge-shipped",
		"Mar 4, 2026",
		`class="nav-link active" href="/"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("full page render should contain %q", want)
		}
	}

	ct := w.Header().Get("Content-Type")
	if ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "text/html; charset=utf-8")
	}
}

// --------------------------------------------------------------------------
// TestHTMXPartialRendering: HTMX requests only render the content block
// --------------------------------------------------------------------------

func TestHTMXPartialRendering(t *testing.T) {
	rn := newRenderer(t)

	req := helperRequestWithContext(http.MethodGet, "/settings", helperSession())
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	rn.Page(w, req, "settings", &PageData{
		Title:   "Settings",
		Section: "settings",
		Flashes: []Flash{Success("Two-factor enabled", "")},
		Data: map[string]any{
			"Seller":       &models.Seller{Name: "Ada Lovelace", Email: "ada@example.com"},
			"TwoFAEnabled": true,
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") || strings.Contains(body, "<head>") {
		t.Error("HTMX partial should NOT contain the layout")
	}
	if !strings.Contains(body, "Two-factor enabled") {
		t.Error("HTMX partial should carry the flashes")
	}
	if !strings.Contains(body, "ada@example.com") {
		t.Error("HTMX partial should contain the settings content block")
	}
}

// --------------------------------------------------------------------------
// TestAuthLayout: auth pages render without the console sidebar
// --------------------------------------------------------------------------

func TestAuthLayout(t *testing.T) {
	rn := newRenderer(t)

	pages := []struct {
		name string
		want string
	}{
		{"sign_in", `action="/sign-in"`},
		{"sign_up", `name="confirmPassword"`},
		{"verify", `name="activationCode"`},
		{"two_factor", `action="/2fa/verify"`},
		{"agreement", `name="accept"`},
		{"brand", `action="/onboarding/brand"`},
	}

	for _, tt := range pages {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rn.Page(w, helperRequestWithContext(http.MethodGet, "/", nil), tt.name, &PageData{
				Title: tt.name,
				Data:  map[string]any{"Agreement": rn.Agreement()},
			})

			if w.Code != http.StatusOK {
				t.Fatalf("template %q: expected 200, got %d; body: %s", tt.name, w.Code, w.Body.String())
			}
			body := w.Body.String()
			if !strings.Contains(body, `class="auth"`) {
				t.Errorf("template %q: expected the auth layout", tt.name)
			}
			if strings.Contains(body, `class="sidebar"`) {
				t.Errorf("template %q: should NOT contain the console sidebar", tt.name)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("template %q: expected %q", tt.name, tt.want)
			}
		})
	}
}

// --------------------------------------------------------------------------
// TestFieldErrors: field errors render next to their inputs
// --------------------------------------------------------------------------

func TestFieldErrors(t *testing.T) {
	rn := newRenderer(t)

	d := catalog.NewDraft("draft-1")
	w := httptest.NewRecorder()
	rn.Page(w, helperRequestWithContext(http.MethodGet, "/products/drafts/draft-1", helperSession()), "product_form", &PageData{
		Title:   "New product",
		Section: "products",
		Errors:  catalog.FieldErrors{"price": "Price must be a positive number."},
		Data: map[string]any{
			"Draft":     d,
			"Path":      "/products/drafts/draft-1",
			"MaxImages": catalog.MaxImages,
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Price must be a positive number.") {
		t.Error("price error should be rendered")
	}
	if !strings.Contains(body, "Create product") {
		t.Error("a new draft should offer Create product")
	}
	if !strings.Contains(body, `action="/products/drafts/draft-1/axes"`) {
		t.Error("a new draft should offer the option axes section")
	}
}

// --------------------------------------------------------------------------
// TestError: Error renders the error page with the given status
// --------------------------------------------------------------------------

func TestError(t *testing.T) {
	rn := newRenderer(t)

	w := httptest.NewRecorder()
	rn.Error(w, helperRequestWithContext(http.MethodGet, "/orders/x", helperSession()), http.StatusNotFound, "That order does not exist.")

	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	body := w.Body.String()
	if !strings.Contains(body, "That order does not exist.") {
		t.Error("error page should contain the message")
	}
	if !strings.Contains(body, "Not Found") {
		t.Error("error page should contain the status text")
	}
}

// --------------------------------------------------------------------------
// TestMissingTemplate: Page() with nonexistent template returns 500
// --------------------------------------------------------------------------

func TestMissingTemplate(t *testing.T) {
	rn := newRenderer(t)

	w := httptest.NewRecorder()
	rn.Page(w, helperRequestWithContext(http.MethodGet, "/nope", nil), "nonexistent_template", &PageData{Title: "Not Found"})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not found") {
		t.Error("error response should mention template not found")
	}
}

// --------------------------------------------------------------------------
// TestPageDataCSRFInjection: verify CSRF token is injected from context
// --------------------------------------------------------------------------

func TestPageDataCSRFInjection(t *testing.T) {
	rn := newRenderer(t)

	var capturedReq *http.Request
	inner := middleware.NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
	}))
	inner.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sign-in", nil))

	if capturedReq == nil {
		t.Fatal("CSRF middleware did not call inner handler")
	}
	csrfToken := middleware.CSRFTokenFromCtx(capturedReq.Context())
	if csrfToken == "" {
		t.Fatal("CSRF token not found in context")
	}

	w := httptest.NewRecorder()
	data := &PageData{Title: "Sign in"}
	rn.Page(w, capturedReq, "sign_in", data)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	// Once in hx-headers, once in the form's hidden field.
	if n := strings.Count(w.Body.String(), csrfToken); n < 2 {
		t.Errorf("CSRF token occurrences: got %d, want at least 2", n)
	}
	if data.CSRFToken != csrfToken {
		t.Errorf("PageData.CSRFToken: got %q, want %q", data.CSRFToken, csrfToken)
	}
}

// --------------------------------------------------------------------------
// TestSessionInjectionFromContext: verify session is injected from context
// --------------------------------------------------------------------------

func TestSessionInjectionFromContext(t *testing.T) {
	rn := newRenderer(t)

	req := helperRequestWithContext(http.MethodGet, "/orders", helperSession())
	w := httptest.NewRecorder()

	data := &PageData{Title: "Orders", Section: "orders", Data: map[string]any{}}
	rn.Page(w, req, "orders", data)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
	if data.Session == nil {
		t.Fatal("expected Session to be injected from context")
	}
	if data.Session.Name != "Ada Lovelace" {
		t.Errorf("Session.Name: got %q, want %q", data.Session.Name, "Ada Lovelace")
	}
	body := w.Body.String()
	if !strings.Contains(body, "Ada Lovelace") || !strings.Contains(body, ">AL<") {
		t.Error("rendered output should contain the seller name and initials")
	}
}
