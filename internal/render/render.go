// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the seller console.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/markdown"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/session"
)

//go:embed templates nav.yaml agreement.md
var files embed.FS

// Layout roots. Console pages get the sidebar; auth pages (sign-in,
// sign-up, verification, onboarding) are centred cards without it.
const (
	layoutConsole = "console"
	layoutAuth    = "auth"
)

// PageData holds all data passed to templates.
type PageData struct {
	Title     string
	Section   string        // active sidebar section
	Session   *session.Data // nil when anonymous
	CSRFToken string
	Nav       []NavGroup
	Data      map[string]any
	Errors    catalog.FieldErrors
	Flashes   []Flash
}

// Flash is a one-time notification shown above the page content.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Title   string
	Message string
}

// FlashFromNotice turns a user-facing notice into an error flash.
func FlashFromNotice(n *catalog.Notice) Flash {
	return Flash{Type: "error", Title: n.Title, Message: n.Description}
}

// Success returns a success flash.
func Success(title, message string) Flash {
	return Flash{Type: "success", Title: title, Message: message}
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	layouts   map[string]string
	nav       []NavGroup
	agreement template.HTML
}

// New parses every page template from the embedded filesystem, each paired
// with the layout of its directory. When devMode is true, templates load
// htmx unminified.
func New(devMode bool) (*Renderer, error) {
	funcs := funcMap(devMode)

	nav, err := loadNav()
	if err != nil {
		return nil, err
	}

	src, err := files.ReadFile("agreement.md")
	if err != nil {
		return nil, fmt.Errorf("read agreement: %w", err)
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		layouts:   make(map[string]string),
		nav:       nav,
		agreement: markdown.Render(string(src)),
	}

	for _, layout := range []string{layoutConsole, layoutAuth} {
		dir := "templates/" + layout
		pages, err := fs.Glob(files, dir+"/*.html")
		if err != nil {
			return nil, fmt.Errorf("glob %s templates: %w", layout, err)
		}

		for _, page := range pages {
			name := strings.TrimSuffix(path.Base(page), ".html")
			if _, dup := r.templates[name]; dup {
				return nil, fmt.Errorf("template %q defined in two layouts", name)
			}

			tmpl, err := template.New(layout).Funcs(funcs).ParseFS(files,
				"templates/layouts/"+layout+".html",
				"templates/partials/*.html",
				page,
			)
			if err != nil {
				return nil, fmt.Errorf("parse template %s: %w", page, err)
			}
			r.templates[name] = tmpl
			r.layouts[name] = layout
		}
	}

	return r, nil
}

// Agreement returns the seller agreement rendered from Markdown.
func (rn *Renderer) Agreement() template.HTML { return rn.agreement }

// Page renders a full page or an HTMX partial, depending on the request
// headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Nav == nil {
		data.Nav = rn.nav
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}

	execName := rn.layouts[name]
	if middleware.IsHTMX(r) {
		execName = "content"
	}

	// A failed render must not leave half a page on the wire.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error page with the given status.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rn.PageStatus(w, r, status, "error", &PageData{
		Title: http.StatusText(status),
		Data: map[string]any{
			"Status":  status,
			"Message": message,
		},
	})
}

// NavGroup is a titled block of sidebar links.
type NavGroup struct {
	Title string    `yaml:"title"`
	Items []NavItem `yaml:"items"`
}

// NavItem is one sidebar link.
type NavItem struct {
	Label   string `yaml:"label"`
	Section string `yaml:"section"`
	Href    string `yaml:"href"`
}

func loadNav() ([]NavGroup, error) {
	raw, err := files.ReadFile("nav.yaml")
	if err != nil {
		return nil, fmt.Errorf("read nav: %w", err)
	}
	var doc struct {
		Groups []NavGroup `yaml:"groups"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse nav: %w", err)
	}
	for _, g := range doc.Groups {
		for _, it := range g.Items {
			if it.Label == "" || !strings.HasPrefix(it.Href, "/") {
				return nil, fmt.Errorf("nav item %q: label and absolute href required", it.Label)
			}
		}
	}
	return doc.Groups, nil
}
