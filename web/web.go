// Package web renders the storefront's HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "base.html"

// Renderer writes a named page with the given status.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data *Page) error
}

// Page is the data every template receives.
type Page struct {
	Title     string
	Username  string
	CartItems int

	Heading  string
	Books    []models.Book
	SortKey  models.SortKey
	SortKeys []models.SortKey
	Query    string

	Book    *models.Book
	Reviews []models.ReviewRating
	Average float64

	Cart    *models.Cart
	Receipt *service.Receipt

	Form   map[string]string
	Errors service.FormErrors
	Error  string
	Next   string
}

// LoggedIn reports whether the page is shown to a signed-in user.
func (p *Page) LoggedIn() bool { return p.Username != "" }

// Templates holds one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(v int64) string { return fmt.Sprintf("$%d", v) },
	"rating": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"sortLabel": func(k models.SortKey) string {
		switch k {
		case models.SortTitlesAZ:
			return "Titles A-Z"
		case models.SortAuthorsAZ:
			return "Authors A-Z"
		case models.SortPriceLH:
			return "Price: low to high"
		case models.SortPriceHL:
			return "Price: high to low"
		}
		return "Featured"
	},
}

// New parses every page under templates/ against the shared layout.
func New() (*Templates, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == layout {
			continue
		}
		tmpl, err := template.New(layout).Funcs(funcs).ParseFS(templateFS, "templates/"+layout, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		t.pages[base] = tmpl
	}
	return t, nil
}

// Names lists the parsed pages.
func (t *Templates) Names() []string {
	out := make([]string, 0, len(t.pages))
	for n := range t.pages {
		out = append(out, n)
	}
	return out
}

// Render executes into a buffer first so a template error never leaves a
// half-written page.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data *Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	if data == nil {
		data = &Page{}
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
