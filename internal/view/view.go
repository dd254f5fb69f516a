// Package view renders the server-side HTML pages through echo.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carmarket/internal/middleware"
	"github.com/iliyamo/carmarket/internal/model"
)

//go:embed templates/*.html
var files embed.FS

// Viewer is the signed-in user as seen by templates.
type Viewer struct {
	ID       uint64
	Role     string
	IsOwner  bool
	IsSeeker bool
}

// Page is the value every template is executed with.
type Page struct {
	User *Viewer
	CSRF string
	Data interface{}
}

// Renderer implements echo.Renderer. Each page is parsed together with
// layout.html so pages only define "title" and "content".
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"media": func(key *string) string {
		if key == nil || *key == "" {
			return ""
		}
		return "/media/" + *key
	},
	"listing": func(t model.ListingType) string {
		if t == model.ListingRent {
			return "For rent"
		}
		return "For sale"
	},
}

// New parses every embedded page.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, n := range names {
		base := path.Base(n)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(files, "templates/layout.html", n)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r, nil
}

// Render executes page name with the caller's identity attached.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	p := Page{Data: data, CSRF: middleware.CSRFToken(c)}
	if id, ok := middleware.UserID(c); ok {
		role := middleware.Role(c)
		p.User = &Viewer{ID: id, Role: role, IsOwner: model.IsOwner(role), IsSeeker: model.IsSeeker(role)}
	}
	return t.ExecuteTemplate(w, "layout", p)
}
