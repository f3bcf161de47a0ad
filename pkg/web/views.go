// Package web renders server-side pages from pre-parsed html/template sets
// and serves embedded static assets.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/flash"
)

// ViewDef names a page template and its default title.
type ViewDef struct {
	Template string
	Title    string
}

// ViewData is passed to every page template.
type ViewData struct {
	Title     string
	BasePath  string
	Flashes   []flash.Message
	Principal *auth.Principal
	Data      any
}

// TemplateSet holds one parsed template tree per view, each cloned from the
// shared layouts so views can redefine the same blocks.
type TemplateSet struct {
	views    map[string]*template.Template
	titles   map[string]string
	layout   string
	basePath string
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateTime)
	},
	"add": func(a, b int) int { return a + b },
}

// NewTemplateSet parses layouts matching layoutGlob in fsys, then clones them
// for each view found under viewDir. Parsing happens once, at startup.
func NewTemplateSet(fsys fs.FS, layoutGlob, viewDir, layout, basePath string, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(Funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	viewFS, err := fs.Sub(fsys, viewDir)
	if err != nil {
		return nil, err
	}

	ts := &TemplateSet{
		views:    make(map[string]*template.Template, len(views)),
		titles:   make(map[string]string, len(views)),
		layout:   layout,
		basePath: basePath,
	}

	for _, v := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", v.Template, err)
		}
		if _, err := t.ParseFS(viewFS, v.Template); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", v.Template, err)
		}
		ts.views[v.Template] = t
		ts.titles[v.Template] = v.Title
	}

	return ts, nil
}

// BasePath returns the URL prefix templates should build links from.
func (ts *TemplateSet) BasePath() string {
	return ts.basePath
}

// Render executes the layout for view into a buffer and writes it with status.
// Nothing is written when execution fails.
func (ts *TemplateSet) Render(w http.ResponseWriter, status int, view string, data ViewData) error {
	t, ok := ts.views[view]
	if !ok {
		return fmt.Errorf("template not found: %s", view)
	}

	if data.Title == "" {
		data.Title = ts.titles[view]
	}
	data.BasePath = ts.basePath

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, ts.layout, data); err != nil {
		return fmt.Errorf("render %s: %w", view, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// ErrorHandler returns a handler that renders view with the given status.
func (ts *TemplateSet) ErrorHandler(view string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := ViewData{Principal: auth.FromContext(r.Context())}
		if err := ts.Render(w, status, view, data); err != nil {
			http.Error(w, http.StatusText(status), status)
		}
	}
}
