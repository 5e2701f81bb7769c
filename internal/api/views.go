package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed views
var viewFS embed.FS

// Views holds the HTML pages, keyed by their path under views/ without the
// .html suffix (for example "sheet/index").
type Views struct {
	pages map[string]*template.Template
}

// LoadViews parses every embedded page.
func LoadViews() (*Views, error) {
	v := &Views{pages: make(map[string]*template.Template)}
	err := fs.WalkDir(viewFS, "views", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".html") {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "views/"), ".html")
		tmpl, err := template.ParseFS(viewFS, path)
		if err != nil {
			return fmt.Errorf("parse view %s: %w", name, err)
		}
		v.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// MustLoadViews is LoadViews for the embedded set, which is fixed at build time.
func MustLoadViews() *Views {
	v, err := LoadViews()
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a page called name exists.
func (v *Views) Has(name string) bool {
	_, ok := v.pages[name]
	return ok
}

// Render executes the page into a buffer first so a failing template never
// leaves a half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render view %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
