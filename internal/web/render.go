// Package web renders the ride page and remembers the rider's last city.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

// DateLayout is used for the current-conditions heading.
const DateLayout = "Monday, January 2, 2006 at 03:04 PM"

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the index page for p.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}

func localTime(t time.Time, zone *time.Location) time.Time {
	if zone == nil {
		return t
	}
	return t.In(zone)
}
