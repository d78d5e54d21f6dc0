package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin    = "login.html"
	PageRegister = "register.html"
	PageAnalyzer = "analyzer.html"
)

var funcs = template.FuncMap{
	"percent": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

// Renderer executes the embedded page templates, each wrapped in layout.html.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page up front so template errors surface at startup.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{PageLogin, PageRegister, PageAnalyzer} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with the given status. The page is buffered so a
// template failure still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data interface{}) {
	tmpl, ok := r.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("Unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to execute page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Str("page", page).Msg("Client went away while rendering")
	}
}
