// Package pages renders the landing and search pages that host the chat widget.
package pages

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/rizzard/rizzard/internal/config"
	"github.com/rizzard/rizzard/pkg/httpext"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	AppName string
	Query   string
}

// HandleIndex renders the landing page
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, pageData{AppName: config.GetAppName()})
}

// HandleSearch renders the landing page in its searching state. Matching is
// not implemented yet; the page only echoes the query.
func HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	log.Info().Str("query", query).Str("client_ip", r.RemoteAddr).Msg("Search requested")
	render(w, pageData{AppName: config.GetAppName(), Query: query})
}

func render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		httpext.JsonError(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("Failed to write page")
	}
}
