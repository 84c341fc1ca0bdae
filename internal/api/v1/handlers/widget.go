package handlers

import (
	"net/http"
	"strconv"

	"github.com/rizzard/rizzard/internal/api/v1/handlers/assets"
	"github.com/rs/zerolog/log"
)

func HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	log.Debug().
		Str("client_ip", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Widget.js requested")

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Content-Length", strconv.Itoa(len(assets.WidgetJS)))

	if _, err := w.Write(assets.WidgetJS); err != nil {
		log.Warn().Err(err).Str("client_ip", r.RemoteAddr).Msg("Failed to write widget.js")
	}
}
