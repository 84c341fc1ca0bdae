package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	v1chat "github.com/rizzard/rizzard/internal/api/v1/handlers/chat"
	"github.com/rizzard/rizzard/internal/api/v1/handlers/pages"
	v1ws "github.com/rizzard/rizzard/internal/api/v1/handlers/websocket"
	v1mware "github.com/rizzard/rizzard/internal/api/v1/middleware"
	"github.com/rizzard/rizzard/internal/services"
)

func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.Use(v1mware.RequestLogger)

	// Pages
	router.HandleFunc("/", pages.HandleIndex).Methods("GET")
	router.HandleFunc("/search", pages.HandleSearch).Methods("GET")

	// Widget
	router.HandleFunc("/widget.js", HandleWidgetJS).Methods("GET")
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleWidgetWebSocket(services.GetConnectionManager(), services.GetWidgetClient(), w, r)
	})

	// Chat proxy
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChat(services.GetChatService(), w, r)
	}).Methods("POST")

	// Operations
	router.HandleFunc("/healthz", HandleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
