package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	v1handlers "github.com/rizzard/rizzard/internal/api/v1/handlers"
	"github.com/rizzard/rizzard/internal/config"
	"github.com/rizzard/rizzard/internal/services"
	"github.com/rizzard/rizzard/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Init()

	svc, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	addr := config.GetListenAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("app", config.GetAppName()).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func setupRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()
	v1handlers.RegisterRoutes(r, svc)
	return r
}
