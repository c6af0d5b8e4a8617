package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/himmat05/prime-deal/internal/config"
	"github.com/himmat05/prime-deal/internal/db"
	shopHttp "github.com/himmat05/prime-deal/internal/handler/http"
	"github.com/himmat05/prime-deal/internal/identity"
	"github.com/himmat05/prime-deal/internal/order"
	"github.com/himmat05/prime-deal/internal/product"
	"github.com/himmat05/prime-deal/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "prime-deal-api").Logger()

	log.Info().Msg("Shop API starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	userRepo := user.NewRepository(dbConn.Pool)
	productRepo := product.NewRepository(dbConn.Pool)
	orderRepo := order.NewRepository(dbConn.Pool)

	userSvc := user.NewService(userRepo)
	productSvc := product.NewService(productRepo)
	orderSvc := order.NewService(orderRepo, userRepo, productRepo)

	verifier := identity.NewJWTVerifier(cfg.Auth.JWTSecret)

	authHandler := shopHttp.NewAuthHandler(userSvc)
	productHandler := shopHttp.NewProductHandler(productSvc)
	orderHandler := shopHttp.NewOrderHandler(orderSvc, verifier)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.App.RequestTimeout))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler.RegisterRoutes(router)
	productHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
