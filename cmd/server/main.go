package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/simple-publishing/pkg/simplepublishing/api"
	"github.com/tendant/simple-publishing/pkg/simplepublishing/config"
)

func main() {
	// Load configuration from defaults plus environment overrides
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Verify database connectivity up front when using postgres
	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
			log.Fatalf("Database check failed: %v", err)
		}
	}

	// Create unified service
	svc, err := cfg.BuildService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	// Initialize API handlers
	articleHandler := api.NewArticleHandler(svc)
	draftHandler := api.NewDraftHandler(svc)
	discoveryHandler := api.NewDiscoveryHandler(svc)

	// Set up router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// Mount routes
	r.Mount("/articles", articleHandler.Routes())
	r.Mount("/drafts", draftHandler.Routes())
	r.Mount("/discover", discoveryHandler.Routes())

	// Add a simple health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Create server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
