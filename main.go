package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BorisDmv/blog-posts-api/internal/config"
	"github.com/BorisDmv/blog-posts-api/internal/db"
	"github.com/BorisDmv/blog-posts-api/internal/handlers"
	appmiddleware "github.com/BorisDmv/blog-posts-api/internal/middleware"
)

func main() {
	cfg := config.Load()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.Open(connectCtx, db.Options{
		DatabaseURL:   cfg.DatabaseURL,
		MongoDatabase: cfg.MongoDatabase,
	})
	cancelConnect()
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	// Public reads: cfg.PublicRateLimit requests per minute per IP
	publicLimiter := appmiddleware.NewRateLimiter(cfg.PublicRateLimit, time.Minute)
	defer publicLimiter.Stop()

	guard := appmiddleware.RequireIdentity(appmiddleware.JWTResolver{Secret: []byte(cfg.JWTSecret)})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health)

	postsHandler := handlers.NewPostsHandler(store)
	r.Route("/api", func(r chi.Router) {
		r.Mount("/posts", postsHandler.Routes(guard, publicLimiter.Limit))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
