package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"ssipfix/cmd/app"
	"ssipfix/internal/config"
	handlers "ssipfix/internal/handler"
	"ssipfix/internal/logger"
	"ssipfix/internal/middleware"
	"ssipfix/internal/service"
	"ssipfix/internal/storage"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const tokenPurgeInterval = time.Hour

func newRouter(handler *handlers.Handlers, store storage.Storage) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.MetricsMiddleware)

	auth := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	router.HandleFunc("/health", handler.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", handler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", handler.Logout).Methods(http.MethodPost)

	api.Handle("/me", auth(handler.Me)).Methods(http.MethodGet)
	api.Handle("/me/password", auth(handler.ChangePassword)).Methods(http.MethodPut)

	// answers anonymous callers itself, in the {success:false} shape
	api.HandleFunc("/reactions", handler.ToggleReaction).Methods(http.MethodPost)

	api.Handle("/media", auth(handler.UploadMedia)).Methods(http.MethodPost)

	api.HandleFunc("/posts", handler.ListPosts).Methods(http.MethodGet)
	api.Handle("/posts", auth(handler.CreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id:[0-9]+}", handler.GetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id:[0-9]+}/comments", auth(handler.AddComment)).Methods(http.MethodPost)

	api.Handle("/notes", auth(handler.ListNotes)).Methods(http.MethodGet)
	api.Handle("/notes", auth(handler.CreateNote)).Methods(http.MethodPost)
	api.Handle("/notes/{id:[0-9]+}", auth(handler.UpdateNote)).Methods(http.MethodPut)
	api.Handle("/notes/{id:[0-9]+}", auth(handler.DeleteNote)).Methods(http.MethodDelete)

	// MinIO serves its own objects
	if local, ok := store.(*storage.LocalStorage); ok {
		files := http.FileServer(http.Dir(local.Root()))
		router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", files)).Methods(http.MethodGet)
	}

	return router
}

// purgeTokens drops expired remember-me rows now and then on every tick until ctx ends.
func purgeTokens(ctx context.Context, tokens service.TokenService) {
	purge := func() {
		n, err := tokens.PurgeExpired(ctx)
		if err != nil {
			logger.WarnWithFields("Failed to purge expired remember-me tokens", err)
			return
		}
		if n > 0 {
			logger.Log.Info("Purged expired remember-me tokens", zap.Int64("count", n))
		}
	}

	purge()
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Close()

	application := app.App(cfg)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeTokens(ctx, application.Services.Tokens)

	handler := handlers.NewHandlers(application.Services, cfg)

	handlerChain := middleware.Chain(
		newRouter(handler, application.Storage),
		middleware.CSRFMiddleware("/api/reactions", "/api/auth/login", "/api/auth/register"),
		middleware.SessionMiddleware(application.Services.Auth, cfg),
		middleware.BodyLimit(cfg.Media.MaxRequestBytes),
		middleware.SecureHeaders,
		middleware.LoggingMiddleware,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server started",
			zap.String("addr", server.Addr),
			zap.String("database", cfg.DB.DbNAME),
			zap.String("storage", cfg.Media.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Graceful shutdown failed", err)
	}
}
