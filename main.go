package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rzane/advanced-demo/internal/config"
	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/logging"
	"github.com/rzane/advanced-demo/internal/middleware"
	"github.com/rzane/advanced-demo/internal/places"
	"go.uber.org/zap"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, db.DB); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func NewRouter(cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logging.L.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Get("/healthz", HealthHandler)
	r.Mount("/", places.SetupRoutes())

	return r
}

// serve runs srv until it fails or ctx is done, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic(err)
	}

	if _, err := logging.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.L.Fatal("invalid configuration", zap.Error(err))
	}

	if err := db.Connect(cfg); err != nil {
		logging.L.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close(db.DB)

	if err := places.Init(); err != nil {
		logging.L.Fatal("migration failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.L.Info("server listening", zap.String("addr", srv.Addr))
	if err := serve(ctx, srv); err != nil {
		logging.L.Error("server stopped", zap.Error(err))
		return
	}
	logging.L.Info("server stopped")
}
