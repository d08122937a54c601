package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"assetperf/config"
	"assetperf/database"
	"assetperf/handlers"
	"assetperf/logging"
	"assetperf/middleware"
	"assetperf/routes"
	"assetperf/seed"
	"assetperf/websocket"
)

const version = "1.0.0"

func main() {
	// A missing .env file is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	if envErr != nil {
		log.Debug("no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	store, client, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	defer database.Disconnect(client, log)

	if cfg.SeedFile != "" {
		fixtures, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			log.WithError(err).Fatal("Failed to load seed file")
		}
		if _, err := seed.Apply(ctx, store, fixtures, log); err != nil {
			log.WithError(err).Fatal("Failed to apply seed fixtures")
		}
	}

	auth, err := middleware.NewBasicAuth(cfg.AuthUsername, cfg.AuthPassword, bcrypt.DefaultCost, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure auth")
	}
	metrics := middleware.NewMetrics()

	hub := websocket.NewHub(log.WithField("component", "websocket"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	h := handlers.New(handlers.Options{
		Store:   store,
		Log:     log,
		Events:  hub,
		Metrics: metrics,
		Timeout: cfg.RequestTimeout,
		Version: version,
	})

	// Middleware order matters: the request logger must wrap recovery so
	// panics are logged with the request ID, and CORS must answer
	// preflights before the auth gate sees them.
	router := routes.NewRouter(h, routes.Extras{Metrics: metrics.Handler(), Changes: hub},
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		metrics.Middleware,
		middleware.CORS(cfg.CORSAllowedOrigin),
		auth.Middleware,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"backend": cfg.StoreBackend,
			"version": version,
		}).Info("Asset Performance Dashboard API listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server forced shutdown")
	}
	stopHub()
	log.Info("Server stopped gracefully")
}

// openStore returns the configured storage backend. client is nil for the
// memory backend.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (handlers.Store, *mongo.Client, error) {
	if cfg.StoreBackend == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		return database.NewMemoryStore(), nil, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return nil, nil, err
	}

	store := database.NewStore(client.Database(cfg.MongoDatabase))
	if cfg.EnforceUniqueIndex {
		if err := store.EnsureIndexes(ctx); err != nil {
			database.Disconnect(client, log)
			return nil, nil, err
		}
		log.Info("unique asset_id indexes ensured")
	}
	return store, client, nil
}
