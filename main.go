package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openwaterdata/waterrights/internal/config"
	"github.com/openwaterdata/waterrights/internal/db"
	"github.com/openwaterdata/waterrights/internal/export"
	logpkg "github.com/openwaterdata/waterrights/internal/logger"
	"github.com/openwaterdata/waterrights/internal/metrics"
	"github.com/openwaterdata/waterrights/internal/middleware"
	"github.com/openwaterdata/waterrights/internal/store"
	"github.com/openwaterdata/waterrights/internal/waterrights"
	"github.com/openwaterdata/waterrights/internal/wrimport"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting water rights API",
		zap.String("env", cfg.Logging.Env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	var records waterrights.Store
	switch cfg.Database.Driver {
	case config.DriverMemory:
		records, err = memoryStore(cfg.Database)
	case config.DriverPostgres:
		var closeDB func()
		records, closeDB, err = postgresStore(ctx, cfg.Database, logger)
		if closeDB != nil {
			defer closeDB()
		}
	default:
		err = fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}

	svc := waterrights.NewService(records, waterrights.Options{
		PageSize: cfg.Search.PageSize,
		Export: export.Options{
			MaxRecords:       cfg.Export.MaxRecords,
			FetchConcurrency: cfg.Export.FetchConcurrency,
		},
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(cfg.HTTP.RequestsPerMinute))
		r.Mount("/", waterrights.SetupRoutes(svc, waterrights.RouteOptions{
			FileName:           cfg.Export.FileName,
			DownloadsPerMinute: cfg.Export.RequestsPerMinute,
			DownloadBurst:      cfg.Export.Burst,
		}))
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout(),
		WriteTimeout: cfg.HTTP.WriteTimeout(),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

// memoryStore serves the built-in sample, or the records of seed_csv.
func memoryStore(cfg config.DatabaseConfig) (*store.Memory, error) {
	if cfg.SeedCSV == "" {
		return store.NewMemory(store.SampleRecords()), nil
	}
	recs, err := wrimport.ParseFile(cfg.SeedCSV, wrimport.DefaultNamespace)
	if err != nil {
		return nil, fmt.Errorf("seed memory store: %w", err)
	}
	return store.NewMemory(recs), nil
}

func postgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*store.Postgres, func(), error) {
	gdb, err := db.Connect(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, gdb); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	return store.NewPostgres(gdb), closeDB, nil
}
