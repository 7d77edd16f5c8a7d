package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slotbook/internal/cache"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/metrics"
	"slotbook/internal/web"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("SLOTBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}
	slotCache := cache.New(rdb, cfg.CacheTTL())

	sessions := web.NewSessionManager(sessionKeys(cfg, &logger))
	srv, err := web.NewServer(cfg, db, slotCache, sessions, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create server error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, slotCache, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go startBackupLoop(ctx, cfg, db, &logger)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("slotbook started")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

// sessionKeys decodes the configured cookie keys, falling back to random
// per-process keys. Random keys invalidate all sessions on restart, so
// the fallback is only for development.
func sessionKeys(cfg *config.Config, logger *zerolog.Logger) (hashKey, blockKey []byte) {
	if cfg.Session.HashKey != "" {
		hashKey = []byte(cfg.Session.HashKey)
	} else {
		logger.Warn().Msg("session.hash_key not set, using a random key")
		hashKey = securecookie.GenerateRandomKey(32)
	}
	if cfg.Session.BlockKey != "" {
		blockKey = []byte(cfg.Session.BlockKey)
	} else {
		logger.Warn().Msg("session.block_key not set, using a random key")
		blockKey = securecookie.GenerateRandomKey(32)
	}
	return hashKey, blockKey
}

func startHealthServer(ctx context.Context, port int, db *database.DB, c *cache.Cache, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if err := c.Ping(ctxPing); err != nil {
			http.Error(w, "redis not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startBackupLoop(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	dir := cfg.Backup.Path
	if dir == "" {
		dir = "backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Msg("create backup dir")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dest := filepath.Join(dir, fmt.Sprintf("slotbook_%s.db", time.Now().Format("20060102_150405")))
			if err := db.Backup(dest); err != nil {
				logger.Error().Err(err).Msg("backup failed")
				continue
			}
			logger.Info().Str("dest", dest).Msg("backup written")

			if cfg.Backup.RetentionDays > 0 {
				retention := time.Duration(cfg.Backup.RetentionDays) * 24 * time.Hour
				removed, err := db.CleanupBackups(dir, retention)
				if err != nil {
					logger.Error().Err(err).Msg("backup cleanup failed")
				} else if removed > 0 {
					logger.Info().Int("removed", removed).Msg("old backups removed")
				}
			}
		}
	}
}
