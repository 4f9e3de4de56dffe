// Quantum chess HTTP server. Games are kept in a badger database and
// played through the JSON API under /api.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/quantum"
	"github.com/hailam/quantumchess/internal/server"
	"github.com/hailam/quantumchess/internal/session"
	"github.com/hailam/quantumchess/internal/storage"
)

func main() {
	def := server.DefaultConfig()

	// Flags (env fallbacks).
	var cfg server.Config
	flag.StringVar(&cfg.Addr, "addr", getenv("QCHESS_ADDR", def.Addr), "listen address")
	flag.StringVar(&cfg.DataDir, "data-dir", getenv("QCHESS_DATA_DIR", ""), "database directory (default: platform data dir)")
	flag.DurationVar(&cfg.IdleTimeout, "idle", getdur("QCHESS_IDLE", def.IdleTimeout), "drop games from memory after this long without access")
	flag.DurationVar(&cfg.Retention, "retention", getdur("QCHESS_RETENTION", def.Retention), "delete stored games untouched for this long (0 keeps them)")
	flag.DurationVar(&cfg.CleanInterval, "clean-interval", getdur("QCHESS_CLEAN_INTERVAL", def.CleanInterval), "how often to run cleanup")
	flag.Uint64Var(&cfg.Seed, "seed", getu64("QCHESS_SEED", 0), "fixed random seed for every game (0 seeds from the clock)")
	flag.BoolVar(&cfg.Debug, "debug", getenb("QCHESS_DEBUG", false), "development logging with measurement events")
	flag.Parse()

	logger := newLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	store, err := openStorage(cfg.DataDir, logger)
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing storage", zap.Error(err))
		}
	}()

	opts := []session.Option{session.WithLogger(logger.Named("session"))}
	if cfg.Seed != 0 {
		seed := cfg.Seed
		opts = append(opts, session.WithSourceFactory(func() quantum.Source {
			return quantum.NewSource(seed)
		}))
	}
	games := session.NewManager(store, opts...)
	srv := server.NewServer(games, logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.RunCleanup(ctx, store, cfg)

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Addr) }()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("http server", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}
}

func openStorage(dir string, logger *zap.Logger) (*storage.Storage, error) {
	opts := []storage.Option{storage.WithLogger(logger.Named("storage"))}
	if dir == "" {
		return storage.NewStorage(opts...)
	}
	return storage.Open(dir, opts...)
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

func getu64(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}
