package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"blacksheep/internal/app"
	"blacksheep/internal/config"
	"blacksheep/internal/store"
	httpTransport "blacksheep/internal/transport/http"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BLACKSHEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "blacksheep",
		Short:         "Party game server: match the herd, dodge the black sheep.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config.Load(v))
		},
	}

	fs := cmd.Flags()
	fs.StringP("port", "p", "8080", "port to listen on (env: BLACKSHEEP_PORT)")
	fs.StringP("host", "b", "0.0.0.0", "address to bind to (env: BLACKSHEEP_HOST)")
	fs.String("env", "development", "runtime environment (env: BLACKSHEEP_ENV)")
	fs.Int("code-length", app.DefaultCodeLength, "length of game join codes (env: BLACKSHEEP_CODE_LENGTH)")
	fs.String("redis-addr", "", "redis address; empty selects the in-memory store (env: BLACKSHEEP_REDIS_ADDR)")
	fs.String("redis-password", "", "redis password (env: BLACKSHEEP_REDIS_PASSWORD)")
	fs.Int("redis-db", 0, "redis database number (env: BLACKSHEEP_REDIS_DB)")
	fs.String("log-level", "info", "log level: debug, info, warn, error (env: BLACKSHEEP_LOG_LEVEL)")
	fs.String("log-format", "text", "log format: text or json (env: BLACKSHEEP_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	return cmd
}

func run(cfg *config.Config) error {
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting black sheep game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	var st store.Storage
	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("opening redis store: %w", err)
		}
		defer redisStore.Close()
		st = redisStore
		logger.Info("using redis store", "addr", cfg.Redis.Addr)
	} else {
		st = store.NewMemStore()
		logger.Info("using in-memory store")
	}

	registry := app.NewRoomRegistry(logger)
	defer registry.Close()

	games := app.NewGameService(st, cfg.Game.CodeLength, logger)
	processor := app.NewRoundProcessor(st, logger)

	server := httpTransport.NewServer(cfg, games, processor, registry, st, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
