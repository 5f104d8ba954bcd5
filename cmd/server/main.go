package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/tablesorter/internal/config"
	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/source"
	"github.com/JonMunkholm/tablesorter/internal/view"
	"github.com/JonMunkholm/tablesorter/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"locale", cfg.Table.Locale,
		"page_size", cfg.Table.PageSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	var (
		reload  web.Reloader
		options []web.ServerOption
		title   string
	)

	switch {
	case cfg.Source.UsesDatabase():
		pool, err := connect(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		reload = func(ctx context.Context) (view.Options, error) {
			opts, err := source.LoadPostgres(ctx, pool, cfg.Source.DBTable, cfg.Source.MaxRows)
			if err != nil {
				return view.Options{}, err
			}
			return cfg.Table.Apply(opts), nil
		}
		title = cfg.Source.DBTable

	case cfg.Source.Path != "":
		reload = func(context.Context) (view.Options, error) {
			opts, err := source.LoadFile(cfg.Source.Path, source.Format(strings.ToLower(cfg.Source.Format)), slog.Default())
			if err != nil {
				return view.Options{}, err
			}
			return cfg.Table.Apply(opts), nil
		}
		title = cfg.Source.Path

	default:
		options = append(options, web.WithRecordGenerator(func(id int) view.Record {
			return source.DemoRecord(id, nil)
		}))
		title = "Demo"
	}

	var opts view.Options
	if reload != nil {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
		opts, err = reload(loadCtx)
		cancel()
		if err != nil {
			slog.Error("failed to load table data", "error", err)
			os.Exit(1)
		}
		options = append(options, web.WithReloader(reload))
	} else {
		opts = cfg.Table.Apply(source.Demo())
	}

	slog.Info("table loaded",
		"source", title,
		"records", len(opts.Data),
		"columns", len(opts.Columns),
	)

	options = append(options, web.WithTitle(title))
	server := web.NewServer(cfg, opts, options...)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go server.Sessions().StartSweeper(sweepCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		stopSweeper()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// connect opens and verifies the PostgreSQL pool for the configured source.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Source.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.Source.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Source.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
