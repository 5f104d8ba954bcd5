// Command tview browses a CSV file, JSON file or PostgreSQL table in the
// terminal. Flags override the same environment variables the web server
// reads.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tablesorter/internal/config"
	"github.com/JonMunkholm/tablesorter/internal/logging"
	"github.com/JonMunkholm/tablesorter/internal/source"
	"github.com/JonMunkholm/tablesorter/internal/tui"
	"github.com/JonMunkholm/tablesorter/internal/view"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		format   string
		pageSize int
		loc      string
		sortBy   string
		order    string
		dbTable  string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "tview [file]",
		Short: "Interactive table viewer",
		Long: "Open a CSV or JSON file, or a PostgreSQL table with --db-table, and browse it " +
			"with search, column filters, sorting and paging. Without a source the demo data is shown.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			overrides := map[string]string{
				"SOURCE_FORMAT":    format,
				"TABLE_LOCALE":     loc,
				"TABLE_SORT_BY":    sortBy,
				"TABLE_SORT_ORDER": order,
				"SOURCE_DB_TABLE":  dbTable,
				"LOG_FILE":         logFile,
			}
			if len(args) == 1 {
				overrides["SOURCE_PATH"] = args[0]
			}
			if cmd.Flags().Changed("page-size") {
				overrides["TABLE_PAGE_SIZE"] = strconv.Itoa(pageSize)
			}

			cfg, err := config.LoadFrom(config.Overlay(os.LookupEnv, overrides))
			if err != nil {
				return err
			}

			closer, err := logging.SetupFile(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer closer.Close()

			opts, title, err := load(cmd.Context(), cfg)
			if err != nil {
				slog.Error("failed to load table data", "error", err)
				return err
			}
			slog.Info("table loaded", "source", title, "records", len(opts.Data))

			tcfg := tui.Config{
				Title:         title,
				ThrottleDelay: cfg.Table.ThrottleDelay,
				Logger:        slog.Default(),
			}
			if title == "Demo" {
				tcfg.NewRecord = func(id int) view.Record { return source.DemoRecord(id, nil) }
			}
			return tui.Run(opts, tcfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&format, "format", "", "file format: csv or json (default: from extension)")
	flags.IntVar(&pageSize, "page-size", view.DefaultPageSize, "rows per page")
	flags.StringVar(&loc, "locale", "", "message language: es or en")
	flags.StringVar(&sortBy, "sort", "", "initial sort column")
	flags.StringVar(&order, "order", "", "initial sort order: asc or desc")
	flags.StringVar(&dbTable, "db-table", "", "PostgreSQL table to browse (needs DATABASE_URL)")
	flags.StringVar(&logFile, "log-file", "", "append logs to this file")

	return cmd
}

// load reads the configured source once and applies the table defaults.
func load(ctx context.Context, cfg *config.Config) (view.Options, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case cfg.Source.UsesDatabase():
		ctx, cancel := context.WithTimeout(ctx, cfg.Source.LoadTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Source.DatabaseURL)
		if err != nil {
			return view.Options{}, "", fmt.Errorf("connect: %w", err)
		}
		defer pool.Close()

		opts, err := source.LoadPostgres(ctx, pool, cfg.Source.DBTable, cfg.Source.MaxRows)
		if err != nil {
			return view.Options{}, "", err
		}
		return cfg.Table.Apply(opts), cfg.Source.DBTable, nil

	case cfg.Source.Path != "":
		opts, err := source.LoadFile(cfg.Source.Path, source.Format(strings.ToLower(cfg.Source.Format)), slog.Default())
		if err != nil {
			return view.Options{}, "", err
		}
		return cfg.Table.Apply(opts), cfg.Source.Path, nil

	default:
		return cfg.Table.Apply(source.Demo()), "Demo", nil
	}
}
