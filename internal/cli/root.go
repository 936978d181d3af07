package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cachemaker/internal/catalog"
	"cachemaker/internal/config"
	"cachemaker/internal/dragdrop"
	"cachemaker/internal/format"
	"cachemaker/internal/journal"
	"cachemaker/internal/logging"
	"cachemaker/internal/seed"
	"cachemaker/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	SeedPath   string
	Format     string
	PrettyJSON bool

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cachemaker",
		Short:        "Sort geocaches between In Progress and Completed by drag and drop",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  cachemaker

  # Check a seed file
  cachemaker seed check caches.toml

  # Replay a gesture script
  cachemaker replay cross_list.yaml --pretty
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog == nil {
			return nil
		}
		return app.closeLog()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("CACHEMAKER_CONFIG", ""), "Path to config.toml (default: ~/.config/cachemaker/config.toml)")
	cmd.PersistentFlags().StringVar(&app.SeedPath, "seed", "", "Seed file for the In Progress list (.json or .toml; overrides seed.path)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CACHEMAKER_FORMAT", "json"), "Output format (json|edn)")

	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newReplayCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup loads config and builds the logger. Subcommands log to stderr unless
// log.file is set; the TUI owns the terminal, so it logs only to a file.
func (app *App) setup(cmd *cobra.Command) error {
	if _, err := format.Normalize(app.Format); err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if strings.TrimSpace(app.SeedPath) != "" {
		cfg.Seed.Path = app.SeedPath
	}
	app.cfg = cfg

	var sink io.Writer = cmd.ErrOrStderr()
	if cmd.Parent() == nil {
		sink = nil
	}
	logger, closeLog, err := logging.New(cfg.Log, sink)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("open log: %w", err))
	}
	app.logger = logger
	app.closeLog = closeLog
	return nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	res, err := loadSeed(ctx, app, "")
	if err != nil {
		return writeErr(cmd, err)
	}
	j, err := journal.Open(ctx, app.cfg.Journal.DSN)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("open journal: %w", err))
	}
	defer j.Close()

	eng := dragdrop.NewEngine(catalog.NewStandard(res.Items),
		dragdrop.WithLogger(app.logger),
		dragdrop.WithRecorder(j),
	)
	return tui.Run(tui.Options{
		Engine:  eng,
		Journal: j,
		Logger:  app.logger,
		Glyphs:  app.cfg.TUI.Glyphs,
		Skipped: res.Skipped,
	})
}

// loadSeed loads path, or the configured seed, or the bundled default.
func loadSeed(ctx context.Context, app *App, path string) (seed.Result, error) {
	if strings.TrimSpace(path) == "" {
		path = app.cfg.Seed.Path
	}
	if strings.TrimSpace(path) == "" {
		return seed.LoadDefault(ctx, app.logger)
	}
	return seed.LoadFile(ctx, path, app.logger)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
