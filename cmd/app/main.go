package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/deckservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/notetype"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/validate"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if u := cmd.String("anki-url"); u != "" {
		cfg.Anki.URL = u
	}
	return internal.Check(ctx, cfg, cmd.Bool("remote"), os.Stdout)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Stdout carries the MCP transport, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Decks.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	table, strategy, err := notetype.LoadFile(cfg.NoteTypes.Path)
	if err != nil {
		return fmt.Errorf("load note types: %w", err)
	}
	if cfg.NoteTypes.Strategy != "" {
		strategy, err = notetype.StrategyByName(cfg.NoteTypes.Strategy)
		if err != nil {
			return fmt.Errorf("load note types: %w", err)
		}
	}
	p := parser.New(table, strategy)
	v := validate.New(table)

	if err := index.Sync(db, store, p, v, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := deckservice.NewService(store, db, p, v)
	return mcpserver.New(store, svc, table).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Markdown flashcard backend with note parsing, SQLite search, and Anki sync tooling",
		Action: runServe,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server and deck watcher",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "check",
				Usage:  "Parse and validate all decks, optionally cross-checking ids against AnkiConnect",
				Action: runCheck,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "remote",
						Usage: "Cross-check deck and note ids against a running AnkiConnect instance",
					},
					&cli.StringFlag{
						Name:  "anki-url",
						Usage: "AnkiConnect endpoint (default http://127.0.0.1:8765)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve deck tools over the Model Context Protocol on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
