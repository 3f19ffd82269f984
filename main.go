package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"workout-planner/internal/cli"
	"workout-planner/internal/config"
	"workout-planner/internal/planner"
	"workout-planner/internal/search"
	"workout-planner/internal/service"
	"workout-planner/internal/storage"
	"workout-planner/internal/store"
	"workout-planner/internal/youtube"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flags := pflag.NewFlagSet("workouts", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	configPath := flags.String("config", "", "config file (default ~/.workouts/config.json)")
	flags.String("db", "", "database file")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	initConfig := flags.Bool("init", false, "write an example config file and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", cli.ErrUsage, err)
	}

	if *initConfig {
		created, err := config.CreateExample(*configPath)
		if err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		if !created {
			fmt.Println("Config file already exists, leaving it alone.")
			return nil
		}
		fmt.Printf("Wrote an example config. Edit it at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Add a YouTube Data API key to fetch video titles and durations.")
		fmt.Println("Get one from: https://console.cloud.google.com/apis/credentials")
		return nil
	}

	// Load configuration
	cfg, err := config.Load(*configPath, flags)
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Printf("No config file at %s.\n", *configPath)
		fmt.Println("Run `workouts --init` to create one, or omit --config to use defaults.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	// Open database
	db, err := storage.OpenSQLite(ctx, cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	s := store.New(db, store.Options{Logger: logger})

	idx, err := search.New()
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}
	defer idx.Close()
	unsubscribe := service.KeepIndexed(s, idx, logger)
	defer unsubscribe()

	// Commands wait for hydration; a failed load cancels them with its cause
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		if err := s.Rehydrate(ctx); err != nil {
			cancel(fmt.Errorf("loading saved data: %w", err))
		}
	}()

	// Create services
	yt := youtube.NewClient(cfg.YouTube.APIKey,
		youtube.WithLogger(logger),
		youtube.WithQuota(youtube.NewQuota(cfg.YouTube.DailyQuota, youtube.DefaultMinInterval)),
	)
	querySvc := service.NewQueryService(s,
		service.WithSearcher(idx),
		service.WithReminderDays(cfg.Backup.ReminderDays),
	)
	catalogSvc := service.NewCatalogService(yt, s, logger)

	app := cli.New(cli.Deps{
		Store:    s,
		Query:    querySvc,
		Catalog:  catalogSvc,
		Planner:  planner.NewGenerator(nil, logger),
		PageSize: cfg.Library.PageSize,
		Out:      os.Stdout,
		Logger:   logger,
	})
	if err := app.Run(ctx, flags.Args()); err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return err
	}
	return nil
}

// newLogger builds a console logger for debugging and a JSON logger to stderr otherwise
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Sampling = nil
	return zc.Build()
}
