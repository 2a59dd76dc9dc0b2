package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/config"
	"abbaytv/portal/internal/contact"
	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/database"
	"abbaytv/portal/internal/server"
	"abbaytv/portal/internal/source"
	"abbaytv/portal/internal/store"
)

func serverCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	contentFlags(fs, cfg)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database holding contact messages (env: PORTAL_DB_PATH)")
	fs.StringVar(&cfg.ServerHost, "host", cfg.ServerHost,
		"Host to bind the server to (env: PORTAL_HOST)")
	fs.IntVar(&cfg.ServerPort, "port", cfg.ServerPort,
		"Port to listen on (env: PORTAL_PORT)")
	fs.StringVar(&cfg.APIKey, "api-key", cfg.APIKey,
		"Key required by admin routes, empty disables the check (env: PORTAL_API_KEY)")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval,
		"Interval between content reloads, 0 disables (env: PORTAL_REFRESH_INTERVAL)")
	fs.IntVar(&cfg.ContactRatePerMinute, "contact-rate", cfg.ContactRatePerMinute,
		"Contact submissions allowed per client per minute, 0 disables (env: PORTAL_CONTACT_RATE)")
	applyLevel := logLevelFlag(fs, cfg)
	fs.Parse(args)
	applyLevel()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loader, err := source.NewLoader(cfg.ContentOrigin, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create content loader: %w", err)
	}

	db, err := database.NewDB(database.NewConfig(cfg.DBPath))
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx, cancel := signalContext()
	defer cancel()

	ctrl := controller.New(loader, store.New(), cfg.PageSize)

	// the server keeps serving empty lists if the first load fails
	loadCtx, cancelLoad := withTimeout(ctx, cfg.RequestTimeout)
	if err := ctrl.LoadPage(loadCtx, controller.PageIndex); err != nil {
		log.Warn().Err(err).Msg("Initial content load failed")
	}
	cancelLoad()

	go ctrl.StartAutoRefresh(ctx, controller.PageIndex, cfg.RefreshInterval)

	h, stop := server.NewHandler(ctrl, contact.NewRepository(db.DB), log.Logger, server.Options{
		APIKey:               cfg.APIKey,
		ContactRatePerMinute: cfg.ContactRatePerMinute,
		RefreshDebounce:      cfg.SearchDebounce,
		RefreshTimeout:       cfg.RequestTimeout,
	})
	defer stop()

	return server.RunServer(ctx, h, cfg.ListenAddr(), log.Logger)
}
