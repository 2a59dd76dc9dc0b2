package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/config"
)

func init() {
	dotEnvErr := config.LoadDotEnv(config.GetEnvString(config.EnvKey("ENV_FILE"), ".env"))

	if config.GetEnvBool(config.EnvKey("LOG_JSON"), false) {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	if dotEnvErr != nil {
		log.Warn().Err(dotEnvErr).Msg("Ignoring environment file")
	}
}

func usage() {
	fmt.Println("Usage: portal [command] [options]")
	fmt.Println("Commands: server, browse, add-news, import-feed")
	fmt.Println("\nFor command-specific options, use: portal [command] -h")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()

	var err error
	switch os.Args[1] {
	case "server":
		err = serverCommand(cfg, os.Args[2:])
	case "browse":
		err = browseCommand(cfg, os.Args[2:])
	case "add-news":
		err = addNewsCommand(cfg, os.Args[2:])
	case "import-feed":
		err = importFeedCommand(cfg, os.Args[2:])
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}

// logLevelFlag registers -log-level and returns a function applying it.
func logLevelFlag(fs *flag.FlagSet, cfg *config.Config) func() {
	var level string
	fs.StringVar(&level, "log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: PORTAL_LOG_LEVEL)")

	return func() {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			cfg.LogLevel = parsed
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)
	}
}

// contentFlags registers the options every content-reading command shares.
func contentFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.ContentOrigin, "content", cfg.ContentOrigin,
		"Directory or http(s) base URL holding the collection JSON files (env: PORTAL_CONTENT_ORIGIN)")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout,
		"Timeout per collection fetch (env: PORTAL_REQUEST_TIMEOUT)")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize,
		"Items revealed per page (env: PORTAL_PAGE_SIZE)")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
