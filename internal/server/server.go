package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/server/api"
)

// Options configures the HTTP API.
type Options struct {
	APIKey               string
	ContactRatePerMinute int
	RefreshDebounce      time.Duration
	RefreshTimeout       time.Duration
}

// apiKeyMiddleware checks for the X-API-Key header and validates it against the provided key.
// If key is empty, it allows all requests.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			reqApiKey := r.Header.Get("X-API-Key")
			if reqApiKey == "" {
				http.Error(w, "API key required", http.StatusUnauthorized)
				return
			}

			if reqApiKey != apiKey {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewHandler builds the routes and middleware chain. The returned stop
// function drops any pending debounced refresh.
func NewHandler(ctrl *controller.Controller, contacts api.ContactRepository, logger zerolog.Logger, opts Options) (http.Handler, func()) {
	collections := api.NewCollectionsHandler(ctrl)
	home := api.NewHomeHandler(ctrl)
	contactHandler := api.NewContactHandler(contacts, opts.ContactRatePerMinute)
	refresh := api.NewRefreshHandler(ctrl, opts.RefreshDebounce, opts.RefreshTimeout)

	admin := apiKeyMiddleware(opts.APIKey)
	if opts.APIKey != "" {
		logger.Info().Msg("API key authentication enabled for admin routes")
	} else {
		logger.Info().Msg("API key authentication disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/collections/{name}", collections.GetCollection)
	mux.HandleFunc("GET /v1/collections/{name}/{id}", collections.GetItem)
	mux.HandleFunc("GET /v1/home", home.GetHome)
	mux.HandleFunc("POST /v1/contact", contactHandler.PostContact)
	mux.Handle("GET /v1/contact-messages", admin(http.HandlerFunc(contactHandler.ExportMessages)))
	mux.Handle("POST /v1/refresh", admin(http.HandlerFunc(refresh.PostRefresh)))
	mux.HandleFunc("GET /health", healthCheckHandler(ctrl))

	// Set up middleware chain for logging and request tracking
	h := hlog.NewHandler(logger)(mux)
	h = hlog.MethodHandler("method")(h)
	h = hlog.URLHandler("url")(h)
	h = hlog.RemoteAddrHandler("remote_addr")(h)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RequestIDHandler("req_id", "Request-Id")(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		idReq, _ := hlog.IDFromRequest(r)

		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("req_id", idReq.String()).
			Msg("HTTP Request")
	})(h)

	return h, refresh.Stop
}

// RunServer serves h until ctx is done or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func RunServer(ctx context.Context, h http.Handler, listenAddr string, logger zerolog.Logger) error {
	logger = logger.With().Str("service", "portal-api").Logger()

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", listenAddr).Msg("API Server starting")
		err := httpServer.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErr:
		logger.Error().Err(err).Msg("Server failed to start")
		return err

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	case <-ctx.Done():
		logger.Info().Msg("Context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
		if err := httpServer.Close(); err != nil {
			logger.Error().Err(err).Msg("HTTP server force close error")
		}
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
	if err := <-serverErr; err != nil {
		logger.Error().Err(err).Msg("ListenAndServe error during shutdown")
	}

	logger.Info().Msg("Server exiting.")
	return nil
}

// healthCheckHandler reports 200 once any collection has been loaded and 503
// before that.
func healthCheckHandler(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := hlog.FromRequest(r)
		log.Debug().Msg("Health check request received")

		status, body := http.StatusServiceUnavailable, "LOADING"
		for _, coll := range controller.PageIndex.Collections() {
			if _, ok := ctrl.Store().LoadedAt(coll); ok {
				status, body = http.StatusOK, "OK"
				break
			}
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		n, err := w.Write([]byte(body))
		if err != nil {
			log.Error().Err(err).Msg("Error writing health check response")
		} else {
			log.Debug().Int("bytes_written", n).Msg("Health check response sent")
		}
	}
}
