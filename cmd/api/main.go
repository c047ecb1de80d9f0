package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sentineldispatch/dispatch-ingest/internal/config"
	"github.com/sentineldispatch/dispatch-ingest/internal/geocode"
	"github.com/sentineldispatch/dispatch-ingest/internal/httpserver"
	"github.com/sentineldispatch/dispatch-ingest/internal/ingest"
	"github.com/sentineldispatch/dispatch-ingest/internal/logging"
	"github.com/sentineldispatch/dispatch-ingest/internal/store"
	"github.com/sentineldispatch/dispatch-ingest/internal/store/memory"
	"github.com/sentineldispatch/dispatch-ingest/internal/store/postgres"
)

// main boots the service: config → logging → store → pipeline → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; write plainly and exit.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// The webhook is open when no secret is configured. Useful for local
	// development, dangerous in production, so say it out loud.
	if cfg.WebhookSecret == "" {
		log.Warn().Msg("DISPATCH_WEBHOOK_SECRET not set, webhook endpoint is unauthenticated")
	}

	st, err := selectStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store initialization failed")
	}
	defer st.Close()

	geo := geocode.New(cfg.GeocodingAPIKey, cfg.GeocodingTimeout, log)
	if cfg.GeocodingAPIKey == "" {
		log.Warn().Msg("GOOGLE_GEOCODING_API_KEY not set, events will be stored without location pins")
	}

	pipe := ingest.New(st, geo, cfg.StrictValidation, log)
	router := httpserver.NewRouter(cfg, pipe, st, log)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Bool("strict_validation", cfg.StrictValidation).
			Bool("durable_store", cfg.DatabaseURL != "").
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

// selectStore picks the durable Postgres store when DATABASE_URL is set and
// the process-local store otherwise.
func selectStore(cfg config.Config) (store.EventStore, error) {
	if cfg.DatabaseURL == "" {
		return memory.New(cfg.IdempotencyMaxKeys, cfg.IdempotencyTTL), nil
	}

	pg, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
