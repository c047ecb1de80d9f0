package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains runtime configuration required by the service.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// WebhookSecret guards POST /v1/dispatch/events. Empty means the
	// endpoint is open; main logs this at startup so an unsecured
	// deployment is a visible choice, not an accident.
	WebhookSecret string

	// StrictValidation selects the validation policy: true rejects
	// payloads with missing required fields or unknown event types,
	// false logs them and accepts the event anyway.
	StrictValidation bool

	// GeocodingAPIKey enables the outbound geocoding lookup. Empty
	// disables geocoding entirely (events are stored without a pin).
	GeocodingAPIKey string

	// GeocodingTimeout bounds each outbound geocoding request.
	GeocodingTimeout time.Duration

	// AllowedOrigins is the CORS allow-list for the dashboard.
	AllowedOrigins []string

	// DatabaseURL, when set, selects the Postgres-backed event store.
	// Empty keeps events and idempotency keys in process memory.
	DatabaseURL string

	// IdempotencyTTL and IdempotencyMaxKeys bound the in-memory
	// idempotency set so a long-lived process does not grow without limit.
	IdempotencyTTL     time.Duration
	IdempotencyMaxKeys int

	LogLevel  string
	LogFormat string
}

const (
	defaultPort               = 8787
	defaultGeocodingTimeout   = 5 * time.Second
	defaultIdempotencyTTL     = 24 * time.Hour
	defaultIdempotencyMaxKeys = 100_000
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
)

// defaultAllowedOrigins matches the dashboard's local development hosts.
var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() (Config, error) {
	cfg := Config{
		Port:               defaultPort,
		WebhookSecret:      strings.TrimSpace(os.Getenv("DISPATCH_WEBHOOK_SECRET")),
		GeocodingAPIKey:    strings.TrimSpace(os.Getenv("GOOGLE_GEOCODING_API_KEY")),
		GeocodingTimeout:   defaultGeocodingTimeout,
		AllowedOrigins:     defaultAllowedOrigins,
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		IdempotencyTTL:     defaultIdempotencyTTL,
		IdempotencyMaxKeys: defaultIdempotencyMaxKeys,
		LogLevel:           defaultLogLevel,
		LogFormat:          defaultLogFormat,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DISPATCH_STRICT_VALIDATION"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DISPATCH_STRICT_VALIDATION %q", v)
		}
		cfg.StrictValidation = strict
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			return Config{}, fmt.Errorf("invalid ALLOWED_ORIGINS %q", v)
		}
		cfg.AllowedOrigins = origins
	}

	if v := os.Getenv("GEOCODING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid GEOCODING_TIMEOUT %q", v)
		}
		cfg.GeocodingTimeout = d
	}

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_TTL %q", v)
		}
		cfg.IdempotencyTTL = d
	}

	if v := os.Getenv("IDEMPOTENCY_MAX_KEYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid IDEMPOTENCY_MAX_KEYS %q", v)
		}
		cfg.IdempotencyMaxKeys = n
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}

	return cfg, nil
}
