// Package geocode resolves free-text addresses to coordinates through the
// Google Geocoding API.
//
// Resolution is strictly best-effort: every failure mode (missing API key,
// network error, non-2xx, non-OK status, empty results, missing geometry,
// open circuit) produces a nil pin and a log line, never an error that could
// fail the webhook request that triggered it.
package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client performs geocoding lookups. The zero value is not usable; build
// one with New.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*models.LocationPin]
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint. Tests point this at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a geocoding client. An empty apiKey yields a client whose
// lookups always report "no pin available" without calling upstream.
func New(apiKey string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}

	// The breaker sheds load from a failing upstream; since lookups are
	// best-effort an open circuit simply means no pins for a while.
	c.cb = gobreaker.NewCircuitBreaker[*models.LocationPin](gobreaker.Settings{
		Name:        "geocoding-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return c
}

// geocodeResponse is the subset of the upstream payload the client reads.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         *struct {
			Location *struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves addr to a pin, or nil when no pin is available.
func (c *Client) Geocode(ctx context.Context, addr string) *models.LocationPin {
	if addr == "" {
		return nil
	}
	if c.apiKey == "" {
		c.log.Warn().Msg("geocoding skipped: no API key configured")
		return nil
	}

	pin, err := c.cb.Execute(func() (*models.LocationPin, error) {
		return c.lookup(ctx, addr)
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("geocoding lookup failed")
		return nil
	}
	return pin
}

// lookup performs one upstream request. Returned errors drive the breaker's
// failure counts and are never surfaced past Geocode.
func (c *Client) lookup(ctx context.Context, addr string) (*models.LocationPin, error) {
	q := url.Values{}
	q.Set("address", addr)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &upstreamError{status: resp.StatusCode}
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, &noResultsError{status: body.Status}
	}

	best := body.Results[0]
	if best.Geometry == nil || best.Geometry.Location == nil {
		return nil, &noResultsError{status: "missing geometry"}
	}

	return &models.LocationPin{
		Lat:              best.Geometry.Location.Lat,
		Lng:              best.Geometry.Location.Lng,
		FormattedAddress: best.FormattedAddress,
	}, nil
}

type upstreamError struct{ status int }

func (e *upstreamError) Error() string {
	return "geocoding API returned HTTP " + strconv.Itoa(e.status)
}

type noResultsError struct{ status string }

func (e *noResultsError) Error() string {
	return "geocoding returned no usable result: " + e.status
}
