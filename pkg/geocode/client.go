// Package geocode resolves free-text place descriptions to geographic
// coordinates via the Google Geocoding API, with in-process memoization.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"
)

// Client geocodes a single free-text address or place description.
type Client interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Result holds the geocoding output for one input string.
type Result struct {
	Latitude         float64
	Longitude        float64
	Source           string // "google" or "shapefile"
	Quality          string // "rooftop", "range", "centroid", "approximate"
	Matched          bool
	FormattedAddress string
	// Viewport is the recommended display bounds for the match, when the
	// API provides one. Nil for unmatched results.
	Viewport *geom.Bounds
}

// Option configures the Google geocoder.
type Option func(*googleClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *googleClient) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(g *googleClient) {
		g.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(g *googleClient) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type googleClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewGoogle creates a Client backed by the Google Geocoding API.
// The key is required; requests are rate limited to 10 req/s by default.
func NewGoogle(apiKey string, opts ...Option) Client {
	g := &googleClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    googleGeocodeURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
