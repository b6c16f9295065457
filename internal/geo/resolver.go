package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/circleworks/beacon/internal/types"
)

var (
	// ErrNotFound means the geocoding provider returned no match for the query.
	ErrNotFound = errors.New("place not found")
	// ErrTransient means the lookup failed for a reason worth retrying
	// (network failure, provider error, caller timeout). The resolver never
	// retries on its own; that decision belongs to the caller.
	ErrTransient = errors.New("geocoding service unavailable")
	// ErrEmptyQuery means the query was empty or whitespace-only. Callers
	// treat this as "clear the filter", not a lookup failure.
	ErrEmptyQuery = errors.New("empty geocoding query")
)

// Resolver turns a free-text place name into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, city string) (*types.Place, error)
}

// httpDoer is the subset of http.Client the Nominatim client needs.
// The abstraction enables testing without a live geocoding provider.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface check
var _ Resolver = (*NominatimClient)(nil)

// NominatimClient resolves place names through a Nominatim-compatible
// search endpoint.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    httpDoer
}

// NewNominatimClient creates a resolver against the given base URL.
// Nominatim's usage policy requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, client *http.Client) *NominatimClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
	}
}

// searchResult mirrors one entry of the provider's response. Coordinates
// arrive as strings and are parsed as floats.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve looks up the city and returns the provider's first match.
// Returns ErrEmptyQuery for blank input, ErrNotFound when the provider
// has no match, and ErrTransient for network or provider failures.
func (c *NominatimClient) Resolve(ctx context.Context, city string) (*types.Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyQuery
	}

	endpoint := fmt.Sprintf("%s/search?format=json&q=%s", c.baseURL, url.QueryEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransient, err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, city)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse lat %q: %v", ErrTransient, first.Lat, err)
	}
	lng, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parse lon %q: %v", ErrTransient, first.Lon, err)
	}

	return &types.Place{
		DisplayName: first.DisplayName,
		Lat:         lat,
		Lng:         lng,
	}, nil
}

// NormalizeCity canonicalises a free-text city for cache keying: trimmed,
// case-folded, inner whitespace collapsed. "  New  York " and "new york"
// hit the same cache entry.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
