// Package geo implements the two pure geographic collaborators: address to
// coordinates (Nominatim) and coordinate pair to road distance (OSRM). Both
// are best-effort: callers treat every failure as "distance unknown".
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// NominatimClient resolves free-text addresses against a Nominatim instance.
type NominatimClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
}

// NewNominatimClient creates a geocoding client. The public Nominatim service
// requires an identifying User-Agent and at most one request per second; the
// limiter enforces that policy regardless of instance.
func NewNominatimClient(baseURL, userAgent string, requestsPerSecond float64) *NominatimClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &NominatimClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Geocode resolves an address to coordinates. Returns domain.ErrGeocodeFailed
// when the address yields no result.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Add("q", address)
	params.Add("format", "json")
	params.Add("limit", "1")
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("%w: status %d", domain.ErrGeocodeFailed, resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: decoding response: %v", domain.ErrGeocodeFailed, err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, domain.ErrGeocodeFailed
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: malformed coordinates", domain.ErrGeocodeFailed)
	}

	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
