package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// routeTimeout bounds a single routing call; ranking must never block on a
// slow routing backend.
const routeTimeout = 3 * time.Second

// OSRMClient computes driving distances against an OSRM instance.
type OSRMClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOSRMClient creates a routing client.
func NewOSRMClient(baseURL string) *OSRMClient {
	return &OSRMClient{
		httpClient: &http.Client{Timeout: routeTimeout},
		baseURL:    baseURL,
	}
}

// RoadDistanceKm returns the driving distance between two points in
// kilometers, or domain.ErrRouteFailed when no route can be computed.
func (c *OSRMClient) RoadDistanceKm(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	// OSRM takes lon,lat pairs.
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrRouteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", domain.ErrRouteFailed, resp.StatusCode)
	}

	var route struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"` // meters
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return 0, fmt.Errorf("%w: decoding response: %v", domain.ErrRouteFailed, err)
	}
	if route.Code != "Ok" || len(route.Routes) == 0 {
		return 0, domain.ErrRouteFailed
	}

	return route.Routes[0].Distance / 1000, nil
}
