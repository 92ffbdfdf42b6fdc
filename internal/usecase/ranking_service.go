package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// RankingConfig holds configuration for the ranking service
type RankingConfig struct {
	GeocodeCacheTTL time.Duration
	RouteTimeout    time.Duration
}

// RankingService answers "where is product X cheapest right now" by joining
// price observations with the catalog, collapsing each outlet to its most
// recent observation and ranking by comparable price. Distance is an optional
// enrichment: a store that cannot be geolocated keeps its price rank and only
// loses distance context.
type RankingService struct {
	store           domain.RecordStore
	geocoder        domain.Geocoder
	router          domain.Router
	cache           domain.CacheRepository
	geocodeCacheTTL time.Duration
	routeTimeout    time.Duration
}

// NewRankingService creates a ranking service. geocoder, router and cache may
// be nil; distance enrichment is then skipped entirely.
func NewRankingService(
	store domain.RecordStore,
	geocoder domain.Geocoder,
	router domain.Router,
	cache domain.CacheRepository,
	config RankingConfig,
) *RankingService {
	ttl := config.GeocodeCacheTTL
	if ttl == 0 {
		ttl = 720 * time.Hour
	}
	timeout := config.RouteTimeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &RankingService{
		store:           store,
		geocoder:        geocoder,
		router:          router,
		cache:           cache,
		geocodeCacheTTL: ttl,
		routeTimeout:    timeout,
	}
}

// Compare runs a comparison query against the full observation history.
// Returns domain.ErrNoResults when nothing matches, so callers can tell an
// empty outcome apart from a failed read.
func (s *RankingService) Compare(ctx context.Context, query domain.ComparisonQuery) ([]domain.Offer, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, domain.ErrInvalidReceipt
	}

	observations, err := s.store.ReadObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading observations: %w", err)
	}
	catalog, err := s.store.ReadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	offers := rankOffers(query.Text, observations, catalog)
	if len(offers) == 0 {
		return nil, domain.ErrNoResults
	}

	if query.HasOrigin && s.geocoder != nil && s.router != nil {
		s.enrichDistances(ctx, query, offers)
	}

	sortOffers(offers)
	return offers, nil
}

// rankOffers filters, joins and recency-collapses. Pure with respect to its
// inputs; ordering is finalized by sortOffers after distance enrichment.
func rankOffers(queryText string, observations []domain.PriceObservation, catalog []domain.CatalogEntry) []domain.Offer {
	byID := make(map[string]domain.CatalogEntry, len(catalog))
	for _, entry := range catalog {
		byID[entry.ProductID] = entry
	}

	needle := strings.ToUpper(strings.TrimSpace(queryText))

	// Most recent matching observation per outlet. The comparison is "current
	// price per outlet", not full history.
	type outletKey struct{ name, address string }
	latest := make(map[outletKey]domain.Offer)
	latestDate := make(map[outletKey]time.Time)

	for _, row := range observations {
		entry, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		if !matchesQuery(needle, entry) {
			continue
		}

		offer := domain.Offer{
			ProductID:        entry.ProductID,
			NormalizedName:   entry.NormalizedName,
			Brand:            entry.Brand,
			StoreName:        row.StoreName,
			StoreAddress:     row.StoreAddress,
			Date:             row.Date,
			UnitPrice:        row.UnitPrice,
			IsDiscounted:     row.IsDiscounted,
			NetContentAmount: entry.NetContentAmount,
		}
		offer.ComparablePrice, offer.ComparableUnit = comparablePrice(row.UnitPrice, entry)

		key := outletKey{row.StoreName, row.StoreAddress}
		date := parseObservationDate(row.Date)
		if prev, seen := latestDate[key]; !seen || !date.Before(prev) {
			latest[key] = offer
			latestDate[key] = date
		}
	}

	offers := make([]domain.Offer, 0, len(latest))
	for _, offer := range latest {
		offers = append(offers, offer)
	}
	return offers
}

// matchesQuery applies the case-insensitive substring filter over the catalog
// fields a shopper would search by.
func matchesQuery(needle string, entry domain.CatalogEntry) bool {
	return strings.Contains(strings.ToUpper(entry.NormalizedName), needle) ||
		strings.Contains(strings.ToUpper(entry.Brand), needle) ||
		strings.Contains(strings.ToUpper(entry.Category), needle)
}

// comparablePrice converts a raw unit price to a cross-pack-size comparable
// value: price per KG or L when the net content is known, per piece otherwise.
func comparablePrice(unitPrice float64, entry domain.CatalogEntry) (float64, domain.Unit) {
	if entry.Comparable() {
		return unitPrice / entry.NetContentAmount, entry.NetContentUnit
	}
	return unitPrice, domain.UnitPiece
}

func parseObservationDate(raw string) time.Time {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return date
}

// sortOffers orders ascending by comparable price, ties broken by distance.
// Unknown distance sorts after any known one.
func sortOffers(offers []domain.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].ComparablePrice != offers[j].ComparablePrice {
			return offers[i].ComparablePrice < offers[j].ComparablePrice
		}
		di, dj := offers[i].DistanceKm, offers[j].DistanceKm
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
}

// enrichDistances resolves each outlet's address and attaches a road distance.
// Every failure is non-fatal: the offer just stays without distance context.
func (s *RankingService) enrichDistances(ctx context.Context, query domain.ComparisonQuery, offers []domain.Offer) {
	origin := domain.Coordinates{Latitude: query.Latitude, Longitude: query.Longitude}
	resolved := make(map[string]*domain.Coordinates) // per-query address cache

	for i := range offers {
		address := offers[i].StoreAddress
		if address == "" {
			continue
		}

		coords, cached := resolved[address]
		if !cached {
			coords = s.geocodeAddress(ctx, address)
			resolved[address] = coords
		}
		if coords == nil {
			continue
		}

		routeCtx, cancel := context.WithTimeout(ctx, s.routeTimeout)
		distance, err := s.router.RoadDistanceKm(routeCtx, origin, *coords)
		cancel()
		if err != nil {
			slog.Warn("road distance lookup failed", "address", address, "error", err)
			continue
		}
		offers[i].DistanceKm = &distance
	}
}

// geocodeAddress resolves an address through the TTL cache, falling back to
// the geocoding collaborator. Returns nil when the address cannot be resolved.
func (s *RankingService) geocodeAddress(ctx context.Context, address string) *domain.Coordinates {
	key := "geo:" + strings.ToUpper(strings.Join(strings.Fields(address), " "))

	if s.cache != nil {
		if value, err := s.cache.Get(ctx, key); err == nil {
			if coords := decodeCachedCoordinates(value); coords != nil {
				return coords
			}
		}
	}

	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		slog.Warn("geocoding failed", "address", address, "error", err)
		return nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, coords, s.geocodeCacheTTL); err != nil {
			slog.Warn("caching geocode result failed", "address", address, "error", err)
		}
	}
	return &coords
}

// decodeCachedCoordinates tolerates both typed values and the generic maps a
// JSON round-tripping cache hands back.
func decodeCachedCoordinates(value interface{}) *domain.Coordinates {
	if coords, ok := value.(domain.Coordinates); ok {
		return &coords
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var coords domain.Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil
	}
	if coords.Latitude == 0 && coords.Longitude == 0 {
		return nil
	}
	return &coords
}
