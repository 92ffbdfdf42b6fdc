package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

type fakeGeocoder struct {
	coords map[string]domain.Coordinates
	calls  int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.calls++
	if c, ok := g.coords[address]; ok {
		return c, nil
	}
	return domain.Coordinates{}, domain.ErrGeocodeFailed
}

type fakeRouter struct {
	distances map[domain.Coordinates]float64
	err       error
}

func (r *fakeRouter) RoadDistanceKm(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.distances[to], nil
}

func rankingFixtures() ([]domain.PriceObservation, []domain.CatalogEntry) {
	catalog := []domain.CatalogEntry{
		{ProductID: "moz1", NormalizedName: "MOZZARELLA 125G", Category: "LATTICINI", NetContentAmount: 0.125, NetContentUnit: domain.UnitKilogram},
		{ProductID: "moz2", NormalizedName: "MOZZARELLA BUFALA 200G", Brand: "GRANAROLO", NetContentAmount: 0.2, NetContentUnit: domain.UnitKilogram},
		{ProductID: "spz1", NormalizedName: "SPUGNA CUCINA", NetContentAmount: 1, NetContentUnit: domain.UnitUnknown},
	}
	observations := []domain.PriceObservation{
		{Date: "2026-08-01", StoreName: "ESSELUNGA", StoreAddress: "VIA ROMA 1", RawDescription: "MOZZARELLA", UnitPrice: 1.50, Quantity: 1, ProductID: "moz1"},
		{Date: "2026-08-20", StoreName: "ESSELUNGA", StoreAddress: "VIA ROMA 1", RawDescription: "MOZZARELLA", UnitPrice: 1.19, Quantity: 1, ProductID: "moz1"},
		{Date: "2026-08-15", StoreName: "LIDL", StoreAddress: "VIA TRENTO 3", RawDescription: "MOZZ BUFALA", UnitPrice: 2.10, Quantity: 1, ProductID: "moz2"},
		{Date: "2026-08-10", StoreName: "EUROSPAR", StoreAddress: "CORSO MILANO 8", RawDescription: "SPUGNA", UnitPrice: 0.99, Quantity: 1, ProductID: "spz1"},
	}
	return observations, catalog
}

func TestRankOffers(t *testing.T) {
	observations, catalog := rankingFixtures()

	t.Run("comparable price divides by net content", func(t *testing.T) {
		entry := domain.CatalogEntry{NetContentAmount: 0.5, NetContentUnit: domain.UnitKilogram}
		price, unit := comparablePrice(2.00, entry)
		if price != 4.00 || unit != domain.UnitKilogram {
			t.Errorf("comparablePrice = %v %q, want 4.00 KG", price, unit)
		}
	})

	t.Run("non comparable entries rank by raw unit price", func(t *testing.T) {
		entry := domain.CatalogEntry{NetContentAmount: 1, NetContentUnit: domain.UnitUnknown}
		price, unit := comparablePrice(0.99, entry)
		if price != 0.99 || unit != domain.UnitPiece {
			t.Errorf("comparablePrice = %v %q, want 0.99 PZ", price, unit)
		}
	})

	t.Run("recency collapse keeps latest observation per outlet", func(t *testing.T) {
		offers := rankOffers("MOZZARELLA", observations, catalog)
		if len(offers) != 2 {
			t.Fatalf("offers = %d, want 2 (one per outlet)", len(offers))
		}
		for _, offer := range offers {
			if offer.StoreName == "ESSELUNGA" {
				if offer.UnitPrice != 1.19 || offer.Date != "2026-08-20" {
					t.Errorf("ESSELUNGA offer = %v on %s, want latest 1.19 on 2026-08-20", offer.UnitPrice, offer.Date)
				}
			}
		}
	})

	t.Run("filter spans name, brand and category", func(t *testing.T) {
		if got := rankOffers("granarolo", observations, catalog); len(got) != 1 {
			t.Errorf("brand query matched %d offers, want 1", len(got))
		}
		if got := rankOffers("latticini", observations, catalog); len(got) != 1 {
			t.Errorf("category query matched %d offers, want 1", len(got))
		}
	})
}

func TestRankingServiceCompare(t *testing.T) {
	ctx := context.Background()
	observations, catalog := rankingFixtures()

	t.Run("no results is an explicit outcome", func(t *testing.T) {
		store := &fakeRecordStore{observations: observations, catalog: catalog}
		svc := NewRankingService(store, nil, nil, nil, RankingConfig{})
		_, err := svc.Compare(ctx, domain.ComparisonQuery{Text: "caviale"})
		if !errors.Is(err, domain.ErrNoResults) {
			t.Errorf("error = %v, want ErrNoResults", err)
		}
	})

	t.Run("sorted ascending by comparable price", func(t *testing.T) {
		store := &fakeRecordStore{observations: observations, catalog: catalog}
		svc := NewRankingService(store, nil, nil, nil, RankingConfig{})
		offers, err := svc.Compare(ctx, domain.ComparisonQuery{Text: "mozzarella"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// ESSELUNGA: 1.19/0.125 = 9.52/KG; LIDL: 2.10/0.2 = 10.50/KG
		if offers[0].StoreName != "ESSELUNGA" {
			t.Errorf("best offer at %q, want ESSELUNGA", offers[0].StoreName)
		}
		for i := 1; i < len(offers); i++ {
			if offers[i].ComparablePrice < offers[i-1].ComparablePrice {
				t.Error("offers not sorted ascending by comparable price")
			}
		}
	})

	t.Run("distance enrichment and tie break", func(t *testing.T) {
		// Same price at two outlets; nearer one must rank first.
		obs := []domain.PriceObservation{
			{Date: "2026-08-01", StoreName: "A", StoreAddress: "ADDR A", UnitPrice: 1.00, Quantity: 1, ProductID: "moz1"},
			{Date: "2026-08-01", StoreName: "B", StoreAddress: "ADDR B", UnitPrice: 1.00, Quantity: 1, ProductID: "moz1"},
		}
		near := domain.Coordinates{Latitude: 45.1, Longitude: 11.1}
		far := domain.Coordinates{Latitude: 46.0, Longitude: 12.0}
		store := &fakeRecordStore{observations: obs, catalog: catalog}
		geocoder := &fakeGeocoder{coords: map[string]domain.Coordinates{"ADDR A": far, "ADDR B": near}}
		router := &fakeRouter{distances: map[domain.Coordinates]float64{far: 25.0, near: 2.5}}
		svc := NewRankingService(store, geocoder, router, nil, RankingConfig{RouteTimeout: time.Second})

		offers, err := svc.Compare(ctx, domain.ComparisonQuery{Text: "mozzarella", HasOrigin: true, Latitude: 45, Longitude: 11})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if offers[0].StoreName != "B" {
			t.Errorf("nearest outlet ranked %q first, want B", offers[0].StoreName)
		}
		if offers[0].DistanceKm == nil || *offers[0].DistanceKm != 2.5 {
			t.Errorf("DistanceKm = %v, want 2.5", offers[0].DistanceKm)
		}
	})

	t.Run("geocode failure keeps the row and drops distance only", func(t *testing.T) {
		store := &fakeRecordStore{observations: observations, catalog: catalog}
		geocoder := &fakeGeocoder{coords: map[string]domain.Coordinates{}} // everything fails
		router := &fakeRouter{}
		svc := NewRankingService(store, geocoder, router, nil, RankingConfig{})

		offers, err := svc.Compare(ctx, domain.ComparisonQuery{Text: "mozzarella", HasOrigin: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(offers) != 2 {
			t.Fatalf("offers = %d, want 2 despite geocode failures", len(offers))
		}
		for _, offer := range offers {
			if offer.DistanceKm != nil {
				t.Errorf("DistanceKm = %v, want nil", *offer.DistanceKm)
			}
		}
	})

	t.Run("unknown distance sorts last on price ties", func(t *testing.T) {
		d := 5.0
		offers := []domain.Offer{
			{StoreName: "NOGEOCODE", ComparablePrice: 1.0},
			{StoreName: "NEAR", ComparablePrice: 1.0, DistanceKm: &d},
		}
		sortOffers(offers)
		if offers[0].StoreName != "NEAR" {
			t.Errorf("first = %q, want NEAR", offers[0].StoreName)
		}
	})

	t.Run("blank query rejected", func(t *testing.T) {
		store := &fakeRecordStore{}
		svc := NewRankingService(store, nil, nil, nil, RankingConfig{})
		if _, err := svc.Compare(ctx, domain.ComparisonQuery{Text: "   "}); err == nil {
			t.Error("expected error for blank query")
		}
	})
}

func TestDecodeCachedCoordinates(t *testing.T) {
	t.Run("typed value", func(t *testing.T) {
		want := domain.Coordinates{Latitude: 45.4, Longitude: 10.9}
		got := decodeCachedCoordinates(want)
		if got == nil || *got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("json round-tripped map", func(t *testing.T) {
		value := map[string]interface{}{"latitude": 45.4, "longitude": 10.9}
		got := decodeCachedCoordinates(value)
		if got == nil || math.Abs(got.Latitude-45.4) > 1e-9 {
			t.Errorf("got %v, want latitude 45.4", got)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if got := decodeCachedCoordinates("nope"); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}
