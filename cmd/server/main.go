package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/config"
	httpDelivery "github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/delivery/http"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/cache"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/gemini"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/geo"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/metrics"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/sheets"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/usecase"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting pricescan api",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type)

	ctx := context.Background()

	// Spreadsheet storage backs all three logical tables.
	store, err := sheets.NewStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile, sheets.TableNames{
		Directory:    cfg.Sheets.DirectoryTab,
		Catalog:      cfg.Sheets.CatalogTab,
		Observations: cfg.Sheets.ObservationsTab,
	})
	if err != nil {
		slog.Error("failed to open spreadsheet store", "error", err)
		os.Exit(1)
	}

	// Extraction is optional: without an API key the scan endpoint reports
	// itself unavailable and manual ingestion still works.
	var extractor domain.Extractor
	if cfg.Gemini.APIKey != "" {
		g, err := gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			slog.Error("failed to create gemini extractor", "error", err)
			os.Exit(1)
		}
		defer g.Close()
		extractor = g
		slog.Info("gemini extraction enabled", "model", cfg.Gemini.Model)
	} else {
		slog.Warn("no gemini api key configured, receipt scanning disabled")
	}

	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "bolt":
		boltCache, err := cache.NewBoltCache(cfg.Cache.Path)
		if err != nil {
			slog.Error("failed to open bolt cache", "path", cfg.Cache.Path, "error", err)
			os.Exit(1)
		}
		defer boltCache.Close()
		cacheRepo = boltCache
	default:
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		cacheRepo = memCache
	}

	var geocoder domain.Geocoder
	var router domain.Router
	if cfg.Geo.Enabled {
		geocoder = geo.NewNominatimClient(cfg.Geo.NominatimURL, cfg.Geo.UserAgent, cfg.Geo.RequestsPerSecond)
		router = geo.NewOSRMClient(cfg.Geo.OSRMURL)
		slog.Info("distance enrichment enabled",
			"nominatim", cfg.Geo.NominatimURL,
			"osrm", cfg.Geo.OSRMURL)
	} else {
		slog.Info("distance enrichment disabled")
	}

	// Usecase layer
	ingestion := usecase.NewIngestionService(store)
	ranking := usecase.NewRankingService(store, geocoder, router, cacheRepo, usecase.RankingConfig{
		GeocodeCacheTTL: cfg.Cache.TTL,
		RouteTimeout:    cfg.Geo.RouteTimeout,
	})

	// Delivery layer
	reg := metrics.NewRegistry()
	handler := httpDelivery.NewHandler(ingestion, ranking, extractor, store, reg)
	engine := httpDelivery.SetupRouter(cfg, handler, reg)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("server listening", "addr", addr)

	if err := engine.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
