package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/config"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/metrics"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memoryRecordStore is an in-memory store for exercising the full router.
type memoryRecordStore struct {
	directory    []domain.StoreDirectoryEntry
	catalog      []domain.CatalogEntry
	observations []domain.PriceObservation
}

func (s *memoryRecordStore) ReadStoreDirectory(ctx context.Context) ([]domain.StoreDirectoryEntry, error) {
	return s.directory, nil
}

func (s *memoryRecordStore) ReadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.catalog, nil
}

func (s *memoryRecordStore) ReadObservations(ctx context.Context) ([]domain.PriceObservation, error) {
	return s.observations, nil
}

func (s *memoryRecordStore) AppendCatalog(ctx context.Context, entries []domain.CatalogEntry) error {
	s.catalog = append(s.catalog, entries...)
	return nil
}

func (s *memoryRecordStore) AppendObservations(ctx context.Context, rows []domain.PriceObservation) error {
	s.observations = append(s.observations, rows...)
	return nil
}

func (s *memoryRecordStore) ReplaceObservations(ctx context.Context, rows []domain.PriceObservation) error {
	s.observations = rows
	return nil
}

// stubExtractor returns a canned receipt regardless of input.
type stubExtractor struct {
	receipt *domain.ExtractedReceipt
	err     error
}

func (e *stubExtractor) Extract(ctx context.Context, image []byte, contentType string, knownNames []string) (*domain.ExtractedReceipt, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.receipt, nil
}

func (e *stubExtractor) Close() error { return nil }

// setupTestRouter wires a full router over an in-memory store
func setupTestRouter(store *memoryRecordStore, extractor domain.Extractor) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}

	reg := metrics.NewRegistry()
	ingestion := usecase.NewIngestionService(store)
	ranking := usecase.NewRankingService(store, nil, nil, nil, usecase.RankingConfig{})
	handler := NewHandler(ingestion, ranking, extractor, store, reg)

	return SetupRouter(cfg, handler, reg)
}

func seededStore() *memoryRecordStore {
	return &memoryRecordStore{
		directory: []domain.StoreDirectoryEntry{
			{TaxID: "01234567890", Name: "ESSELUNGA", Address: "VIA ROMA 1, VERONA"},
		},
		catalog: []domain.CatalogEntry{
			{ProductID: "a1b2c3d4", NormalizedName: "LATTE INTERO", Brand: "GRANAROLO", Category: "LATTICINI", NetContentAmount: 1, NetContentUnit: domain.UnitLiter},
		},
		observations: []domain.PriceObservation{
			{Date: "2026-08-20", StoreName: "ESSELUNGA", StoreAddress: "VIA ROMA 1, VERONA", RawDescription: "LATTE INT 1L", LineTotal: 1.49, UnitPrice: 1.49, Quantity: 1, ProductID: "a1b2c3d4"},
		},
	}
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(seededStore(), nil)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", response["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(seededStore(), nil)

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestIngestReceiptEndpoint(t *testing.T) {
	t.Run("persists observations and reports new products", func(t *testing.T) {
		store := seededStore()
		router := setupTestRouter(store, nil)

		body := `{
			"tax_id": "01234567890",
			"address": "VIA ROMA 1, VERONA",
			"date": "2026-08-30",
			"items": [
				{"raw_name": "LATTE INT 1L", "unit_price": 1.55, "quantity": 1, "normalized_name": "LATTE INTERO"},
				{"raw_name": "BISC FROLLINI", "unit_price": 2.10, "quantity": 2, "normalized_name": "BISCOTTI FROLLINI"}
			]
		}`

		req, _ := http.NewRequest("POST", "/api/v1/receipts", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["store_name"] != "ESSELUNGA" {
			t.Errorf("store_name = %v, want ESSELUNGA", response["store_name"])
		}
		if response["observations"] != float64(2) {
			t.Errorf("observations = %v, want 2", response["observations"])
		}
		// BISCOTTI FROLLINI is new; LATTE INTERO already exists.
		if response["new_products"] != float64(1) {
			t.Errorf("new_products = %v, want 1", response["new_products"])
		}
		if len(store.observations) != 3 {
			t.Errorf("stored observations = %d, want 3", len(store.observations))
		}
	})

	t.Run("rejects a receipt without items", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		req, _ := http.NewRequest("POST", "/api/v1/receipts", strings.NewReader(`{"tax_id": "01234567890"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		req, _ := http.NewRequest("POST", "/api/v1/receipts", strings.NewReader(`{not json`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestCompareOffersEndpoint(t *testing.T) {
	t.Run("returns ranked offers", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		req, _ := http.NewRequest("GET", "/api/v1/offers?q=latte", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			Query  string         `json:"query"`
			Offers []domain.Offer `json:"offers"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Offers) != 1 {
			t.Fatalf("offers = %d, want 1", len(response.Offers))
		}
		if response.Offers[0].NormalizedName != "LATTE INTERO" {
			t.Errorf("offer name = %s, want LATTE INTERO", response.Offers[0].NormalizedName)
		}
	})

	t.Run("missing query is a bad request", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		req, _ := http.NewRequest("GET", "/api/v1/offers", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("no matches is an explicit 404", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		req, _ := http.NewRequest("GET", "/api/v1/offers?q=caviale", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestDedupeEndpoint(t *testing.T) {
	store := seededStore()
	// Same date, store, description and price: a duplicate row.
	store.observations = append(store.observations, store.observations[0])
	router := setupTestRouter(store, nil)

	req, _ := http.NewRequest("POST", "/api/v1/maintenance/dedupe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response["removed"] != float64(1) {
		t.Errorf("removed = %v, want 1", response["removed"])
	}
	if len(store.observations) != 1 {
		t.Errorf("stored observations = %d, want 1", len(store.observations))
	}
}

func TestScanReceiptEndpoint(t *testing.T) {
	extracted := &domain.ExtractedReceipt{
		TaxID:   "01234567890",
		Address: "VIA ROMA 1, VERONA",
		Date:    "2026-08-30",
		Items: []domain.ExtractedLineItem{
			{RawName: "LATTE INT 1L", UnitPrice: 1.49, Quantity: 1, NormalizedName: "LATTE INTERO"},
		},
	}

	scanRequest := func(t *testing.T) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("image", "receipt.jpg")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		part.Write([]byte("not-a-real-jpeg"))
		writer.Close()

		req, _ := http.NewRequest("POST", "/api/v1/receipts/scan", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	t.Run("returns the extraction", func(t *testing.T) {
		router := setupTestRouter(seededStore(), &stubExtractor{receipt: extracted})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, scanRequest(t))

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response domain.ExtractedReceipt
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response.TaxID != "01234567890" {
			t.Errorf("tax_id = %s, want 01234567890", response.TaxID)
		}
		if len(response.Items) != 1 {
			t.Errorf("items = %d, want 1", len(response.Items))
		}
	})

	t.Run("extraction failure is unprocessable", func(t *testing.T) {
		router := setupTestRouter(seededStore(), &stubExtractor{err: domain.ErrExtractionFailed})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, scanRequest(t))

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("missing image field is a bad request", func(t *testing.T) {
		router := setupTestRouter(seededStore(), &stubExtractor{receipt: extracted})

		req, _ := http.NewRequest("POST", "/api/v1/receipts/scan", strings.NewReader(""))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("no extractor configured", func(t *testing.T) {
		router := setupTestRouter(seededStore(), nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, scanRequest(t))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}
