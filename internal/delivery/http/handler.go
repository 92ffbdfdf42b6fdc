package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/metrics"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/usecase"
)

// maxReceiptImageBytes bounds uploads; phone photos and scanned PDFs stay well
// under this.
const maxReceiptImageBytes = 15 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingestion *usecase.IngestionService
	ranking   *usecase.RankingService
	extractor domain.Extractor
	store     domain.RecordStore
	metrics   *metrics.Registry
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingestion *usecase.IngestionService,
	ranking *usecase.RankingService,
	extractor domain.Extractor,
	store domain.RecordStore,
	reg *metrics.Registry,
) *Handler {
	return &Handler{
		ingestion: ingestion,
		ranking:   ranking,
		extractor: extractor,
		store:     store,
		metrics:   reg,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricescan-api",
		"version": "1.0.0",
	})
}

// ScanReceipt accepts a receipt image (JPEG/PNG/HEIC/PDF) under the "image"
// form field and returns the structured extraction for client-side review.
// Nothing is persisted here; the client submits the reviewed payload to
// IngestReceipt.
func (h *Handler) ScanReceipt(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt extraction is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'image' form field"})
		return
	}
	if fileHeader.Size > maxReceiptImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	// Known catalog names steer the extractor toward existing normalizations
	// instead of inventing near-duplicate spellings.
	var knownNames []string
	if catalog, err := h.store.ReadCatalog(c.Request.Context()); err == nil {
		knownNames = make([]string, 0, len(catalog))
		for _, entry := range catalog {
			knownNames = append(knownNames, entry.NormalizedName)
		}
	}

	receipt, err := h.extractor.Extract(
		c.Request.Context(),
		image,
		fileHeader.Header.Get("Content-Type"),
		knownNames,
	)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not extract a receipt from the image"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "extraction backend unavailable"})
		return
	}

	h.metrics.ReceiptsScanned.Inc()
	c.JSON(http.StatusOK, receipt)
}

// IngestReceipt persists a reviewed extraction: one observation row per line
// item, plus catalog rows for products first seen in this receipt.
func (h *Handler) IngestReceipt(c *gin.Context) {
	var receipt domain.ExtractedReceipt
	if err := c.ShouldBindJSON(&receipt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt payload: " + err.Error()})
		return
	}

	staged, err := h.ingestion.Ingest(c.Request.Context(), &receipt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidReceipt):
			c.JSON(http.StatusBadRequest, gin.H{"error": "receipt has no line items"})
		case errors.Is(err, domain.ErrStorageFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "persistence backend unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		}
		return
	}

	h.metrics.ReceiptsIngested.Inc()
	h.metrics.ObservationRowsWritten.Add(float64(len(staged.Observations)))
	h.metrics.CatalogEntriesCreated.Add(float64(len(staged.NewProducts)))

	c.JSON(http.StatusCreated, gin.H{
		"store_name":    staged.StoreName,
		"store_address": staged.StoreAddress,
		"new_store":     staged.NewStore,
		"observations":  len(staged.Observations),
		"new_products":  len(staged.NewProducts),
	})
}

// CompareOffers ranks the current price of a searched product across outlets.
// Query parameters: q (required), lat and lon (optional, enable distance
// enrichment when both are present).
func (h *Handler) CompareOffers(c *gin.Context) {
	var params struct {
		Query     string   `form:"q"`
		Latitude  *float64 `form:"lat"`
		Longitude *float64 `form:"lon"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if params.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	query := domain.ComparisonQuery{Text: params.Query}
	if params.Latitude != nil && params.Longitude != nil {
		query.Latitude = *params.Latitude
		query.Longitude = *params.Longitude
		query.HasOrigin = true
	}

	h.metrics.ComparisonQueries.Inc()
	start := time.Now()
	offers, err := h.ranking.Compare(c.Request.Context(), query)
	h.metrics.ComparisonDurationSec.Observe(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoResults):
			h.metrics.ComparisonNoResults.Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "no offers match the query", "query": params.Query})
		case errors.Is(err, domain.ErrInvalidReceipt):
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		case errors.Is(err, domain.ErrStorageFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "persistence backend unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "comparison failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": params.Query, "offers": offers})
}

// Dedupe rewrites the observation table without duplicate rows. Idempotent; a
// pass over a clean table removes nothing and writes nothing.
func (h *Handler) Dedupe(c *gin.Context) {
	removed, err := h.ingestion.DeduplicateStore(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "persistence backend unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deduplication failed"})
		return
	}

	h.metrics.DuplicateRowsRemoved.Add(float64(removed))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
