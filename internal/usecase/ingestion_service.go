package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// Stage converts one extraction result into persistable rows: exactly one
// observation per line item plus any catalog entries first seen in this batch.
// It is a pure transformation with no side effects; persistence is the
// caller's responsibility. Physically distinct lines stay distinct rows even
// when name, price and quantity coincide.
func Stage(
	receipt *domain.ExtractedReceipt,
	directory []domain.StoreDirectoryEntry,
	catalog []domain.CatalogEntry,
) (*domain.StagedReceipt, error) {
	if receipt == nil || len(receipt.Items) == 0 {
		return nil, domain.ErrInvalidReceipt
	}

	resolved := ResolveStore(receipt.TaxID, receipt.Address, directory)
	resolver := NewCatalogResolver(catalog)

	observations := make([]domain.PriceObservation, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		observations = append(observations, domain.PriceObservation{
			Date:           strings.TrimSpace(receipt.Date),
			StoreName:      resolved.Name,
			StoreAddress:   resolved.Address,
			RawDescription: NormalizeName(item.RawName),
			LineTotal:      item.UnitPrice * quantity,
			UnitPrice:      item.UnitPrice,
			IsDiscounted:   item.IsDiscounted,
			Quantity:       quantity,
			ProductID:      resolver.Resolve(item),
		})
	}

	return &domain.StagedReceipt{
		StoreName:    resolved.Name,
		StoreAddress: resolved.Address,
		NewStore:     !resolved.Known,
		Observations: observations,
		NewProducts:  resolver.Staged(),
	}, nil
}

// IngestionService coordinates staging with the record store.
type IngestionService struct {
	store domain.RecordStore
}

// NewIngestionService creates an ingestion service over the record store.
func NewIngestionService(store domain.RecordStore) *IngestionService {
	return &IngestionService{store: store}
}

// Ingest stages a receipt against the current directory and catalog snapshot
// and commits the result. Catalog rows are appended before the observation
// rows that reference them, so a reader never sees a dangling product id. No
// row is assumed persisted unless the append call reported success.
func (s *IngestionService) Ingest(ctx context.Context, receipt *domain.ExtractedReceipt) (*domain.StagedReceipt, error) {
	directory, err := s.store.ReadStoreDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}
	catalog, err := s.store.ReadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	staged, err := Stage(receipt, directory, catalog)
	if err != nil {
		return nil, err
	}

	if err := s.Commit(ctx, staged); err != nil {
		return nil, err
	}
	return staged, nil
}

// Commit persists a staged receipt the caller previously held for review.
func (s *IngestionService) Commit(ctx context.Context, staged *domain.StagedReceipt) error {
	if len(staged.NewProducts) > 0 {
		if err := s.store.AppendCatalog(ctx, staged.NewProducts); err != nil {
			return fmt.Errorf("appending catalog entries: %w", err)
		}
	}
	if err := s.store.AppendObservations(ctx, staged.Observations); err != nil {
		return fmt.Errorf("appending observations: %w", err)
	}
	return nil
}

// DeduplicateStore runs a maintenance pass over the whole observation table,
// rewriting it without duplicates. Returns the number of rows removed. Safe to
// run at any time outside an in-flight ingestion write.
func (s *IngestionService) DeduplicateStore(ctx context.Context) (int, error) {
	rows, err := s.store.ReadObservations(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading observations: %w", err)
	}

	deduped := Deduplicate(rows)
	removed := len(rows) - len(deduped)
	if removed == 0 {
		return 0, nil
	}

	if err := s.store.ReplaceObservations(ctx, deduped); err != nil {
		return 0, fmt.Errorf("replacing observations: %w", err)
	}
	return removed, nil
}
