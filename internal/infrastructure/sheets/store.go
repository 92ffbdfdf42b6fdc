// Package sheets persists the three logical tables (store directory, catalog,
// price observations) in one Google Spreadsheet, mirroring the append-only
// record-store contract: read all rows, append rows, replace a whole table.
// Column order is fixed per table and produced by the codec; headers live in
// row 1 and are never interpreted.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// TableNames maps logical tables onto sheet tabs.
type TableNames struct {
	Directory    string
	Catalog      string
	Observations string
}

// Store implements domain.RecordStore over the Sheets API.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	tables        TableNames
}

// NewStore opens the spreadsheet using a service-account credentials file.
func NewStore(ctx context.Context, spreadsheetID, credentialsFile string, tables TableNames) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, tables: tables}, nil
}

// ReadStoreDirectory loads the known-stores reference table.
func (s *Store) ReadStoreDirectory(ctx context.Context) ([]domain.StoreDirectoryEntry, error) {
	values, err := s.readTable(ctx, s.tables.Directory, directoryRange)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.StoreDirectoryEntry, 0, len(values))
	for _, row := range values {
		entries = append(entries, decodeDirectoryRow(row))
	}
	return entries, nil
}

// ReadCatalog loads every catalog entry.
func (s *Store) ReadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	values, err := s.readTable(ctx, s.tables.Catalog, catalogRange)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.CatalogEntry, 0, len(values))
	for _, row := range values {
		entries = append(entries, decodeCatalogRow(row))
	}
	return entries, nil
}

// ReadObservations loads the full fact table.
func (s *Store) ReadObservations(ctx context.Context) ([]domain.PriceObservation, error) {
	values, err := s.readTable(ctx, s.tables.Observations, observationRange)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.PriceObservation, 0, len(values))
	for _, row := range values {
		rows = append(rows, decodeObservationRow(row))
	}
	return rows, nil
}

// AppendCatalog appends new catalog entries in one call.
func (s *Store) AppendCatalog(ctx context.Context, entries []domain.CatalogEntry) error {
	values := make([][]interface{}, 0, len(entries))
	for _, entry := range entries {
		values = append(values, encodeCatalogRow(entry))
	}
	return s.appendRows(ctx, s.tables.Catalog, values)
}

// AppendObservations appends observation rows in one call.
func (s *Store) AppendObservations(ctx context.Context, rows []domain.PriceObservation) error {
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, encodeObservationRow(row))
	}
	return s.appendRows(ctx, s.tables.Observations, values)
}

// ReplaceObservations rewrites the whole observations table below the header.
// Used only by the deduplicator.
func (s *Store) ReplaceObservations(ctx context.Context, rows []domain.PriceObservation) error {
	clearRange := fmt.Sprintf("%s!%s", s.tables.Observations, observationRange)
	if _, err := s.svc.Spreadsheets.Values.
		Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: clearing observations: %v", domain.ErrStorageFailure, err)
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, encodeObservationRow(row))
	}
	if len(values) == 0 {
		return nil
	}

	updateRange := fmt.Sprintf("%s!A2", s.tables.Observations)
	if _, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, updateRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: rewriting observations: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

func (s *Store) readTable(ctx context.Context, tab, columns string) ([][]interface{}, error) {
	readRange := fmt.Sprintf("%s!%s", tab, columns)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrStorageFailure, tab, err)
	}
	return resp.Values, nil
}

func (s *Store) appendRows(ctx context.Context, tab string, values [][]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	appendRange := fmt.Sprintf("%s!A1", tab)
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, appendRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: appending to %s: %v", domain.ErrStorageFailure, tab, err)
	}
	return nil
}
