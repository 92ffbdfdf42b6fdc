// Command cleanup runs a one-shot deduplication pass over the observations
// table. Meant for cron or manual runs; the server exposes the same operation
// over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/infrastructure/sheets"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/usecase"
)

func main() {
	fs := ff.NewFlagSet("cleanup")
	var (
		spreadsheetID   = fs.StringLong("spreadsheet-id", "", "Spreadsheet ID backing the tables")
		credentialsFile = fs.StringLong("credentials", "credentials.json", "Service account credentials file")
		directoryTab    = fs.StringLong("directory-tab", "Supermercati", "Store directory tab name")
		catalogTab      = fs.StringLong("catalog-tab", "Catalogo", "Product catalog tab name")
		observationsTab = fs.StringLong("observations-tab", "Scontrini", "Observations tab name")
		dryRun          = fs.BoolLong("dry-run", "Report duplicates without rewriting the table")
		timeout         = fs.DurationLong("timeout", 2*time.Minute, "Overall run timeout")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("PRICESCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *spreadsheetID == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --spreadsheet-id is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := sheets.NewStore(ctx, *spreadsheetID, *credentialsFile, sheets.TableNames{
		Directory:    *directoryTab,
		Catalog:      *catalogTab,
		Observations: *observationsTab,
	})
	if err != nil {
		slog.Error("failed to open spreadsheet store", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		rows, err := store.ReadObservations(ctx)
		if err != nil {
			slog.Error("failed to read observations", "error", err)
			os.Exit(1)
		}
		deduped := usecase.Deduplicate(rows)
		slog.Info("dry run complete",
			"rows", len(rows),
			"duplicates", len(rows)-len(deduped))
		return
	}

	ingestion := usecase.NewIngestionService(store)
	removed, err := ingestion.DeduplicateStore(ctx)
	if err != nil {
		slog.Error("deduplication failed", "error", err)
		os.Exit(1)
	}

	slog.Info("deduplication complete", "removed", removed)
}
