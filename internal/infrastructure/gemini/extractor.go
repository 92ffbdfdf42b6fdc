// Package gemini adapts the Google Gemini vision API to the domain.Extractor
// contract: one receipt image in, a structured receipt payload out. The core
// treats this as a black box; everything here is about getting a usable JSON
// document back from a noisy model response.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

const extractTimeout = 30 * time.Second

// maxKnownNames caps the catalog excerpt injected into the prompt so it stays
// inside a reasonable token budget.
const maxKnownNames = 300

// Extractor implements domain.Extractor using Gemini.
type Extractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// New creates a Gemini extractor.
func New(apiKey, modelName string) (*Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Extractor{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Extract reads one receipt image and returns the structured payload. The
// known catalog names are handed to the model so its normalization proposals
// converge on existing catalog entries instead of inventing near-duplicates.
func (e *Extractor) Extract(ctx context.Context, image []byte, contentType string, knownNames []string) (*domain.ExtractedReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	pngData, err := prepareImage(image, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(buildPrompt(knownNames)),
	}

	resp, err := e.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: generating content: %v", domain.ErrExtractionFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty model response", domain.ErrExtractionFailed)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	receipt, err := parsePayload(text.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return receipt, nil
}

// Close releases the underlying client.
func (e *Extractor) Close() error {
	return e.client.Close()
}

const promptHeader = `Analizza lo scontrino nell'immagine ed estrai i dati in JSON.

Struttura richiesta:
{
  "testata": {"p_iva": "...", "indirizzo": "...", "data": "YYYY-MM-DD", "totale": 0.00},
  "prodotti": [
    {
      "nome_letto": "testo esatto della riga",
      "prezzo_unitario": 0.00,
      "quantita": 1,
      "is_offerta": "NO",
      "proposta_normalizzazione": "NOME PRODOTTO CANONICO",
      "marca": "",
      "categoria": "",
      "contenuto_netto": 0,
      "unita": "KG|L|PZ|G|ML"
    }
  ]
}

Regole:
- Una voce per ogni riga fisica di prodotto, senza raggruppare righe identiche.
- Se una riga di sconto segue un prodotto, sottrai lo sconto dal prezzo
  unitario del prodotto e imposta is_offerta a "SI"; non emettere la riga di
  sconto come voce separata.
- prezzo_unitario e quantita sono numeri; usa il punto come separatore decimale.
- La data deve essere in formato YYYY-MM-DD.
- Restituisci SOLO il JSON, senza testo prima o dopo e senza blocchi markdown.`

// buildPrompt appends the known catalog names so the model reuses them for
// proposta_normalizzazione whenever a line matches an existing product.
func buildPrompt(knownNames []string) string {
	if len(knownNames) == 0 {
		return promptHeader
	}
	if len(knownNames) > maxKnownNames {
		knownNames = knownNames[:maxKnownNames]
	}
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nNomi canonici già a catalogo (riusali quando la riga corrisponde):\n")
	for _, name := range knownNames {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}
