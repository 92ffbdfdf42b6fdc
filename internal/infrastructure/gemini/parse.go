package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/usecase"
)

// Wire types mirror the JSON shape the prompt requests. Every numeric field is
// a flexValue because the model occasionally emits prices as strings with
// Italian separators despite instructions.
type wirePayload struct {
	Testata  wireHeader `json:"testata"`
	Prodotti []wireItem `json:"prodotti"`
}

type wireHeader struct {
	PIVA      string    `json:"p_iva"`
	Indirizzo string    `json:"indirizzo"`
	Data      string    `json:"data"`
	Totale    flexValue `json:"totale"`
}

type wireItem struct {
	NomeLetto      string    `json:"nome_letto"`
	PrezzoUnitario flexValue `json:"prezzo_unitario"`
	Quantita       flexValue `json:"quantita"`
	IsOfferta      flexFlag  `json:"is_offerta"`
	Proposta       string    `json:"proposta_normalizzazione"`
	Marca          string    `json:"marca"`
	Categoria      string    `json:"categoria"`
	ContenutoNetto flexValue `json:"contenuto_netto"`
	Unita          string    `json:"unita"`
}

// flexValue accepts a JSON number, a numeric string in any common locale
// format, or null. Unparsable input resolves to 0 rather than failing the
// whole payload.
type flexValue float64

func (f *flexValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = 0
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*f = flexValue(number)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f = flexValue(usecase.NormalizePrice(text))
		return nil
	}
	*f = 0
	return nil
}

// flexFlag accepts a JSON bool or the "SI"/"NO" strings the original payload
// used for the discount marker.
type flexFlag bool

func (f *flexFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexFlag(b)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		text = strings.ToUpper(strings.TrimSpace(text))
		*f = flexFlag(text == "SI" || text == "TRUE" || text == "YES")
		return nil
	}
	*f = false
	return nil
}

// dateFormats are tried in order when the model ignores the YYYY-MM-DD rule.
var dateFormats = []string{"2006-01-02", "2006/01/02", "02/01/2006", "02-01-2006", "02.01.2006"}

// parsePayload recovers the structured receipt from a model response: strips
// markdown fences, isolates the outermost JSON object, decodes it tolerantly
// and applies documented defaults for missing optional fields. A payload with
// no line items at all is malformed and surfaces a recoverable error.
func parsePayload(text string) (*domain.ExtractedReceipt, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var payload wirePayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	if len(payload.Prodotti) == 0 {
		return nil, fmt.Errorf("payload carries no line items")
	}

	receipt := &domain.ExtractedReceipt{
		TaxID:         strings.TrimSpace(payload.Testata.PIVA),
		Address:       strings.TrimSpace(payload.Testata.Indirizzo),
		Date:          normalizeDate(payload.Testata.Data),
		DeclaredTotal: float64(payload.Testata.Totale),
		Items:         make([]domain.ExtractedLineItem, 0, len(payload.Prodotti)),
	}

	for _, item := range payload.Prodotti {
		quantity := float64(item.Quantita)
		if quantity <= 0 {
			quantity = 1
		}
		receipt.Items = append(receipt.Items, domain.ExtractedLineItem{
			RawName:          strings.TrimSpace(item.NomeLetto),
			UnitPrice:        float64(item.PrezzoUnitario),
			Quantity:         quantity,
			IsDiscounted:     bool(item.IsOfferta),
			NormalizedName:   strings.TrimSpace(item.Proposta),
			Brand:            strings.TrimSpace(item.Marca),
			Category:         strings.TrimSpace(item.Categoria),
			NetContentAmount: float64(item.ContenutoNetto),
			NetContentUnit:   strings.TrimSpace(item.Unita),
		})
	}
	return receipt, nil
}

// normalizeDate coerces the header date to ISO, falling back to today when
// every known format fails. A wrong-but-present date beats losing the rows.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if d, err := time.Parse(format, raw); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}
