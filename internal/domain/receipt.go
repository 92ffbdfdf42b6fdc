package domain

// ExtractedLineItem is one purchased item as read from a receipt image by the
// extraction service. All fields are untrusted input: prices and quantities may
// be missing or garbled and are normalized downstream.
type ExtractedLineItem struct {
	RawName          string  `json:"raw_name" binding:"required"`
	UnitPrice        float64 `json:"unit_price"`
	Quantity         float64 `json:"quantity"`
	IsDiscounted     bool    `json:"is_discounted"`
	NormalizedName   string  `json:"normalized_name"`
	Brand            string  `json:"brand,omitempty"`
	Category         string  `json:"category,omitempty"`
	NetContentAmount float64 `json:"net_content_amount,omitempty"`
	NetContentUnit   string  `json:"net_content_unit,omitempty"`
}

// ExtractedReceipt is the full structured payload for one receipt. It is
// transient: the ingestion service consumes it once and never stores it.
type ExtractedReceipt struct {
	TaxID         string              `json:"tax_id"`
	Address       string              `json:"address"`
	Date          string              `json:"date"` // ISO YYYY-MM-DD
	DeclaredTotal float64             `json:"declared_total,omitempty"`
	Items         []ExtractedLineItem `json:"items" binding:"required"`
}
