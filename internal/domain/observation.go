package domain

// PriceObservation is one row of the append-only fact table: a single physical
// item purchased at a store on a date. Store identity is denormalized as plain
// text so comparison queries never join against the directory.
type PriceObservation struct {
	Date           string  `json:"date"` // ISO YYYY-MM-DD
	StoreName      string  `json:"store_name"`
	StoreAddress   string  `json:"store_address"`
	RawDescription string  `json:"raw_description"`
	LineTotal      float64 `json:"line_total"`
	UnitPrice      float64 `json:"unit_price"`
	IsDiscounted   bool    `json:"is_discounted"`
	Quantity       float64 `json:"quantity"`
	ProductID      string  `json:"product_id"`
}

// StagedReceipt is the output of a pure ingestion pass: everything needed to
// persist one receipt, held by the caller until confirmed. Catalog entries must
// be written before the observations that reference them.
type StagedReceipt struct {
	StoreName    string             `json:"store_name"`
	StoreAddress string             `json:"store_address"`
	NewStore     bool               `json:"new_store"`
	Observations []PriceObservation `json:"observations"`
	NewProducts  []CatalogEntry     `json:"new_products"`
}
