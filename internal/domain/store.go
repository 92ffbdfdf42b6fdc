package domain

// StoreDirectoryEntry is immutable reference data about a known store, keyed by
// its normalized 11-digit tax identifier. Maintained externally; loaded once
// per session.
type StoreDirectoryEntry struct {
	TaxID     string  `json:"tax_id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// ResolvedStore is the outcome of store identity resolution. Known is false
// when the tax id did not match the directory and a placeholder label was
// synthesized instead.
type ResolvedStore struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Known   bool   `json:"known"`
}
