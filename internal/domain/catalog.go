package domain

// Unit is a canonical net-content unit. Price comparisons are only computed in
// these three units; anything else is treated as not comparable.
type Unit string

const (
	UnitKilogram Unit = "KG"
	UnitLiter    Unit = "L"
	UnitPiece    Unit = "PZ"
	UnitUnknown  Unit = ""
)

// CatalogEntry is one canonical product. NormalizedName is the unique matching
// key (case-folded); ProductID is opaque and stable once assigned.
type CatalogEntry struct {
	ProductID        string  `json:"product_id"`
	NormalizedName   string  `json:"normalized_name"`
	Brand            string  `json:"brand,omitempty"`
	Category         string  `json:"category,omitempty"`
	NetContentAmount float64 `json:"net_content_amount"`
	NetContentUnit   Unit    `json:"net_content_unit"`
}

// Comparable reports whether a price per canonical unit can be computed for
// this entry. Entries created without a valid net content stay listed but are
// ranked by raw unit price.
func (e CatalogEntry) Comparable() bool {
	return e.NetContentAmount > 0 && (e.NetContentUnit == UnitKilogram || e.NetContentUnit == UnitLiter)
}
