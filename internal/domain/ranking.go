package domain

// ComparisonQuery is a free-text product search, optionally anchored to the
// caller's position for distance enrichment.
type ComparisonQuery struct {
	Text      string
	Latitude  float64
	Longitude float64
	HasOrigin bool
}

// Offer is one ranked comparison row: the current price of a matched product at
// one outlet. ComparablePrice is price per KG/L when the catalog entry carries
// a valid net content, otherwise the raw unit price (per piece).
type Offer struct {
	ProductID        string   `json:"product_id"`
	NormalizedName   string   `json:"normalized_name"`
	Brand            string   `json:"brand,omitempty"`
	StoreName        string   `json:"store_name"`
	StoreAddress     string   `json:"store_address"`
	Date             string   `json:"date"`
	UnitPrice        float64  `json:"unit_price"`
	ComparablePrice  float64  `json:"comparable_price"`
	ComparableUnit   Unit     `json:"comparable_unit"`
	IsDiscounted     bool     `json:"is_discounted"`
	DistanceKm       *float64 `json:"distance_km,omitempty"`
	NetContentAmount float64  `json:"net_content_amount,omitempty"`
}

// Coordinates is a geographic point used by the geocoding and routing
// collaborators.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
