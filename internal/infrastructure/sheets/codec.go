package sheets

import (
	"strconv"
	"strings"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// Fixed column layouts. These are versioned schema, not header-sniffed: a
// layout change means a new range constant and an explicit migration, never
// keyword matching at read time.
//
//	observations (A..K): date, store_name, store_address, raw_description,
//	                     line_total, reserved(0), unit_price, discount_flag,
//	                     quantity, check_flag(SI), product_id
//	catalog      (A..F): product_id, normalized_name, brand, category,
//	                     net_content_amount, net_content_unit
//	directory    (A..E): tax_id, name, address, latitude, longitude
const (
	observationRange = "A2:K"
	catalogRange     = "A2:F"
	directoryRange   = "A2:E"
)

// Flag values as persisted. The check flag is a constant marker the original
// review workflow used for manually verified rows.
const (
	flagYes   = "SI"
	flagNo    = "NO"
	checkFlag = "SI"
)

func encodeObservationRow(row domain.PriceObservation) []interface{} {
	return []interface{}{
		row.Date,
		row.StoreName,
		row.StoreAddress,
		row.RawDescription,
		row.LineTotal,
		0, // reserved
		row.UnitPrice,
		encodeFlag(row.IsDiscounted),
		row.Quantity,
		checkFlag,
		row.ProductID,
	}
}

func decodeObservationRow(cells []interface{}) domain.PriceObservation {
	return domain.PriceObservation{
		Date:           cellString(cells, 0),
		StoreName:      cellString(cells, 1),
		StoreAddress:   cellString(cells, 2),
		RawDescription: cellString(cells, 3),
		LineTotal:      cellFloat(cells, 4),
		UnitPrice:      cellFloat(cells, 6),
		IsDiscounted:   decodeFlag(cellString(cells, 7)),
		Quantity:       cellFloat(cells, 8),
		ProductID:      cellString(cells, 10),
	}
}

func encodeCatalogRow(entry domain.CatalogEntry) []interface{} {
	return []interface{}{
		entry.ProductID,
		entry.NormalizedName,
		entry.Brand,
		entry.Category,
		entry.NetContentAmount,
		string(entry.NetContentUnit),
	}
}

func decodeCatalogRow(cells []interface{}) domain.CatalogEntry {
	return domain.CatalogEntry{
		ProductID:        cellString(cells, 0),
		NormalizedName:   cellString(cells, 1),
		Brand:            cellString(cells, 2),
		Category:         cellString(cells, 3),
		NetContentAmount: cellFloat(cells, 4),
		NetContentUnit:   domain.Unit(strings.ToUpper(cellString(cells, 5))),
	}
}

func decodeDirectoryRow(cells []interface{}) domain.StoreDirectoryEntry {
	return domain.StoreDirectoryEntry{
		TaxID:     cellString(cells, 0),
		Name:      cellString(cells, 1),
		Address:   cellString(cells, 2),
		Latitude:  cellFloat(cells, 3),
		Longitude: cellFloat(cells, 4),
	}
}

func encodeFlag(value bool) string {
	if value {
		return flagYes
	}
	return flagNo
}

func decodeFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), flagYes)
}

// cellString tolerates short rows: the Sheets API trims trailing empty cells.
func cellString(cells []interface{}, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	switch v := cells[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// cellFloat parses a numeric cell that may come back as a float or as a
// locale-formatted string ("1,45"). Unparsable cells resolve to 0.
func cellFloat(cells []interface{}, idx int) float64 {
	if idx >= len(cells) {
		return 0
	}
	switch v := cells[idx].(type) {
	case float64:
		return v
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return value
	default:
		return 0
	}
}
