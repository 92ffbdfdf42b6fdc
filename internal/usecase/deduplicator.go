package usecase

import (
	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// observationKey identifies "the same observation written twice": a re-upload
// of a receipt or an ingestion retry repeats all four fields exactly. Two
// genuinely distinct purchases that coincide on all four are an accepted
// false negative.
type observationKey struct {
	date           string
	storeName      string
	rawDescription string
	unitPrice      float64
}

// Deduplicate removes duplicate observations, keeping the last-inserted row
// per key and preserving the original write order of the survivors. It is
// idempotent: applying it to its own output changes nothing.
func Deduplicate(rows []domain.PriceObservation) []domain.PriceObservation {
	lastIdx := make(map[observationKey]int, len(rows))
	for i, row := range rows {
		lastIdx[keyOf(row)] = i
	}

	if len(lastIdx) == len(rows) {
		return rows
	}

	out := make([]domain.PriceObservation, 0, len(lastIdx))
	for i, row := range rows {
		if lastIdx[keyOf(row)] == i {
			out = append(out, row)
		}
	}
	return out
}

func keyOf(row domain.PriceObservation) observationKey {
	return observationKey{
		date:           row.Date,
		storeName:      row.StoreName,
		rawDescription: row.RawDescription,
		unitPrice:      row.UnitPrice,
	}
}
