package usecase

import (
	"fmt"
	"strings"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// ResolveStore maps a receipt's tax identifier onto the known-stores directory.
// Matching is exact on the normalized tax id only: address text is never used
// for identity, so two branches of the same chain at different addresses can
// never be merged by OCR noise. A directory hit overrides whatever address the
// extraction step guessed. A miss is not an error; it yields a synthesized
// "NUOVO (<tax_id>)" label with the raw address uppercased.
func ResolveStore(rawTaxID, rawAddress string, directory []domain.StoreDirectoryEntry) domain.ResolvedStore {
	taxID := NormalizeTaxID(rawTaxID)
	if taxID != "" {
		for _, entry := range directory {
			if entry.TaxID == taxID {
				return domain.ResolvedStore{
					Name:    entry.Name,
					Address: entry.Address,
					Known:   true,
				}
			}
		}
	}

	return domain.ResolvedStore{
		Name:    fmt.Sprintf("NUOVO (%s)", taxID),
		Address: strings.ToUpper(strings.TrimSpace(rawAddress)),
		Known:   false,
	}
}
