package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// IDGenerator mints opaque product identifiers
type IDGenerator interface {
	Generate() string
}

// randomIDGenerator produces 8 hex characters (32 bits) from crypto/rand.
// There is no central allocator, so two concurrent sessions minting an id for
// the same new product cannot collide deterministically; at catalog scale the
// collision probability is negligible.
type randomIDGenerator struct{}

func (randomIDGenerator) Generate() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// CatalogResolver matches normalized product names against the catalog
// snapshot and stages a new entry on first sighting. Matching is exact,
// case-insensitive string equality: normalization quality is pushed upstream
// to the extraction step, which is handed the list of known names. Staged
// entries participate in lookups so a receipt listing the same product twice
// resolves to one id.
type CatalogResolver struct {
	persisted map[string]domain.CatalogEntry
	staged    []domain.CatalogEntry
	stagedIdx map[string]int
	idGen     IDGenerator
}

// NewCatalogResolver builds a resolver over the current catalog snapshot.
func NewCatalogResolver(snapshot []domain.CatalogEntry) *CatalogResolver {
	return NewCatalogResolverWithIDGen(snapshot, randomIDGenerator{})
}

// NewCatalogResolverWithIDGen injects a custom id generator for testing.
func NewCatalogResolverWithIDGen(snapshot []domain.CatalogEntry, idGen IDGenerator) *CatalogResolver {
	persisted := make(map[string]domain.CatalogEntry, len(snapshot))
	for _, entry := range snapshot {
		persisted[strings.ToUpper(entry.NormalizedName)] = entry
	}
	return &CatalogResolver{
		persisted: persisted,
		stagedIdx: make(map[string]int),
		idGen:     idGen,
	}
}

// Resolve returns the stable product id for a line item, minting one and
// staging a catalog entry when the normalized name is unseen. A missing or
// invalid net content defaults to 1.0 with the unit left unset, marking the
// entry as not comparable instead of breaking price-per-unit computation.
func (r *CatalogResolver) Resolve(item domain.ExtractedLineItem) string {
	name := NormalizeName(item.NormalizedName)
	if name == "" {
		name = NormalizeName(item.RawName)
	}
	key := strings.ToUpper(name)

	if entry, ok := r.persisted[key]; ok {
		return entry.ProductID
	}
	if idx, ok := r.stagedIdx[key]; ok {
		return r.staged[idx].ProductID
	}

	amount, unit := NormalizeQuantity(item.NetContentAmount, item.NetContentUnit)
	if amount <= 0 {
		amount = 1.0
		unit = domain.UnitUnknown
	}

	entry := domain.CatalogEntry{
		ProductID:        r.idGen.Generate(),
		NormalizedName:   name,
		Brand:            strings.TrimSpace(item.Brand),
		Category:         strings.TrimSpace(item.Category),
		NetContentAmount: amount,
		NetContentUnit:   unit,
	}
	r.stagedIdx[key] = len(r.staged)
	r.staged = append(r.staged, entry)
	return entry.ProductID
}

// Staged returns the catalog entries created during this batch, in first-seen
// order. They must be persisted before any observation that references them.
func (r *CatalogResolver) Staged() []domain.CatalogEntry {
	return r.staged
}
