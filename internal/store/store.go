package store

import (
	"context"

	"github.com/mendesarts/vox2you-import/internal/coerce"
	"github.com/mendesarts/vox2you-import/internal/importer"
)

// Store is the persistence boundary of the import engine: the persisted
// header mapping, the reference collections, duplicate lookup and batch
// commit. Both drivers satisfy importer.MappingStore and importer.LeadStore.
type Store interface {
	importer.MappingStore
	importer.LeadStore

	ClearMapping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// phoneSearchSet expands the batch's clean phones into every stored
// representation worth matching, via the country-code variations.
func phoneSearchSet(phones []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range phones {
		for _, v := range coerce.PhoneVariations(p) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
