package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mendesarts/vox2you-import/internal/model"
)

// marketingLegacyKey is the target of the special-override rule: any header
// that loosely denotes the legacy second marketing field is force-assigned
// here before any other rule runs, persisted mapping included.
const marketingLegacyKey = "marketing_2"

func isMarketingLegacy(header string) bool {
	h := NormalizeAggressive(header)
	return strings.HasPrefix(h, "marketing2") || h == "marketingii"
}

// ResolveHeaders assigns every header to a canonical field key or to
// model.MappingIgnore. Headers with no resolution are absent from the
// result; the assembler retains their values under the draft's extra data.
//
// Per-header precedence, first match wins:
//  1. special override (legacy marketing field)
//  2. persisted exact mapping, keyed by raw header text
//  3. exact alias equality, catalog order, unclaimed fields only
//  4. fuzzy bidirectional substring, keywords under 3 chars require equality
//
// The claimed set guarantees at most one header per field per session,
// except keys model.Repeatable exempts.
func ResolveHeaders(headers []string, catalog *model.Catalog, persisted map[string]string) map[string]string {
	mapping := make(map[string]string, len(headers))
	claimed := make(map[string]bool)

	for _, header := range headers {
		raw := strings.TrimSpace(header)

		if isMarketingLegacy(raw) {
			mapping[header] = marketingLegacyKey
			claimed[marketingLegacyKey] = true
			continue
		}

		if target, ok := persisted[raw]; ok {
			if target == model.MappingIgnore {
				mapping[header] = model.MappingIgnore
			} else {
				mapping[header] = target
				claimed[target] = true
			}
			continue
		}

		key := autoGuess(raw, catalog, claimed)
		if key == "" {
			zap.L().Debug("resolve: header unassigned", zap.String("header", raw))
			continue
		}
		mapping[header] = key
		claimed[key] = true
	}

	return mapping
}

// autoGuess runs the two alias passes over the catalog in declaration
// order. The exact pass completes over every field before the fuzzy pass
// starts, so an exact alias on a later field beats a fuzzy hit on an
// earlier one.
func autoGuess(header string, catalog *model.Catalog, claimed map[string]bool) string {
	h := Normalize(header)
	if h == "" {
		return ""
	}

	for i := range catalog.Fields {
		f := &catalog.Fields[i]
		if claimed[f.Key] && !model.Repeatable(f.Key) {
			continue
		}
		for _, k := range f.Aliases {
			if h == Normalize(k) {
				return f.Key
			}
		}
	}

	for i := range catalog.Fields {
		f := &catalog.Fields[i]
		if claimed[f.Key] && !model.Repeatable(f.Key) {
			continue
		}
		for _, k := range f.Aliases {
			kn := Normalize(k)
			// Short tokens like "id" over-match ("unidade"), so they only
			// participate as exact equality.
			if len(kn) < 3 {
				if h == kn {
					return f.Key
				}
				continue
			}
			if strings.Contains(h, kn) || strings.Contains(kn, h) {
				return f.Key
			}
		}
	}

	return ""
}
