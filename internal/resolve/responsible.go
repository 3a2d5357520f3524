package resolve

import (
	"strings"

	"github.com/mendesarts/vox2you-import/internal/model"
)

// ResolveResponsible matches the raw "responsible" cell text to a known
// user. Order: session override table by exact raw key, then normalized
// equality or mutual substring containment against each user's display
// name. First match wins; 0 means unresolved (the assembler later falls
// back to the session's default responsible).
func ResolveResponsible(raw string, overrides map[string]int64, users []model.User) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if id, ok := overrides[raw]; ok && id != 0 {
		return id
	}

	rn := Normalize(raw)
	for _, u := range users {
		un := Normalize(u.Name)
		if un == "" {
			continue
		}
		if un == rn || strings.Contains(un, rn) || strings.Contains(rn, un) {
			return u.ID
		}
	}

	return 0
}

// UniqueResponsibleNames returns the distinct raw values of the column
// mapped to "responsible", in first-seen order. The import flow presents
// these to the operator once per session for manual review.
func UniqueResponsibleNames(rows []map[string]string, mapping map[string]string) []string {
	var responsibleHeader string
	for header, key := range mapping {
		if key == "responsible" {
			responsibleHeader = header
			break
		}
	}
	if responsibleHeader == "" {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		name := strings.TrimSpace(row[responsibleHeader])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// UnmatchedResponsibleNames filters UniqueResponsibleNames down to the ones
// neither the override table nor the user list can resolve. When empty, the
// session's responsible-review step is skipped automatically.
func UnmatchedResponsibleNames(rows []map[string]string, mapping map[string]string, overrides map[string]int64, users []model.User) []string {
	var unmatched []string
	for _, name := range UniqueResponsibleNames(rows, mapping) {
		if ResolveResponsible(name, overrides, users) == 0 {
			unmatched = append(unmatched, name)
		}
	}
	return unmatched
}
