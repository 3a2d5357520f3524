package coerce

import "strings"

// Tags splits comma-separated tag text, trimming entries and dropping
// empties. The "Imported" marker is added at assembly, not here.
func Tags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Identifier keeps digits only. Used for CPF/RG/CNPJ-like document fields
// and postal codes.
func Identifier(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Bool interprets common spreadsheet truthy/falsy spellings. The second
// return is false when the text carries no recognizable boolean.
func Bool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sim", "yes", "true", "1", "x":
		return true, true
	case "nao", "não", "no", "false", "0", "":
		return false, true
	}
	return false, false
}

// Temperature maps localized temperature labels onto the canonical
// hot/warm/cold vocabulary, or "" when unrecognized.
func Temperature(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hot", "quente":
		return "hot"
	case "warm", "morno":
		return "warm"
	case "cold", "frio":
		return "cold"
	}
	return ""
}

// Installments extracts the leading number from values like "12x". Falls
// back to the trimmed original when no digits are present.
func Installments(raw string) string {
	digits := Identifier(raw)
	if digits == "" {
		return strings.TrimSpace(raw)
	}
	// "12x de 150" keeps only the first run of digits.
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			j := i
			for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
				j++
			}
			return raw[i:j]
		}
	}
	return digits
}
