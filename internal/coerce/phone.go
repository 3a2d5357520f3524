package coerce

import "strings"

// minPhoneDigits is the shortest digit sequence accepted as a phone number.
const minPhoneDigits = 8

// Phone strips everything but digits from raw cell text and reports whether
// the result is usable. All-zero sequences and numbers shorter than eight
// digits are rejected; callers must keep any previously resolved phone
// rather than overwrite it with a rejected value.
func Phone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) < minPhoneDigits {
		return clean, false
	}
	if strings.Trim(clean, "0") == "" {
		return clean, false
	}
	return clean, true
}

// PhoneVariations expands one clean phone into the set of representations
// the lead store may hold: with and without the leading country code 55.
// Duplicate lookups match any variation.
func PhoneVariations(clean string) []string {
	variations := []string{clean}
	if strings.HasPrefix(clean, "55") && len(clean) > 11 {
		variations = append(variations, clean[2:])
	}
	if !strings.HasPrefix(clean, "55") {
		variations = append(variations, "55"+clean)
	}
	return variations
}
