package coerce

import (
	"strconv"
	"strings"
)

// Money coerces raw cell text into a monetary amount. Everything but
// digits, dots and commas is stripped first; the decimal convention is then
// disambiguated: a comma after the last dot (or a comma with no dot at all)
// means Brazilian formatting (dots are thousands separators), otherwise
// dots are decimal and commas thousands. Garbage yields 0, never an error.
func Money(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return 0
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	if lastComma >= 0 && (lastDot < 0 || lastComma > lastDot) {
		// 1.500,00 -> 1500.00
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	} else {
		// 1,500.00 -> 1500.00
		clean = strings.ReplaceAll(clean, ",", "")
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
