package coerce

import (
	"strconv"
	"strings"
	"time"
)

// excelEpochOffsetDays is the day difference between the spreadsheet serial
// epoch (1900 system) and the Unix epoch.
const excelEpochOffsetDays = 25569

// fallbackLayouts are tried in order when no structured format matches.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// Date coerces raw cell text into a UTC timestamp. It accepts, in priority
// order: spreadsheet numeric serials, DD.MM.YYYY[ HH:mm:ss], generic
// dot-delimited dates, DD/MM/YYYY[ HH:mm:ss] and YYYY-MM-DD[THH:mm:ss],
// then a generic layout-list attempt. Returns the zero time and false when
// nothing parses; it never panics.
func Date(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial > 20000 && serial < 60000 {
			secs := (serial - excelEpochOffsetDays) * 86400
			return time.Unix(int64(secs), 0).UTC(), true
		}
		return time.Time{}, false
	}

	if t, ok := parseDotted(v); ok {
		return t, true
	}
	if t, ok := parseSlashed(v); ok {
		return t, true
	}
	if t, ok := parseISO(v); ok {
		return t, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseDotted handles DD.MM.YYYY with optional time, plus the generic
// dot-delimited form with single-digit day/month.
func parseDotted(v string) (time.Time, bool) {
	if !strings.Contains(v, ".") {
		return time.Time{}, false
	}
	if t, err := time.Parse("02.01.2006 15:04:05", v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("02.01.2006", v); err == nil {
		return t.UTC(), true
	}

	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == ' ' || r == ':' })
	if len(parts) < 3 {
		return time.Time{}, false
	}
	d, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	hh, mm, ss := optionalClock(parts[3:])
	t := time.Date(y, time.Month(m), d, hh, mm, ss, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

func parseSlashed(v string) (time.Time, bool) {
	if !strings.Contains(v, "/") {
		return time.Time{}, false
	}
	for _, layout := range []string{"02/01/2006 15:04:05", "02/01/2006 15:04", "02/01/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseISO(v string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func optionalClock(parts []string) (hh, mm, ss int) {
	if len(parts) > 0 {
		hh, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		mm, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		ss, _ = strconv.Atoi(parts[2])
	}
	return hh, mm, ss
}
