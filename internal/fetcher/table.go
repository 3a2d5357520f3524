package fetcher

import (
	"fmt"
	"strings"
)

// Table is a parsed tabular source: an ordered header list and one
// header→cell map per data row. Repeated header names are disambiguated at
// ingestion with a numeric suffix, so downstream resolution sees distinct
// header identities.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// dedupeHeaders trims raw header names and suffixes repeats: the second
// "Telefone" becomes "Telefone_2", the third "Telefone_3".
func dedupeHeaders(raw []string) []string {
	counts := make(map[string]int, len(raw))
	headers := make([]string, len(raw))
	for i, h := range raw {
		trimmed := strings.TrimSpace(h)
		counts[trimmed]++
		if counts[trimmed] == 1 {
			headers[i] = trimmed
		} else {
			headers[i] = fmt.Sprintf("%s_%d", trimmed, counts[trimmed])
		}
	}
	return headers
}

// buildRow zips one record's cells with the deduped headers. Missing
// trailing cells stay absent from the map rather than becoming "".
func buildRow(headers, cells []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		row[h] = cells[i]
	}
	return row
}

// isEmptyRow reports whether every cell of a record is blank.
func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
