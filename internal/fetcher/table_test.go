package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeHeaders(t *testing.T) {
	headers := dedupeHeaders([]string{" Nome ", "Telefone", "Telefone", "Telefone", "Email"})
	assert.Equal(t, []string{"Nome", "Telefone", "Telefone_2", "Telefone_3", "Email"}, headers)
}

func TestDedupeHeadersNoRepeats(t *testing.T) {
	headers := dedupeHeaders([]string{"A", "B", "C"})
	assert.Equal(t, []string{"A", "B", "C"}, headers)
}

func TestBuildRowShortRecord(t *testing.T) {
	row := buildRow([]string{"A", "B", "C"}, []string{"1", "2"})
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, row)
	_, ok := row["C"]
	assert.False(t, ok)
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, isEmptyRow([]string{"", "  ", "\t"}))
	assert.True(t, isEmptyRow(nil))
	assert.False(t, isEmptyRow([]string{"", "x"}))
}
