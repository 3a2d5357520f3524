package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "Nome,Celular,Etapa\nAna Silva,61999990000,Novo Lead\nBruno,61888887777,Conectando\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Nome", "Celular", "Etapa"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ana Silva", table.Rows[0]["Nome"])
	assert.Equal(t, "Conectando", table.Rows[1]["Etapa"])
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	path := writeCSV(t, "Nome,Celular\nAna,61999990000\n , \nBruno,61888887777\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestReadCSVShortRows(t *testing.T) {
	path := writeCSV(t, "Nome,Celular,Email\nAna,61999990000\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	_, ok := table.Rows[0]["Email"]
	assert.False(t, ok)
}

func TestReadCSVRepeatedHeaders(t *testing.T) {
	path := writeCSV(t, "Nome,Telefone,Telefone\nAna,61999990000,6133334444\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome", "Telefone", "Telefone_2"}, table.Headers)
	assert.Equal(t, "6133334444", table.Rows[0]["Telefone_2"])
}

func TestReadCSVEmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
