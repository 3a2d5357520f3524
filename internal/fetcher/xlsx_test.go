package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeXLSX(t *testing.T, sheets map[string][][]string, order []string) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, name := range order {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, cells := range sheets[name] {
			row := sheet.AddRow()
			for _, value := range cells {
				cell := row.AddCell()
				cell.Value = value
			}
		}
	}
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Leads": {
			{"Nome", "Celular", "Etapa"},
			{"Ana Silva", "61999990000", "Novo Lead"},
			{"", "", ""},
			{"Bruno", "61888887777", "Conectando"},
		},
	}, []string{"Leads"})

	table, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Nome", "Celular", "Etapa"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ana Silva", table.Rows[0]["Nome"])
	assert.Equal(t, "Conectando", table.Rows[1]["Etapa"])
}

func TestReadXLSXSheetIndex(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Resumo": {{"Total"}, {"2"}},
		"Leads":  {{"Nome"}, {"Ana"}},
	}, []string{"Resumo", "Leads"})

	table, err := ReadXLSX(path, XLSXOptions{SheetIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome"}, table.Headers)
	assert.Equal(t, "Ana", table.Rows[0]["Nome"])
}

func TestReadXLSXSheetName(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Resumo": {{"Total"}, {"2"}},
		"Leads":  {{"Nome"}, {"Ana"}},
	}, []string{"Resumo", "Leads"})

	table, err := ReadXLSX(path, XLSXOptions{SheetName: "Leads"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome"}, table.Headers)
}

func TestReadXLSXSheetNotFound(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Leads": {{"Nome"}, {"Ana"}},
	}, []string{"Leads"})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "Inexistente"})
	assert.Error(t, err)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	assert.Error(t, err)
}

func TestReadXLSXEmptySheet(t *testing.T) {
	path := writeXLSX(t, map[string][][]string{
		"Leads": {},
	}, []string{"Leads"})

	_, err := ReadXLSX(path, XLSXOptions{})
	assert.Error(t, err)
}

func TestReadXLSXMissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
