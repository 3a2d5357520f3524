package fetcher

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a CSV file into a Table. The first record is the header
// row; blank lines are skipped and short rows are tolerated.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, eris.New("csv: file is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	t := &Table{Headers: dedupeHeaders(header)}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		if isEmptyRow(record) {
			continue
		}
		t.Rows = append(t.Rows, buildRow(t.Headers, record))
	}

	return t, nil
}
