package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSVRows turns an uploaded CSV into one text chunk per data row, in
// the "header: value, header: value" shape the extractors expect. The first
// row is treated as the header.
func ReadCSVRows(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}

	header := records[0]
	rows := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		pairs := make([]string, 0, len(record))
		for i, value := range record {
			key := fmt.Sprintf("column %d", i+1)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				key = strings.TrimSpace(header[i])
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, strings.TrimSpace(value)))
		}
		if len(pairs) > 0 {
			rows = append(rows, strings.Join(pairs, ", "))
		}
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows in file")
	}
	return rows, nil
}
