package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile means the upload had no header or no data rows
var ErrEmptyFile = errors.New("csv file is empty")

// Row is one data row keyed by header column. Number is the row's
// 1-based position in the file, counting the header as row 1, so error
// reports point at the line the user sees in their editor.
type Row struct {
	Number int
	Values map[string]string
}

// ParsedCSV is the raw parse result before normalization. Rows whose
// column count differs from the header are dropped and counted in
// SkippedRows rather than surfaced as per-row errors.
type ParsedCSV struct {
	Header      []string
	Rows        []Row
	SkippedRows int
}

// ParseCSV reads a header-keyed CSV stream into column-name → value
// maps, one per data row. Blank lines are ignored.
func ParseCSV(r io.Reader) (*ParsedCSV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // count mismatches ourselves
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	parsed := &ParsedCSV{Header: header}
	number := 1 // the header row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		number++
		if isBlank(record) {
			continue
		}
		if len(record) != len(header) {
			parsed.SkippedRows++
			continue
		}

		values := make(map[string]string, len(header))
		for i, col := range header {
			values[col] = strings.TrimSpace(record[i])
		}
		parsed.Rows = append(parsed.Rows, Row{Number: number, Values: values})
	}

	if len(parsed.Rows) == 0 && parsed.SkippedRows == 0 {
		return nil, ErrEmptyFile
	}
	return parsed, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
