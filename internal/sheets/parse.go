package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps a trimmed header to the trimmed cell value.
type Row map[string]string

// Parse reads a CSV document whose first non-blank line is the header row.
// Each line is read on its own, so a broken quote damages one row only and
// quoted fields cannot span lines. Short rows are padded with empty strings,
// extra cells are dropped and blank lines are skipped.
func Parse(body []byte) ([]Row, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	var header []string
	rows := []Row{}
	for i, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := readLine(line)
		if err != nil {
			if header == nil {
				return nil, &ParseError{Line: i + 1, Err: err}
			}
			continue
		}

		if header == nil {
			header = make([]string, len(record))
			for j, h := range record {
				header[j] = strings.TrimSpace(h)
			}
			continue
		}
		if blank(record) {
			continue
		}

		row := make(Row, len(header))
		for j, h := range header {
			if j < len(record) {
				row[h] = strings.TrimSpace(record[j])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func readLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, pe.Err
		}
		return nil, err
	}
	return record, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
