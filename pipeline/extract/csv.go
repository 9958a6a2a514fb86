// Package extract pulls the three raw electricity sources into the common
// long-format row schema. Extractors do not retry: a network, HTTP-status,
// or parse failure aborts the pipeline run with the underlying error.
package extract

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"electricity-atlas/dataset"
)

// World Bank indicator CSVs carry four lines of file metadata before the header.
const csvMetadataLines = 4

const (
	colCountryName = "Country Name"
	colCountryCode = "Country Code"
)

// RenewableCSV reads the wide-format renewable-electricity CSV and melts it
// into long-format rows, one per non-missing (country, year) cell.
func RenewableCSV(path string) ([]dataset.IndicatorRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open renewable CSV: %w", err)
	}
	defer f.Close()

	rows, err := MeltWide(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse renewable CSV %s: %w", path, err)
	}
	return rows, nil
}

// MeltWide reshapes a wide World Bank CSV (identifier columns plus one column
// per year) into long-format rows. Year columns are recognized by their
// all-digit headers; empty cells are dropped. The reshape preserves the total
// count of non-missing metric cells.
func MeltWide(r io.Reader) ([]dataset.IndicatorRow, error) {
	// Skip raw lines, not CSV records: two of the metadata lines are blank
	// and csv.Reader would silently swallow those.
	buffered := bufio.NewReader(r)
	for i := 0; i < csvMetadataLines; i++ {
		if _, err := buffered.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("failed to skip metadata line %d: %w", i+1, err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	nameIdx, codeIdx := -1, -1
	type yearColumn struct {
		index int
		year  int
	}
	var yearColumns []yearColumn
	for i, col := range header {
		switch col {
		case colCountryName:
			nameIdx = i
		case colCountryCode:
			codeIdx = i
		default:
			if year, ok := digitHeader(col); ok {
				yearColumns = append(yearColumns, yearColumn{index: i, year: year})
			}
		}
	}
	if nameIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("header is missing %q or %q", colCountryName, colCountryCode)
	}
	if len(yearColumns) == 0 {
		return nil, fmt.Errorf("header has no year columns")
	}

	var rows []dataset.IndicatorRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		for _, col := range yearColumns {
			if col.index >= len(record) {
				continue
			}
			cell := record[col.index]
			if cell == "" {
				continue // missing observation
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q for %s in %d: %w",
					cell, record[codeIdx], col.year, err)
			}
			rows = append(rows, dataset.IndicatorRow{
				CountryName: record[nameIdx],
				CountryCode: record[codeIdx],
				Year:        col.year,
				Value:       value,
			})
		}
	}
	return rows, nil
}

// digitHeader reports whether a header cell is an all-digit year column.
// Column names are not validated beyond being digit strings.
func digitHeader(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}
