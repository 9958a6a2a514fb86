package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteIndicatorCSV writes long-format indicator rows to path. The metric
// column carries the indicator-specific name (e.g. renewable_electricity_percent),
// so the header is assembled by hand rather than from struct tags.
func WriteIndicatorCSV(path, metricColumn string, rows []IndicatorRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"country_name", "country_code", "year", metricColumn}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.CountryName,
			row.CountryCode,
			strconv.Itoa(row.Year),
			strconv.FormatFloat(row.Value, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
