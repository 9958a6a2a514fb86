// Package dataset defines the row schemas shared by the ingestion pipeline
// and the dashboard, plus the CSV codecs and in-memory table operations.
package dataset

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jszwec/csvutil"
)

// IndicatorRow is the common long-format row every extractor produces:
// one observation of one indicator for one (country, year).
type IndicatorRow struct {
	CountryName string  `db:"country_name" json:"country_name" bson:"country_name"`
	CountryCode string  `db:"country_code" json:"country_code" bson:"country_code"`
	Year        int     `db:"year" json:"year" bson:"year"`
	Value       float64 `db:"value" json:"value" bson:"value"`
}

// ElectricityRecord is one fully integrated observation. After integration
// (CountryCode, Year) is unique and all three metrics are present.
type ElectricityRecord struct {
	CountryName                 string  `csv:"country_name" db:"country_name" json:"country_name"`
	CountryCode                 string  `csv:"country_code" db:"country_code" json:"country_code"`
	Year                        int     `csv:"year" db:"year" json:"year"`
	RenewableElectricityPercent float64 `csv:"renewable_electricity_percent" db:"renewable_electricity_percent" json:"renewable_electricity_percent"`
	ElectricityLossesPct        float64 `csv:"electricity_losses_pct" db:"electricity_losses_pct" json:"electricity_losses_pct"`
	ElectricityUseKwhPerCapita  float64 `csv:"electricity_use_kwh_per_capita" db:"electricity_use_kwh_per_capita" json:"electricity_use_kwh_per_capita"`
}

// Key identifies an observation across sources.
type Key struct {
	CountryCode string
	Year        int
}

// WriteRecordsCSV writes the integrated dataset to path.
func WriteRecordsCSV(path string, records []ElectricityRecord) error {
	data, err := csvutil.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode integrated dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadRecordsCSV loads the integrated dataset from path.
func ReadRecordsCSV(path string) ([]ElectricityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []ElectricityRecord
	if err := csvutil.Unmarshal(bytes.TrimSpace(data), &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}
