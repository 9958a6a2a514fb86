package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"electricity-atlas/dataset"
)

// worldBankJSONRecord mirrors one element of the second page element of a
// World Bank API JSON response.
type worldBankJSONRecord struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// ConsumptionJSON fetches the per-capita consumption indicator from the JSON
// endpoint. The body is a two-element array: page metadata, then records.
// The full result set comes back in one call; there is no pagination loop.
func ConsumptionJSON(ctx context.Context, url string) ([]dataset.IndicatorRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JSON request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JSON endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JSON endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON body: %w", err)
	}
	return parseConsumptionJSON(body)
}

func parseConsumptionJSON(body []byte) ([]dataset.IndicatorRow, error) {
	var pages []json.RawMessage
	if err := json.Unmarshal(body, &pages); err != nil {
		return nil, fmt.Errorf("failed to decode JSON response: %w", err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("JSON response has %d elements, want page info plus records", len(pages))
	}

	var records []worldBankJSONRecord
	if err := json.Unmarshal(pages[1], &records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON records: %w", err)
	}

	var rows []dataset.IndicatorRow
	for _, rec := range records {
		if rec.Value == nil {
			continue // missing observation
		}
		year, err := strconv.Atoi(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q for %s: %w", rec.Date, rec.Country.ID, err)
		}
		rows = append(rows, dataset.IndicatorRow{
			CountryName: rec.Country.Value,
			CountryCode: rec.Country.ID,
			Year:        year,
			Value:       *rec.Value,
		})
	}
	return rows, nil
}
