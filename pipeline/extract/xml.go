package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"electricity-atlas/dataset"
)

// worldBankXMLDoc mirrors a World Bank API XML response: a wb:data root
// wrapping one wb:data element per observation.
type worldBankXMLDoc struct {
	Records []struct {
		CountryName string `xml:"country"`
		CountryCode string `xml:"countryiso3code"`
		Date        string `xml:"date"`
		Value       string `xml:"value"`
	} `xml:"data"`
}

// LossesXML fetches the transmission-and-distribution-losses indicator from
// the XML endpoint and renames its fields into the common schema.
func LossesXML(ctx context.Context, url string) ([]dataset.IndicatorRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build XML request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch XML endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("XML endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML body: %w", err)
	}
	return parseLossesXML(body)
}

func parseLossesXML(body []byte) ([]dataset.IndicatorRow, error) {
	var doc worldBankXMLDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode XML response: %w", err)
	}

	var rows []dataset.IndicatorRow
	for _, rec := range doc.Records {
		if rec.Value == "" || rec.CountryCode == "" {
			continue // missing observation or aggregate without an ISO code
		}
		year, err := strconv.Atoi(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q for %s: %w", rec.Date, rec.CountryCode, err)
		}
		value, err := strconv.ParseFloat(rec.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for %s: %w", rec.Value, rec.CountryCode, err)
		}
		rows = append(rows, dataset.IndicatorRow{
			CountryName: rec.CountryName,
			CountryCode: rec.CountryCode,
			Year:        year,
			Value:       value,
		})
	}
	return rows, nil
}
