package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const consumptionJSON = `[
  {"page": 1, "pages": 1, "per_page": 20000, "total": 3},
  [
    {"country": {"id": "US", "value": "United States"}, "date": "2010", "value": 13394.0},
    {"country": {"id": "DE", "value": "Germany"}, "date": "2010", "value": null},
    {"country": {"id": "ZH", "value": "Africa Eastern and Southern"}, "date": "2009", "value": 540.2}
  ]
]`

func TestParseConsumptionJSON(t *testing.T) {
	rows, err := parseConsumptionJSON([]byte(consumptionJSON))
	if err != nil {
		t.Fatalf("parseConsumptionJSON() error: %v", err)
	}

	// The null-valued Germany record is dropped; aggregates survive here and
	// fall to the ISO normalizer later.
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	us := rows[0]
	if us.CountryName != "United States" || us.CountryCode != "US" {
		t.Errorf("first row identifiers = (%q, %q); want (United States, US)", us.CountryName, us.CountryCode)
	}
	if us.Year != 2010 {
		t.Errorf("first row year = %d; want 2010", us.Year)
	}
	if us.Value != 13394.0 {
		t.Errorf("first row value = %v; want 13394.0", us.Value)
	}
}

func TestParseConsumptionJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an array", `{"page": 1}`},
		{"missing records element", `[{"page": 1}]`},
		{"records not objects", `[{"page": 1}, [42]]`},
		{"non-numeric year", `[{}, [{"country": {"id": "US", "value": "x"}, "date": "abc", "value": 1.0}]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseConsumptionJSON([]byte(tt.body)); err == nil {
				t.Fatalf("parseConsumptionJSON() succeeded, want error")
			}
		})
	}
}

func TestConsumptionJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(consumptionJSON))
	}))
	defer srv.Close()

	rows, err := ConsumptionJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ConsumptionJSON() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
}

func TestConsumptionJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := ConsumptionJSON(context.Background(), srv.URL); err == nil {
		t.Fatalf("ConsumptionJSON() succeeded on a 502, want error")
	}
}
