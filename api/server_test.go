package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"electricity-atlas/dataset"
)

func testRecord(name, code string, year int, renewable, losses, use float64) dataset.ElectricityRecord {
	return dataset.ElectricityRecord{
		CountryName:                 name,
		CountryCode:                 code,
		Year:                        year,
		RenewableElectricityPercent: renewable,
		ElectricityLossesPct:        losses,
		ElectricityUseKwhPerCapita:  use,
	}
}

func testServer() *Server {
	records := []dataset.ElectricityRecord{
		testRecord("France", "FRA", 2010, 15.0, 6.0, 7500),
		testRecord("France", "FRA", 2011, 16.0, 6.1, 7400),
		testRecord("Germany", "DEU", 2010, 17.0, 4.1, 7100),
		testRecord("Germany", "DEU", 2011, 20.0, 4.0, 7000),
		testRecord("Norway", "NOR", 2011, 97.0, 8.0, 23000),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(records, logger, nil)
}

func TestParseSelectionDefaults(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/kpis", nil)

	sel, err := s.parseSelection(req)
	if err != nil {
		t.Fatalf("parseSelection() error: %v", err)
	}
	if sel.Country != "France" {
		t.Errorf("default country = %q; want first alphabetically (France)", sel.Country)
	}
	if sel.FromYear != 2010 || sel.ToYear != 2011 {
		t.Errorf("default range = (%d, %d); want (2010, 2011)", sel.FromYear, sel.ToYear)
	}
	if sel.MapYear != 2011 {
		t.Errorf("default map year = %d; want latest (2011)", sel.MapYear)
	}
}

func TestParseSelectionInvalidYear(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/kpis?from=abc", nil)
	if _, err := s.parseSelection(req); err == nil {
		t.Fatalf("parseSelection() succeeded on from=abc, want error")
	}
}

func TestHandleRecords(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/records?country=Germany&from=2010&to=2010", nil)
	w := httptest.NewRecorder()
	s.handleRecords(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var resp struct {
		Country string                      `json:"country"`
		Records []dataset.ElectricityRecord `json:"records"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Country != "Germany" {
		t.Errorf("country = %q; want Germany", resp.Country)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(resp.Records))
	}
	if resp.Records[0].Year != 2010 || resp.Records[0].CountryCode != "DEU" {
		t.Errorf("record = %+v; want DEU 2010", resp.Records[0])
	}
}

func TestHandleKPIs(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/kpis?country=Germany", nil)
	w := httptest.NewRecorder()
	s.handleKPIs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var resp struct {
		Rows  int           `json:"rows"`
		Empty bool          `json:"empty"`
		Means dataset.Means `json:"means"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Empty || resp.Rows != 2 {
		t.Fatalf("rows = %d, empty = %v; want 2 rows, not empty", resp.Rows, resp.Empty)
	}
	if resp.Means.ElectricityUseKwhPerCapita != 7050 {
		t.Errorf("mean use = %v; want 7050", resp.Means.ElectricityUseKwhPerCapita)
	}
}

func TestHandleKPIsEmptySelection(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/kpis?country=Atlantis", nil)
	w := httptest.NewRecorder()
	s.handleKPIs(w, req)

	// An empty selection is skipped, never an error.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var resp struct {
		Empty bool `json:"empty"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Empty {
		t.Errorf("empty = false; want true for an unknown country")
	}
}

func TestHandleCountries(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
	w := httptest.NewRecorder()
	s.handleCountries(w, req)

	var resp struct {
		Countries []string `json:"countries"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []string{"France", "Germany", "Norway"}
	if len(resp.Countries) != len(want) {
		t.Fatalf("countries = %v; want %v", resp.Countries, want)
	}
	for i := range want {
		if resp.Countries[i] != want[i] {
			t.Fatalf("countries = %v; want %v (sorted)", resp.Countries, want)
		}
	}
}

func TestHandleIndex(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/?country=Norway&from=2011&to=2011", nil)
	w := httptest.NewRecorder()
	s.handleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Norway") {
		t.Errorf("index page does not mention the selected country")
	}
	if !strings.Contains(body, "23000") {
		t.Errorf("index page does not include the filtered data")
	}
}

func TestHandleIndexEmptySelection(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/?country=Atlantis", nil)
	w := httptest.NewRecorder()
	s.handleIndex(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No data for this selection") {
		t.Errorf("empty selection should render the no-data notice")
	}
}

func TestHandleDashboard(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/dashboard?country=Germany&map_year=2011", nil)
	w := httptest.NewRecorder()
	s.handleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q; want text/html", ct)
	}
	if w.Body.Len() == 0 {
		t.Errorf("dashboard page is empty")
	}
}

func TestHandleDashboardEmptySelection(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/dashboard?country=Atlantis", nil)
	w := httptest.NewRecorder()
	s.handleDashboard(w, req)

	// Country charts are skipped; the map and ranking views still render.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}

func TestHandleHealthAndReady(t *testing.T) {
	s := testServer()

	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/health status = %d; want 200", w.Code)
	}

	w = httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/ready status = %d; want 200", w.Code)
	}

	empty := NewServer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	w = httptest.NewRecorder()
	empty.handleReady(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("/ready with no dataset = %d; want 503", w.Code)
	}
}
