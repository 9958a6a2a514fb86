package extract

import (
	"strings"
	"testing"
)

const wideCSV = `"Data Source","World Development Indicators",
"Last Updated Date","2024-06-28",


"Country Name","Country Code","Indicator Name","1990","1991","1992"
"Germany","DEU","Renewable electricity output","12.5","","13.1"
"Aruba","ABW","Renewable electricity output","","",""
"France","FRA","Renewable electricity output","52.9","54.1","51.7"
`

func TestMeltWide(t *testing.T) {
	rows, err := MeltWide(strings.NewReader(wideCSV))
	if err != nil {
		t.Fatalf("MeltWide() error: %v", err)
	}

	// 5 non-missing metric cells in the fixture; the reshape must keep all
	// of them and nothing else.
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5 (one per non-missing cell)", len(rows))
	}

	first := rows[0]
	if first.CountryName != "Germany" || first.CountryCode != "DEU" {
		t.Errorf("first row identifiers = (%q, %q); want (Germany, DEU)", first.CountryName, first.CountryCode)
	}
	if first.Year != 1990 {
		t.Errorf("first row year = %d; want 1990", first.Year)
	}
	if first.Value != 12.5 {
		t.Errorf("first row value = %v; want 12.5", first.Value)
	}

	for _, row := range rows {
		if row.CountryCode == "ABW" {
			t.Errorf("row for ABW survived the melt; all its cells are empty")
		}
	}
}

func TestMeltWideSkipsNonDigitColumns(t *testing.T) {
	rows, err := MeltWide(strings.NewReader(wideCSV))
	if err != nil {
		t.Fatalf("MeltWide() error: %v", err)
	}
	for _, row := range rows {
		if row.Year < 1990 || row.Year > 1992 {
			t.Errorf("row year %d came from a non-year column", row.Year)
		}
	}
}

func TestMeltWideErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "missing identifier columns",
			input: "a\nb\nc\nd\n\"Name\",\"1990\"\n\"x\",\"1.0\"\n",
		},
		{
			name:  "no year columns",
			input: "a\nb\nc\nd\n\"Country Name\",\"Country Code\"\n\"x\",\"XXX\"\n",
		},
		{
			name:  "unparseable value",
			input: "a\nb\nc\nd\n\"Country Name\",\"Country Code\",\"1990\"\n\"x\",\"XXX\",\"abc\"\n",
		},
		{
			name:  "truncated metadata",
			input: "only one line\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MeltWide(strings.NewReader(tt.input)); err == nil {
				t.Fatalf("MeltWide() succeeded, want error")
			}
		})
	}
}

func TestDigitHeader(t *testing.T) {
	tests := []struct {
		in    string
		year  int
		valid bool
	}{
		{"1990", 1990, true},
		{"2023", 2023, true},
		{"", 0, false},
		{"Indicator Name", 0, false},
		{"19x0", 0, false},
		{"1990 ", 0, false},
	}
	for _, tt := range tests {
		year, ok := digitHeader(tt.in)
		if ok != tt.valid || year != tt.year {
			t.Errorf("digitHeader(%q) = (%d, %v); want (%d, %v)", tt.in, year, ok, tt.year, tt.valid)
		}
	}
}
