package normalize

import (
	"testing"

	"electricity-atlas/dataset"
)

func TestToAlpha3(t *testing.T) {
	rows := []dataset.IndicatorRow{
		{CountryName: "United States", CountryCode: "US", Year: 2010, Value: 1.0},
		{CountryName: "Germany", CountryCode: "DEU", Year: 2010, Value: 2.0},
		{CountryName: "Africa Eastern and Southern", CountryCode: "ZH", Year: 2010, Value: 3.0},
		{CountryName: "World", CountryCode: "WLD", Year: 2010, Value: 4.0},
		{CountryName: "European Union", CountryCode: "EUU", Year: 2010, Value: 5.0},
		{CountryName: "France", CountryCode: "FR", Year: 2011, Value: 6.0},
	}

	normalized := ToAlpha3(rows)

	want := map[string]bool{"USA": true, "DEU": true, "FRA": true}
	if len(normalized) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(normalized), len(want), normalized)
	}
	for _, row := range normalized {
		if !want[row.CountryCode] {
			t.Errorf("unexpected code %q survived normalization", row.CountryCode)
		}
	}
}

func TestToAlpha3TranslatesInPlace(t *testing.T) {
	rows := []dataset.IndicatorRow{
		{CountryName: "United States", CountryCode: "US", Year: 2010, Value: 42.0},
	}
	normalized := ToAlpha3(rows)
	if len(normalized) != 1 {
		t.Fatalf("got %d rows, want 1", len(normalized))
	}
	got := normalized[0]
	if got.CountryCode != "USA" {
		t.Errorf("code = %q; want USA", got.CountryCode)
	}
	// Everything but the code is untouched.
	if got.CountryName != "United States" || got.Year != 2010 || got.Value != 42.0 {
		t.Errorf("row fields changed during normalization: %+v", got)
	}
	// The input slice is not mutated.
	if rows[0].CountryCode != "US" {
		t.Errorf("input row mutated: %+v", rows[0])
	}
}

func TestToAlpha3DropsUserAssignedCodes(t *testing.T) {
	rows := []dataset.IndicatorRow{
		{CountryName: "United States", CountryCode: "US", Year: 2010, Value: 1.0},
		{CountryName: "Kosovo", CountryCode: "XK", Year: 2010, Value: 2.0},
		{CountryName: "Africa Eastern and Southern", CountryCode: "ZH", Year: 2010, Value: 3.0},
		{CountryName: "World", CountryCode: "WLD", Year: 2010, Value: 4.0},
		{CountryName: "European Union", CountryCode: "EUU", Year: 2010, Value: 5.0},
		{CountryName: "Africa Eastern and Southern", CountryCode: "AFE", Year: 2010, Value: 6.0},
		{CountryName: "Germany", CountryCode: "DEU", Year: 2010, Value: 7.0},
	}

	normalized := ToAlpha3(rows)

	// Kosovo's XK translates to the user-assigned XKX, which is outside the
	// officially assigned set and must be dropped like the aggregates.
	want := map[string]bool{"USA": true, "DEU": true}
	got := map[string]bool{}
	for _, row := range normalized {
		got[row.CountryCode] = true
	}
	if len(got) != len(want) {
		t.Fatalf("surviving codes = %v; want %v", got, want)
	}
	for code := range want {
		if !got[code] {
			t.Errorf("missing expected code %q", code)
		}
	}
}

func TestToAlpha3AllSurvivorsValid(t *testing.T) {
	rows := []dataset.IndicatorRow{
		{CountryCode: "US"}, {CountryCode: "GB"}, {CountryCode: "JP"},
		{CountryCode: "BRA"}, {CountryCode: "IND"},
		{CountryCode: "XX"}, {CountryCode: "XK"},
	}
	for _, row := range ToAlpha3(rows) {
		if !ValidAlpha3(row.CountryCode) {
			t.Errorf("survivor %q is not a valid alpha-3 code", row.CountryCode)
		}
	}
}

func TestValidAlpha3(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"USA", true},
		{"DEU", true},
		{"GBR", true},
		{"QAT", true},  // assigned despite the Q prefix
		{"ZAF", true},  // assigned despite the Z prefix
		{"WLD", false}, // World Bank aggregate, not a country
		{"EUU", false},
		{"XKX", false}, // user-assigned (Kosovo)
		{"QMA", false}, // user-assigned range QM-QZ
		{"AAA", false},
		{"ZZZ", false},
		{"US", false}, // alpha-2, wrong length
		{"", false},
		{"XYZ", false},
	}
	for _, tt := range tests {
		if got := ValidAlpha3(tt.code); got != tt.want {
			t.Errorf("ValidAlpha3(%q) = %v; want %v", tt.code, got, tt.want)
		}
	}
}
