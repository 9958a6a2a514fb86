// Package normalize rewrites raw source country codes to ISO-3166 alpha-3.
// This is a lookup-and-filter: rows whose code cannot be resolved to a valid
// alpha-3 code (World Bank regional aggregates, income groups) are dropped.
package normalize

import (
	"github.com/biter777/countries"

	"electricity-atlas/dataset"
)

// ToAlpha3 maps every row's country code to ISO alpha-3. Two-letter codes are
// translated; codes already three letters long pass through. Rows that fail
// alpha-3 validation afterwards are excluded, never reported as errors.
func ToAlpha3(rows []dataset.IndicatorRow) []dataset.IndicatorRow {
	out := make([]dataset.IndicatorRow, 0, len(rows))
	for _, row := range rows {
		code := row.CountryCode
		if len(code) == 2 {
			code = alpha2ToAlpha3(code)
		}
		if !ValidAlpha3(code) {
			continue
		}
		row.CountryCode = code
		out = append(out, row)
	}
	return out
}

// alpha2ToAlpha3 translates an alpha-2 code, returning "" when the code does
// not name a country.
func alpha2ToAlpha3(code string) string {
	country := countries.ByName(code)
	if !country.IsValid() {
		return ""
	}
	return country.Alpha3()
}

// ValidAlpha3 reports whether code is an officially assigned ISO-3166 alpha-3
// code. The lookup library also knows user-assigned codes (XKX for Kosovo, for
// one), which are not part of the assigned set and must not pass.
func ValidAlpha3(code string) bool {
	if len(code) != 3 || userAssigned(code) {
		return false
	}
	return countries.ByName(code).IsValid()
}

// userAssigned reports whether an alpha-2 or alpha-3 code falls in the
// ISO-3166 user-assigned ranges: AA*, QM*-QZ*, X**, ZZ*.
func userAssigned(code string) bool {
	if code == "" {
		return false
	}
	switch {
	case code[0] == 'X':
		return true
	case len(code) >= 2 && code[0] == 'Q' && code[1] >= 'M' && code[1] <= 'Z':
		return true
	case len(code) >= 2 && (code[:2] == "AA" || code[:2] == "ZZ"):
		return true
	}
	return false
}
