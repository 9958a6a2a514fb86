package dataset

import "sort"

// Frame operations backing the dashboard. All of them are pure: they copy
// rather than mutate their input, since handlers share one loaded dataset.

// Means holds the per-metric averages of a filtered selection.
type Means struct {
	ElectricityUseKwhPerCapita  float64 `json:"electricity_use_kwh_per_capita"`
	RenewableElectricityPercent float64 `json:"renewable_electricity_percent"`
	ElectricityLossesPct        float64 `json:"electricity_losses_pct"`
}

// IndexedPoint is one year of the base-year-100 comparison.
type IndexedPoint struct {
	Year                      int
	ElectricityUseIndex       float64
	RenewableElectricityIndex float64
	ElectricityLossesIndex    float64
}

// RankPoint is one country's consumption rank within one year.
type RankPoint struct {
	CountryName string `json:"country_name"`
	Year        int    `json:"year"`
	Rank        int    `json:"rank"`
}

// FilterCountryRange returns exactly the records matching the country name
// and the inclusive year range.
func FilterCountryRange(records []ElectricityRecord, country string, from, to int) []ElectricityRecord {
	var out []ElectricityRecord
	for _, rec := range records {
		if rec.CountryName == country && rec.Year >= from && rec.Year <= to {
			out = append(out, rec)
		}
	}
	return out
}

// FilterYear returns the records for a single year.
func FilterYear(records []ElectricityRecord, year int) []ElectricityRecord {
	var out []ElectricityRecord
	for _, rec := range records {
		if rec.Year == year {
			out = append(out, rec)
		}
	}
	return out
}

// ComputeMeans averages each metric over the selection. ok is false for an
// empty selection; callers skip rendering rather than divide by zero.
func ComputeMeans(records []ElectricityRecord) (m Means, ok bool) {
	if len(records) == 0 {
		return Means{}, false
	}
	for _, rec := range records {
		m.ElectricityUseKwhPerCapita += rec.ElectricityUseKwhPerCapita
		m.RenewableElectricityPercent += rec.RenewableElectricityPercent
		m.ElectricityLossesPct += rec.ElectricityLossesPct
	}
	n := float64(len(records))
	m.ElectricityUseKwhPerCapita /= n
	m.RenewableElectricityPercent /= n
	m.ElectricityLossesPct /= n
	return m, true
}

// SortByYear returns a copy sorted chronologically.
func SortByYear(records []ElectricityRecord) []ElectricityRecord {
	out := make([]ElectricityRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Indexed rebases every metric against the first chronological row, which by
// construction yields 100 for that row.
func Indexed(records []ElectricityRecord) []IndexedPoint {
	if len(records) == 0 {
		return nil
	}
	sorted := SortByYear(records)
	base := sorted[0]
	points := make([]IndexedPoint, 0, len(sorted))
	for _, rec := range sorted {
		points = append(points, IndexedPoint{
			Year:                      rec.Year,
			ElectricityUseIndex:       rec.ElectricityUseKwhPerCapita / base.ElectricityUseKwhPerCapita * 100,
			RenewableElectricityIndex: rec.RenewableElectricityPercent / base.RenewableElectricityPercent * 100,
			ElectricityLossesIndex:    rec.ElectricityLossesPct / base.ElectricityLossesPct * 100,
		})
	}
	return points
}

// TopByConsumption returns the n highest consumers within a year,
// sorted descending.
func TopByConsumption(records []ElectricityRecord, year, n int) []ElectricityRecord {
	yearRecords := FilterYear(records, year)
	sort.SliceStable(yearRecords, func(i, j int) bool {
		return yearRecords[i].ElectricityUseKwhPerCapita > yearRecords[j].ElectricityUseKwhPerCapita
	})
	if len(yearRecords) > n {
		yearRecords = yearRecords[:n]
	}
	return yearRecords
}

// RanksByYear ranks the given countries against each other per year by
// consumption, descending; ties break by input order (rank method "first").
func RanksByYear(records []ElectricityRecord, countryNames []string) []RankPoint {
	wanted := make(map[string]bool, len(countryNames))
	for _, name := range countryNames {
		wanted[name] = true
	}

	byYear := make(map[int][]ElectricityRecord)
	var years []int
	for _, rec := range records {
		if !wanted[rec.CountryName] {
			continue
		}
		if _, seen := byYear[rec.Year]; !seen {
			years = append(years, rec.Year)
		}
		byYear[rec.Year] = append(byYear[rec.Year], rec)
	}
	sort.Ints(years)

	var points []RankPoint
	for _, year := range years {
		group := byYear[year]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ElectricityUseKwhPerCapita > group[j].ElectricityUseKwhPerCapita
		})
		for i, rec := range group {
			points = append(points, RankPoint{CountryName: rec.CountryName, Year: year, Rank: i + 1})
		}
	}
	return points
}

// Countries returns the sorted distinct country names.
func Countries(records []ElectricityRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, rec := range records {
		if !seen[rec.CountryName] {
			seen[rec.CountryName] = true
			names = append(names, rec.CountryName)
		}
	}
	sort.Strings(names)
	return names
}

// YearBounds returns the min and max year present in the dataset.
func YearBounds(records []ElectricityRecord) (min, max int) {
	if len(records) == 0 {
		return 0, 0
	}
	min, max = records[0].Year, records[0].Year
	for _, rec := range records[1:] {
		if rec.Year < min {
			min = rec.Year
		}
		if rec.Year > max {
			max = rec.Year
		}
	}
	return min, max
}
