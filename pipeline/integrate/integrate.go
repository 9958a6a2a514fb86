// Package integrate joins the three normalized indicator tables into the
// final dataset through two sequential inner joins on (country_code, year):
// renewable with losses first, then the result with consumption.
package integrate

import "electricity-atlas/dataset"

// Records performs both inner joins. Any (country, year) missing from any one
// source yields no output row; that is the documented policy, not data loss.
// Country names come from the renewable (left) side, and output order follows
// the renewable table's order.
func Records(renewable, losses, consumption []dataset.IndicatorRow) []dataset.ElectricityRecord {
	lossesByKey := indexByKey(losses)
	consumptionByKey := indexByKey(consumption)

	var records []dataset.ElectricityRecord
	for _, row := range renewable {
		key := dataset.Key{CountryCode: row.CountryCode, Year: row.Year}
		loss, ok := lossesByKey[key]
		if !ok {
			continue
		}
		use, ok := consumptionByKey[key]
		if !ok {
			continue
		}
		records = append(records, dataset.ElectricityRecord{
			CountryName:                 row.CountryName,
			CountryCode:                 row.CountryCode,
			Year:                        row.Year,
			RenewableElectricityPercent: row.Value,
			ElectricityLossesPct:        loss,
			ElectricityUseKwhPerCapita:  use,
		})
	}
	return records
}

func indexByKey(rows []dataset.IndicatorRow) map[dataset.Key]float64 {
	index := make(map[dataset.Key]float64, len(rows))
	for _, row := range rows {
		index[dataset.Key{CountryCode: row.CountryCode, Year: row.Year}] = row.Value
	}
	return index
}
