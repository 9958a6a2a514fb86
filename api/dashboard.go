package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"electricity-atlas/dataset"
)

// topCountryCount matches the "Top 10" ranking and bump views.
const topCountryCount = 10

// handleDashboard renders the full chart page for one filter selection.
// Country-filtered charts are skipped for an empty selection; the ranking and
// map views depend only on the map year and render over the whole dataset.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sel, err := s.parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filtered := dataset.SortByYear(dataset.FilterCountryRange(s.records, sel.Country, sel.FromYear, sel.ToYear))

	page := components.NewPage()
	page.PageTitle = "Global Electricity Analysis"
	page.SetLayout(components.PageFlexLayout)

	if len(filtered) > 0 {
		page.AddCharts(
			metricLine(filtered, "Electricity consumption per capita: "+sel.Country, "kWh per capita",
				func(rec dataset.ElectricityRecord) float64 { return rec.ElectricityUseKwhPerCapita }),
			metricLine(filtered, "Renewable electricity share: "+sel.Country, "renewable (%)",
				func(rec dataset.ElectricityRecord) float64 { return rec.RenewableElectricityPercent }),
			metricLine(filtered, "Transmission and distribution losses: "+sel.Country, "losses (%)",
				func(rec dataset.ElectricityRecord) float64 { return rec.ElectricityLossesPct }),
			dualAxisLine(filtered, sel.Country),
			indexedLine(filtered, sel.Country),
			usageLossesScatter(filtered, sel.Country),
		)
	}

	top := dataset.TopByConsumption(s.records, sel.MapYear, topCountryCount)
	if len(top) > 0 {
		page.AddCharts(
			topConsumersBar(top, sel.MapYear),
			rankBump(s.records, top),
		)
	}

	mapYearRecords := dataset.FilterYear(s.records, sel.MapYear)
	if len(mapYearRecords) > 0 {
		page.AddCharts(
			choropleth(mapYearRecords,
				fmt.Sprintf("Electricity consumption per capita (%d)", sel.MapYear),
				"kWh per capita",
				[]string{"#fff7bc", "#fe9929", "#cc4c02"},
				func(rec dataset.ElectricityRecord) float64 { return rec.ElectricityUseKwhPerCapita }),
			choropleth(mapYearRecords,
				fmt.Sprintf("Renewable electricity share (%d)", sel.MapYear),
				"renewable (%)",
				[]string{"#e5f5e0", "#a1d99b", "#31a354"},
				func(rec dataset.ElectricityRecord) float64 { return rec.RenewableElectricityPercent }),
		)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		s.logger.Error("failed to render dashboard page", "error", err)
	}
}

// =============================================================================
// CHART BUILDERS
// =============================================================================

func metricLine(records []dataset.ElectricityRecord, title, seriesName string, value func(dataset.ElectricityRecord) float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	years := make([]string, 0, len(records))
	data := make([]opts.LineData, 0, len(records))
	for _, rec := range records {
		years = append(years, strconv.Itoa(rec.Year))
		data = append(data, opts.LineData{Value: value(rec)})
	}
	line.SetXAxis(years).AddSeries(seriesName, data)
	return line
}

func dualAxisLine(records []dataset.ElectricityRecord, country string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Consumption vs renewable share: " + country}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh per capita", Type: "value"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "renewable (%)", Type: "value"})

	years := make([]string, 0, len(records))
	use := make([]opts.LineData, 0, len(records))
	renewable := make([]opts.LineData, 0, len(records))
	for _, rec := range records {
		years = append(years, strconv.Itoa(rec.Year))
		use = append(use, opts.LineData{Value: rec.ElectricityUseKwhPerCapita})
		renewable = append(renewable, opts.LineData{Value: rec.RenewableElectricityPercent})
	}
	line.SetXAxis(years).
		AddSeries("electricity use (kWh per capita)", use).
		AddSeries("renewable electricity (%)", renewable,
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	return line
}

func indexedLine(records []dataset.ElectricityRecord, country string) *charts.Line {
	points := dataset.Indexed(records)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Indexed comparison, base year = 100: " + country}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	years := make([]string, 0, len(points))
	use := make([]opts.LineData, 0, len(points))
	renewable := make([]opts.LineData, 0, len(points))
	losses := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		years = append(years, strconv.Itoa(p.Year))
		use = append(use, opts.LineData{Value: p.ElectricityUseIndex})
		renewable = append(renewable, opts.LineData{Value: p.RenewableElectricityIndex})
		losses = append(losses, opts.LineData{Value: p.ElectricityLossesIndex})
	}
	line.SetXAxis(years).
		AddSeries("electricity use index", use).
		AddSeries("renewable electricity index", renewable).
		AddSeries("losses index", losses)
	return line
}

func usageLossesScatter(records []dataset.ElectricityRecord, country string) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Electricity use vs losses: " + country}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "kWh per capita"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "losses (%)"}),
	)

	data := make([]opts.ScatterData, 0, len(records))
	for _, rec := range records {
		data = append(data, opts.ScatterData{
			Name:       strconv.Itoa(rec.Year),
			Value:      []interface{}{rec.ElectricityUseKwhPerCapita, rec.ElectricityLossesPct},
			SymbolSize: 10,
		})
	}
	scatter.AddSeries("observations", data)
	return scatter
}

func topConsumersBar(top []dataset.ElectricityRecord, year int) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top %d countries by electricity consumption (%d)", len(top), year)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	// Category axes run bottom-up once reversed, so feed ascending order to
	// put the largest consumer on top.
	names := make([]string, 0, len(top))
	data := make([]opts.BarData, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		names = append(names, top[i].CountryName)
		data = append(data, opts.BarData{Value: top[i].ElectricityUseKwhPerCapita})
	}
	bar.SetXAxis(names).AddSeries("kWh per capita", data)
	bar.XYReversal()
	return bar
}

func rankBump(records []dataset.ElectricityRecord, top []dataset.ElectricityRecord) *charts.Line {
	names := make([]string, 0, len(top))
	for _, rec := range top {
		names = append(names, rec.CountryName)
	}
	points := dataset.RanksByYear(records, names)

	rankByCountryYear := make(map[string]map[int]int, len(names))
	yearSet := make(map[int]bool)
	for _, p := range points {
		if rankByCountryYear[p.CountryName] == nil {
			rankByCountryYear[p.CountryName] = make(map[int]int)
		}
		rankByCountryYear[p.CountryName][p.Year] = p.Rank
		yearSet[p.Year] = true
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Rank of electricity consumption over time (1 = highest)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "rank", Type: "value"}),
	)

	labels := make([]string, 0, len(years))
	for _, year := range years {
		labels = append(labels, strconv.Itoa(year))
	}
	line.SetXAxis(labels)
	for _, name := range names {
		data := make([]opts.LineData, 0, len(years))
		for _, year := range years {
			if rank, ok := rankByCountryYear[name][year]; ok {
				data = append(data, opts.LineData{Value: rank})
			} else {
				data = append(data, opts.LineData{Value: nil})
			}
		}
		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	}
	return line
}

func choropleth(yearRecords []dataset.ElectricityRecord, title, seriesName string, colors []string, value func(dataset.ElectricityRecord) float64) *charts.Map {
	min, max := value(yearRecords[0]), value(yearRecords[0])
	data := make([]opts.MapData, 0, len(yearRecords))
	for _, rec := range yearRecords {
		v := value(rec)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		// The echarts world map keys regions by English name; countries the
		// map does not know simply render unshaded.
		data = append(data, opts.MapData{Name: rec.CountryName, Value: v})
	}

	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	m.AddSeries(seriesName, data)
	return m
}
