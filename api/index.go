package api

import (
	"fmt"
	"html/template"
	"net/http"

	"electricity-atlas/dataset"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Global Electricity Analysis</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
form { margin-bottom: 1.5rem; }
form label { margin-right: 1rem; }
.kpis { display: flex; gap: 2rem; margin-bottom: 1.5rem; }
.kpi { border: 1px solid #ddd; border-radius: 6px; padding: 1rem 1.5rem; }
.kpi .value { font-size: 1.6rem; font-weight: bold; }
.kpi .label { color: #666; font-size: 0.85rem; }
table { border-collapse: collapse; margin-top: 1.5rem; }
th, td { border: 1px solid #ddd; padding: 0.3rem 0.7rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
iframe { width: 100%; height: 3200px; border: none; }
.empty { color: #a00; }
</style>
</head>
<body>
<h1>Global Electricity Analysis</h1>
<p>Explore global electricity consumption, renewable electricity share, and
transmission and distribution losses from World Bank datasets.</p>

<form method="get" action="/">
	<label>Country
		<select name="country">
		{{range .Countries}}<option value="{{.}}"{{if eq . $.Selection.Country}} selected{{end}}>{{.}}</option>
		{{end}}</select>
	</label>
	<label>From <input type="number" name="from" value="{{.Selection.FromYear}}" min="{{.MinYear}}" max="{{.MaxYear}}"></label>
	<label>To <input type="number" name="to" value="{{.Selection.ToYear}}" min="{{.MinYear}}" max="{{.MaxYear}}"></label>
	<label>Map year <input type="number" name="map_year" value="{{.Selection.MapYear}}" min="{{.MinYear}}" max="{{.MaxYear}}"></label>
	<button type="submit">Apply</button>
</form>

{{if .HasData}}
<div class="kpis">
	<div class="kpi"><div class="value">{{printf "%.0f" .Means.ElectricityUseKwhPerCapita}}</div><div class="label">Mean electricity consumption (kWh per capita)</div></div>
	<div class="kpi"><div class="value">{{printf "%.1f" .Means.RenewableElectricityPercent}}</div><div class="label">Mean renewable electricity share (%)</div></div>
	<div class="kpi"><div class="value">{{printf "%.1f" .Means.ElectricityLossesPct}}</div><div class="label">Mean transmission and distribution losses (%)</div></div>
</div>
{{else}}
<p class="empty">No data for this selection.</p>
{{end}}

<iframe src="{{.DashboardURL}}"></iframe>

{{if .HasData}}
<h2>Detailed data for {{.Selection.Country}}</h2>
<table>
<tr><th>Country</th><th>Code</th><th>Year</th><th>Renewable (%)</th><th>Losses (%)</th><th>Use (kWh per capita)</th></tr>
{{range .Filtered}}<tr>
	<td>{{.CountryName}}</td><td>{{.CountryCode}}</td><td>{{.Year}}</td>
	<td>{{printf "%.1f" .RenewableElectricityPercent}}</td>
	<td>{{printf "%.1f" .ElectricityLossesPct}}</td>
	<td>{{printf "%.0f" .ElectricityUseKwhPerCapita}}</td>
</tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

type indexData struct {
	Countries    []string
	Selection    Selection
	MinYear      int
	MaxYear      int
	HasData      bool
	Means        dataset.Means
	Filtered     []dataset.ElectricityRecord
	DashboardURL string
}

// handleIndex renders the landing page: filters, KPI cards, the filtered data
// table, and the embedded chart page for the same selection.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
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
	means, hasData := dataset.ComputeMeans(filtered)

	data := indexData{
		Countries: s.countries,
		Selection: sel,
		MinYear:   s.minYear,
		MaxYear:   s.maxYear,
		HasData:   hasData,
		Means:     means,
		Filtered:  filtered,
		DashboardURL: fmt.Sprintf("/dashboard?country=%s&from=%d&to=%d&map_year=%d",
			template.URLQueryEscaper(sel.Country), sel.FromYear, sel.ToYear, sel.MapYear),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render index page", "error", err)
	}
}
