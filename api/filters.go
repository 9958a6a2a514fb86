package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// Selection is one interaction's filter state: the sidebar country and year
// range, plus the independent map/ranking year.
type Selection struct {
	Country  string
	FromYear int
	ToYear   int
	MapYear  int
}

// parseSelection reads the filter query params, falling back to the same
// defaults the sidebar starts with: first country alphabetically, the full
// year range, and the latest year for maps and rankings. An unknown country
// is not an error; it just selects nothing.
func (s *Server) parseSelection(r *http.Request) (Selection, error) {
	sel := Selection{
		FromYear: s.minYear,
		ToYear:   s.maxYear,
		MapYear:  s.maxYear,
	}
	if len(s.countries) > 0 {
		sel.Country = s.countries[0]
	}

	q := r.URL.Query()
	if country := q.Get("country"); country != "" {
		sel.Country = country
	}

	var err error
	if sel.FromYear, err = yearParam(q.Get("from"), sel.FromYear); err != nil {
		return Selection{}, err
	}
	if sel.ToYear, err = yearParam(q.Get("to"), sel.ToYear); err != nil {
		return Selection{}, err
	}
	if sel.MapYear, err = yearParam(q.Get("map_year"), sel.MapYear); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func yearParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}
