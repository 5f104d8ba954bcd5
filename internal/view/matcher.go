package view

import "strings"

// columnFilter is a filter resolved against its column.
type columnFilter struct {
	key   string
	value string // lowercased
	exact bool
}

// Matcher decides whether records pass a search term and a set of column
// filters. Build it once per pipeline run with [NewMatcher]; it resolves
// columns and lowercases filter values up front.
type Matcher struct {
	searchKeys []string
	search     string
	filters    []columnFilter
}

// NewMatcher prepares a matcher. search is expected to be normalized
// (see [NormalizeSearch]). Filters on blank values, unknown columns, or
// non-filterable columns are dropped.
func NewMatcher(cols []Column, search string, filters Filters) *Matcher {
	m := &Matcher{search: search}

	byKey := make(map[string]Column, len(cols))
	for _, col := range cols {
		byKey[col.Key] = col
		m.searchKeys = append(m.searchKeys, col.Key)
	}

	for key, value := range filters {
		if value == "" {
			continue
		}
		col, ok := byKey[key]
		if !ok || !col.Filterable {
			continue
		}
		m.filters = append(m.filters, columnFilter{
			key:   key,
			value: strings.ToLower(value),
			exact: col.IsSelect(),
		})
	}

	return m
}

// Match reports whether r passes the global search and every column filter.
func (m *Matcher) Match(r Record) bool {
	if m.search != "" && !m.matchSearch(r) {
		return false
	}

	for _, f := range m.filters {
		cell, _ := Stringify(r[f.key])
		cell = strings.ToLower(cell)
		if f.exact {
			if cell != f.value {
				return false
			}
		} else if !strings.Contains(cell, f.value) {
			return false
		}
	}

	return true
}

// matchSearch reports whether any column value contains the search term.
// nil values never match.
func (m *Matcher) matchSearch(r Record) bool {
	for _, key := range m.searchKeys {
		s, ok := Stringify(r[key])
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), m.search) {
			return true
		}
	}
	return false
}

// Matches is the one-shot form of [NewMatcher] + [Matcher.Match].
func Matches(r Record, cols []Column, search string, filters Filters) bool {
	return NewMatcher(cols, search, filters).Match(r)
}
