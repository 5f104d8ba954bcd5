package view

import (
	"slices"
	"strings"
)

// Sort returns rows ordered by s. The input slice is not modified.
//
// The order is unchanged when s.Key is empty, unknown, or names a column that
// is not sortable. Values compare as lowercased strings (nil as ""), so
// numeric-looking values sort as text: "10" comes before "9". The sort is
// stable in both directions.
func Sort(rows []Record, s SortState, cols []Column) []Record {
	out := make([]Record, len(rows))
	copy(out, rows)
	sortInPlace(out, s, cols)
	return out
}

// sortInPlace is Sort without the copy; the pipeline owns its slice.
func sortInPlace(rows []Record, s SortState, cols []Column) {
	if !isSortable(s.Key, cols) || len(rows) < 2 {
		return
	}

	type keyed struct {
		key string
		row Record
	}

	keys := make([]keyed, len(rows))
	for i, r := range rows {
		v, _ := Stringify(r[s.Key])
		keys[i] = keyed{key: strings.ToLower(v), row: r}
	}

	desc := s.Order == Desc
	slices.SortStableFunc(keys, func(a, b keyed) int {
		c := strings.Compare(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})

	for i, k := range keys {
		rows[i] = k.row
	}
}

func isSortable(key string, cols []Column) bool {
	if key == "" {
		return false
	}
	for _, col := range cols {
		if col.Key == key {
			return col.Sortable
		}
	}
	return false
}
