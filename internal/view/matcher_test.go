package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func peopleColumns() []Column {
	return []Column{
		{Key: "id", Title: "ID", Sortable: true, Filterable: true},
		{Key: "name", Title: "Name", Sortable: true, Filterable: true},
		{Key: "city", Title: "City", Sortable: true, Filterable: true},
		{Key: "status", Title: "Status", Sortable: true, Filterable: true, Options: []SelectOption{
			{Value: "active", Label: "Active"},
			{Value: "inactive", Label: "Inactive"},
		}},
	}
}

func TestMatches_GlobalSearch(t *testing.T) {
	cols := peopleColumns()
	r := Record{"id": float64(7), "name": "David Fernández", "city": "Murcia", "status": "active"}

	tests := []struct {
		name   string
		search string
		want   bool
	}{
		{"empty search matches", "", true},
		{"substring of name", "fern", true},
		{"matches numeric value as text", "7", true},
		{"no column contains term", "madrid", false},
		{"search is compared lowercased", "murcia", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(r, cols, tt.search, nil))
		})
	}
}

func TestMatches_NilNeverMatchesSearch(t *testing.T) {
	cols := peopleColumns()
	r := Record{"id": nil, "name": nil, "city": nil, "status": nil}

	assert.False(t, Matches(r, cols, "nil", nil))
	assert.False(t, Matches(r, cols, "<nil>", nil))
}

func TestMatches_SearchOnlyLooksAtDeclaredColumns(t *testing.T) {
	cols := peopleColumns()
	r := Record{"name": "Ana", "secret": "needle"}

	assert.False(t, Matches(r, cols, "needle", nil))
}

func TestMatches_SelectFilterIsExact(t *testing.T) {
	cols := peopleColumns()
	active := Record{"status": "Active"}
	inactive := Record{"status": "inactive"}

	filters := Filters{"status": "active"}
	assert.True(t, Matches(active, cols, "", filters), "exact match is case-insensitive")
	assert.False(t, Matches(inactive, cols, "", filters), "'inactive' contains 'active' but is not equal")
}

func TestMatches_TextFilterIsSubstring(t *testing.T) {
	cols := peopleColumns()
	r := Record{"city": "Barcelona"}

	assert.True(t, Matches(r, cols, "", Filters{"city": "CELO"}))
	assert.False(t, Matches(r, cols, "", Filters{"city": "madrid"}))
}

func TestMatches_SkipsUnknownAndNonFilterableColumns(t *testing.T) {
	cols := peopleColumns()
	cols[2].Filterable = false
	r := Record{"city": "Bilbao"}

	assert.True(t, Matches(r, cols, "", Filters{"city": "zzz"}), "non-filterable column ignored")
	assert.True(t, Matches(r, cols, "", Filters{"gone": "zzz"}), "unknown column ignored")
}

func TestMatches_NilCellFailsNonBlankFilter(t *testing.T) {
	cols := peopleColumns()
	r := Record{"city": nil}

	assert.False(t, Matches(r, cols, "", Filters{"city": "a"}))
}

func TestMatches_AndComposition(t *testing.T) {
	cols := peopleColumns()
	rows := []Record{
		{"id": 1, "name": "Juan Pérez", "city": "Madrid", "status": "active"},
		{"id": 2, "name": "Ana García", "city": "Madrid", "status": "inactive"},
		{"id": 3, "name": "Juana Ruiz", "city": "Valencia", "status": "active"},
		{"id": 4, "name": "Juan Mora", "city": "Madrid", "status": "active"},
		{"id": 5, "name": "Pedro Juan", "city": "Madrid", "status": "active"},
	}
	filters := Filters{"city": "madrid", "status": "active"}
	search := "juan"

	var got []any
	for _, r := range rows {
		passesCity := Matches(r, cols, "", Filters{"city": "madrid"})
		passesStatus := Matches(r, cols, "", Filters{"status": "active"})
		passesSearch := Matches(r, cols, search, nil)

		combined := Matches(r, cols, search, filters)
		assert.Equal(t, passesCity && passesStatus && passesSearch, combined, "record %v", r["id"])
		if combined {
			got = append(got, r["id"])
		}
	}

	assert.Equal(t, []any{1, 4, 5}, got)
}

func TestMatcher_EmptyResultIsValid(t *testing.T) {
	cols := peopleColumns()
	m := NewMatcher(cols, "nobody", Filters{"city": "nowhere"})

	assert.False(t, m.Match(Record{"name": "Ana", "city": "Madrid"}))
}
