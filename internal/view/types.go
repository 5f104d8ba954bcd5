package view

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one row of table data: column key -> scalar value.
// Values are typically string, float64 (JSON numbers), int, bool or nil.
// A record has no declared primary key; its identity is its position.
type Record map[string]any

// SelectOption is one choice of a select-style column filter.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CellRenderFunc produces the display text for a cell.
type CellRenderFunc func(value any, r Record) string

// Column declares a field of the table and how users may interact with it.
type Column struct {
	Key        string
	Title      string
	Width      string
	Sortable   bool
	Filterable bool

	// Options switches the column filter to exact matching against an
	// enumerated set. nil means a free-text (substring) filter; an empty,
	// non-nil slice still means exact matching.
	Options []SelectOption

	// Render overrides the display text of a cell. Filtering and sorting
	// always use the raw value.
	Render CellRenderFunc
}

// IsSelect reports whether the column filters by exact option match.
func (c Column) IsSelect() bool {
	return c.Options != nil
}

// Text returns the display text of the column's cell in r.
func (c Column) Text(r Record) string {
	v := r[c.Key]
	if c.Render != nil {
		return c.Render(v, r)
	}
	s, _ := Stringify(v)
	return s
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder maps "desc" (any case) to Desc and everything else to Asc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortState is the active sort. An empty Key means unsorted.
type SortState struct {
	Key   string    `json:"key"`
	Order SortOrder `json:"order"`
}

// Filters maps column key -> filter value. A key is present only while its
// filter is active; blank values are never stored.
type Filters map[string]string

// Set stores value for key, or deletes the entry when value is blank.
func (f Filters) Set(key, value string) {
	if strings.TrimSpace(value) == "" {
		delete(f, key)
		return
	}
	f[key] = value
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Stringify converts a cell value to the text used for matching and sorting.
// The second result is false for nil values.
func Stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return formatFloat(float64(val)), true
	case float64:
		return formatFloat(val), true
	case json.Number:
		return val.String(), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// formatFloat prints integral floats without a fraction ("25", not "25.0"),
// matching how JSON numbers read back as text.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeSearch trims and lowercases a global search term.
func NormalizeSearch(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
