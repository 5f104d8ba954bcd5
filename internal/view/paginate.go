package view

import (
	"encoding/json"
	"strings"
)

// DefaultPageSize is used when a page size is missing or not a positive number.
const DefaultPageSize = 10

// PageSizeChoices are the page sizes renderers offer.
var PageSizeChoices = []int{10, 25, 50, 100}

// PageInfo is the pagination metadata for one render.
type PageInfo struct {
	Total     int `json:"total"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"` // at least 1, even when Total is 0
	Page      int `json:"page"`      // 1-based, within [1, PageCount]
	From      int `json:"from"`      // 1-based first record shown, 0 when empty
	To        int `json:"to"`        // 1-based last record shown, 0 when empty
	Start     int `json:"-"`         // slice bounds into the filtered view
	End       int `json:"-"`
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageInfo) HasNext() bool { return p.Total > 0 && p.Page < p.PageCount }

// Paginate computes page bounds for total records split into pages of size.
// A non-positive size falls back to DefaultPageSize; page is clamped into
// [1, PageCount].
func Paginate(total, size, page int) PageInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	pageCount := pageCountFor(total, size)
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	info := PageInfo{
		Total:     total,
		PageSize:  size,
		PageCount: pageCount,
		Page:      page,
		Start:     min((page-1)*size, total),
		End:       min(page*size, total),
	}
	if total > 0 {
		info.From = (page-1)*size + 1
		info.To = info.End
	}
	return info
}

func pageCountFor(total, size int) int {
	n := (total + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}

// CoercePageSize converts a loosely typed page size into a positive integer.
// Strings are read like parseInt (leading digits, "25px" -> 25), floats are
// truncated, and anything that does not yield a positive number becomes
// DefaultPageSize.
func CoercePageSize(v any) int {
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int32:
		n = int(val)
	case int64:
		n = int(val)
	case float32:
		n = int(val)
	case float64:
		n = int(val)
	case json.Number:
		n = leadingInt(val.String())
	case string:
		n = leadingInt(val)
	}
	if n <= 0 {
		return DefaultPageSize
	}
	return n
}

// leadingInt parses an optional sign and the leading run of digits,
// ignoring whatever follows. It returns 0 when there are no digits.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<30 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
