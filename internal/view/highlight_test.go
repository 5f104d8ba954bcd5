package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want []Segment
	}{
		{"empty text", "", "a", nil},
		{"no term", "Madrid", "", []Segment{{Text: "Madrid"}}},
		{"no occurrence", "Madrid", "xyz", []Segment{{Text: "Madrid"}}},
		{
			"case-insensitive middle",
			"Juan Pérez", "an p",
			[]Segment{{Text: "Ju"}, {Text: "an P", Match: true}, {Text: "érez"}},
		},
		{
			"repeated occurrences",
			"Banana", "an",
			[]Segment{{Text: "B"}, {Text: "an", Match: true}, {Text: "an", Match: true}, {Text: "a"}},
		},
		{
			"whole text",
			"ACTIVO", "activo",
			[]Segment{{Text: "ACTIVO", Match: true}},
		},
		{
			"regex metacharacters are literal",
			"cost (usd) 1.5", "(usd)",
			[]Segment{{Text: "cost "}, {Text: "(usd)", Match: true}, {Text: " 1.5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, tt.term))
		})
	}
}
