package source

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

func TestRead_CSV(t *testing.T) {
	input := "\xEF\xBB\xBFid,First Name,city,\n1,Ana,Madrid,x\n2,Luis\n,,,\n3,\"Pérez, J\",Bilbao,y\n"

	opts, err := Read(strings.NewReader(input), FormatAuto, nil)
	require.NoError(t, err)

	require.Len(t, opts.Columns, 4)
	assert.Equal(t, "id", opts.Columns[0].Key, "BOM stripped from first header")
	assert.Equal(t, "First Name", opts.Columns[1].Key)
	assert.Equal(t, "First Name", opts.Columns[1].Title)
	assert.Equal(t, "col_3", opts.Columns[3].Key)

	require.Len(t, opts.Data, 3, "blank row skipped")
	assert.Equal(t, "Ana", opts.Data[0]["First Name"])
	assert.Equal(t, "Luis", opts.Data[1]["First Name"])
	_, hasCity := opts.Data[1]["city"]
	assert.False(t, hasCity, "short row leaves trailing keys unset")
	assert.Equal(t, "Pérez, J", opts.Data[2]["First Name"])

	assert.Equal(t, view.DefaultPageSize, opts.RowsPerPage)
	assert.True(t, opts.ShowSearch)
}

func TestRead_TSV(t *testing.T) {
	opts, err := Read(strings.NewReader("a\tb\n1\t2\n"), FormatCSV, nil)
	require.NoError(t, err)

	require.Len(t, opts.Columns, 2)
	assert.Equal(t, "2", opts.Data[0]["b"])
}

func TestRead_DuplicateHeaders(t *testing.T) {
	opts, err := Read(strings.NewReader("name,name,name\na,b,c\n"), FormatCSV, nil)
	require.NoError(t, err)

	keys := []string{opts.Columns[0].Key, opts.Columns[1].Key, opts.Columns[2].Key}
	assert.Equal(t, []string{"name", "name_2", "name_3"}, keys)
	assert.Equal(t, "c", opts.Data[0]["name_3"])
}

func TestRead_JSONArray(t *testing.T) {
	opts, err := Read(strings.NewReader(`[{"name":"Ana","id":2},{"id":1,"age":30}]`), FormatAuto, nil)
	require.NoError(t, err)

	var keys []string
	for _, c := range opts.Columns {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"id", "age", "name"}, keys)
	assert.Equal(t, float64(2), opts.Data[0]["id"])
}

func TestRead_JSONOptionsDocument(t *testing.T) {
	doc := `{"rowsPerPage": 25, "locale": "en",
		"columns": [{"key": "estado", "titulo": "Estado", "selectOptions": ["activo"]}],
		"data": [{"estado": "activo"}]}`

	opts, err := Read(strings.NewReader(doc), FormatJSON, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, opts.RowsPerPage)
	assert.Equal(t, "en", opts.Locale)
	require.Len(t, opts.Columns, 1)
	assert.True(t, opts.Columns[0].IsSelect())
	assert.Len(t, opts.Data, 1)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("   \n"), FormatAuto, nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Read(strings.NewReader("a,b"), Format("xml"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Read(strings.NewReader(`[{"a":`), FormatJSON, nil)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Ana\n"), 0o644))

	opts, err := LoadFile(path, FormatAuto, nil)
	require.NoError(t, err)
	assert.Len(t, opts.Data, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), FormatAuto, nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.csv":  FormatCSV,
		"a.TSV":  FormatCSV,
		"a.json": FormatJSON,
		"a.txt":  FormatAuto,
		"noext":  FormatAuto,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"first_name": "First name",
		"id":         "Id",
		"año-fiscal": "Año fiscal",
		"":           "",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteQualified(t *testing.T) {
	tests := map[string]string{
		"invoices":         `"invoices"`,
		"billing.invoices": `"billing"."invoices"`,
		`we"ird`:           `"we""ird"`,
	}
	for in, want := range tests {
		if got := quoteQualified(in); got != want {
			t.Errorf("quoteQualified(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCellValue(t *testing.T) {
	var num pgtype.Numeric
	require.NoError(t, num.Scan("12.5"))

	id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int32 widened", int32(7), int64(7)},
		{"numeric", num, 12.5},
		{"invalid numeric", pgtype.Numeric{}, nil},
		{"date", pgtype.Date{Time: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Valid: true}, "2024-03-09"},
		{"midnight time", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"timestamp", time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC), "2024-03-09T14:05:00Z"},
		{"text", pgtype.Text{String: "hi", Valid: true}, "hi"},
		{"uuid", id, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"bytes", []byte("raw"), "raw"},
		{"big int", big.NewInt(42), "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellValue(tt.in))
		})
	}
}

func TestDemo(t *testing.T) {
	opts := Demo()

	assert.Len(t, opts.Data, 15)
	require.Len(t, opts.Columns, 5)
	assert.True(t, opts.Columns[4].IsSelect())
	assert.Equal(t, "25 años", opts.Columns[2].Text(opts.Data[0]))
	assert.Equal(t, "Activo", opts.Columns[4].Text(opts.Data[0]))

	rec := DemoRecord(16, nil)
	assert.Equal(t, 16, rec["id"])
	assert.Contains(t, []string{"activo", "inactivo"}, rec["estado"])
}
