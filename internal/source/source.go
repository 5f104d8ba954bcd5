// Package source loads table data into memory.
//
// Every loader produces a complete [view.Options] (records plus column
// definitions) once, at host start. The table pipeline never goes back to a
// source; reloading means calling the loader again and handing the result
// to Table.Load.
//
// Supported sources:
//
//   - CSV files: the header row becomes the columns, in file order
//   - JSON files holding an array of objects: columns are inferred
//   - JSON files holding a table options object ({"data": [...], "columns": [...]})
//   - a PostgreSQL table (see LoadPostgres)
//   - the built-in demo dataset (see Demo)
package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

// MaxFileSize is the largest file LoadFile accepts.
const MaxFileSize = 100 * 1024 * 1024

var (
	// ErrUnsupportedSource is returned for formats no loader understands.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrFileTooLarge is returned when a file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for files with no content.
	ErrEmptyFile = errors.New("empty file")
)

// Format identifies a file encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV
	case ".json":
		return FormatJSON
	}
	return FormatAuto
}

// LoadFile reads path as format (detected from the extension when
// FormatAuto) and returns table options ready for view.New.
func LoadFile(path string, format Format, logger *slog.Logger) (view.Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return view.Options{}, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	if format == FormatAuto {
		format = DetectFormat(path)
	}
	opts, err := Read(f, format, logger)
	if err != nil {
		return view.Options{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return opts, nil
}

// Read decodes r as format. FormatAuto sniffs the first non-space byte:
// '[' or '{' means JSON, anything else CSV.
func Read(r io.Reader, format Format, logger *slog.Logger) (view.Options, error) {
	data, err := readAll(r)
	if err != nil {
		return view.Options{}, err
	}

	if format == FormatAuto {
		format = sniff(data)
	}

	switch format {
	case FormatCSV:
		return decodeCSV(data)
	case FormatJSON:
		return decodeJSON(data, logger)
	default:
		return view.Options{}, fmt.Errorf("%w: format %q", ErrUnsupportedSource, format)
	}
}

// readAll reads at most MaxFileSize bytes, strips a UTF-8 byte order mark
// and replaces invalid UTF-8 with '?'.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, MaxFileSize)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}
	return bytes.ToValidUTF8(data, []byte("?")), nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatCSV
}

// decodeCSV turns a header row plus data rows into string-valued records.
// Short rows leave trailing keys unset; extra fields are dropped.
func decodeCSV(data []byte) (view.Options, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return view.Options{}, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 1 && strings.Contains(header[0], "\t") {
		reader = csv.NewReader(bytes.NewReader(data))
		reader.Comma = '\t'
		reader.FieldsPerRecord = -1
		if header, err = reader.Read(); err != nil {
			return view.Options{}, fmt.Errorf("read csv header: %w", err)
		}
	}

	keys := headerKeys(header)
	var records []view.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return view.Options{}, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}

		rec := make(view.Record, len(keys))
		for i, key := range keys {
			if i < len(row) {
				rec[key] = row[i]
			}
		}
		records = append(records, rec)
	}

	cols := make([]view.Column, len(keys))
	for i, key := range keys {
		cols[i] = newColumn(key, strings.TrimSpace(header[i]))
	}

	return withDefaults(records, cols), nil
}

// headerKeys derives unique, non-empty record keys from a CSV header.
func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.TrimSpace(h)
		if key == "" {
			key = fmt.Sprintf("col_%d", i)
		}
		if n := seen[key]; n > 0 {
			seen[key] = n + 1
			key = fmt.Sprintf("%s_%d", key, n+1)
		} else {
			seen[key] = 1
		}
		keys[i] = key
	}
	return keys
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeJSON accepts an array of objects or a full options document.
func decodeJSON(data []byte, logger *slog.Logger) (view.Options, error) {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		opts, err := view.ParseOptions(data, logger)
		if err != nil {
			return view.Options{}, err
		}
		if len(opts.Columns) == 0 {
			opts.Columns = InferColumns(opts.Data)
		}
		return opts, nil
	}

	var records []view.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return view.Options{}, fmt.Errorf("parse json records: %w", err)
	}
	return withDefaults(records, InferColumns(records)), nil
}

// InferColumns builds sortable, filterable, free-text columns from the union
// of record keys, ordered by key with "id" first.
func InferColumns(records []view.Record) []view.Column {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "id" || keys[j] == "id" {
			return keys[i] == "id"
		}
		return keys[i] < keys[j]
	})

	cols := make([]view.Column, len(keys))
	for i, k := range keys {
		cols[i] = newColumn(k, "")
	}
	return cols
}

func newColumn(key, title string) view.Column {
	if title == "" {
		title = Humanize(key)
	}
	return view.Column{Key: key, Title: title, Sortable: true, Filterable: true}
}

// Humanize turns a record key into a column title: "first_name" -> "First name".
func Humanize(key string) string {
	s := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(key))
	if s == "" {
		return key
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func withDefaults(records []view.Record, cols []view.Column) view.Options {
	return view.Options{
		Data:        records,
		Columns:     cols,
		RowsPerPage: view.DefaultPageSize,
		SortOrder:   view.Asc,
		ShowSearch:  true,
		Locale:      view.DefaultLocale,
	}
}
