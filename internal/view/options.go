package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Options is the canonical table configuration produced by [Normalize].
type Options struct {
	Data        []Record
	Columns     []Column
	RowsPerPage int
	SortBy      string
	SortOrder   SortOrder
	ShowSearch  bool
	Locale      string

	// Translations overrides catalogue entries per locale.
	Translations map[string]map[string]string
}

// RawOptions is the loosely typed configuration accepted from JSON or callers.
// Field aliases (titulo, ancho, filtrable, opcionesSelect, traducciones) are
// folded into their canonical names by Normalize.
type RawOptions struct {
	Data         []Record                     `json:"data"`
	Columns      []RawColumn                  `json:"columns"`
	RowsPerPage  any                          `json:"rowsPerPage"`
	SortBy       string                       `json:"sortBy"`
	SortOrder    string                       `json:"sortOrder"`
	ShowSearch   *bool                        `json:"showSearch"`
	Locale       string                       `json:"locale"`
	Translations map[string]map[string]string `json:"translations"`
	Traducciones map[string]map[string]string `json:"traducciones"`
}

// RawColumn is a column as written in configuration.
type RawColumn struct {
	Key            string          `json:"key"`
	Title          string          `json:"title"`
	Titulo         string          `json:"titulo"`
	Width          string          `json:"width"`
	Ancho          string          `json:"ancho"`
	Sortable       *bool           `json:"sortable"`
	Filterable     *bool           `json:"filterable"`
	Filtrable      *bool           `json:"filtrable"`
	SelectOptions  json.RawMessage `json:"selectOptions"`
	OpcionesSelect json.RawMessage `json:"opcionesSelect"`

	// Render is not configurable from JSON.
	Render CellRenderFunc `json:"-"`
}

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "es"

// ParseOptions decodes JSON configuration and normalizes it.
func ParseOptions(data []byte, logger *slog.Logger) (Options, error) {
	var raw RawOptions
	if err := json.Unmarshal(data, &raw); err != nil {
		return Options{}, fmt.Errorf("parse table options: %w", err)
	}
	return Normalize(raw, logger), nil
}

// Normalize repairs and canonicalizes raw configuration. It never fails:
// missing column keys and titles get generated defaults and malformed option
// lists become empty, each with a warning on logger (slog.Default if nil).
func Normalize(raw RawOptions, logger *slog.Logger) Options {
	if logger == nil {
		logger = slog.Default()
	}

	opts := Options{
		Data:         raw.Data,
		RowsPerPage:  DefaultPageSize,
		SortBy:       raw.SortBy,
		SortOrder:    ParseSortOrder(raw.SortOrder),
		ShowSearch:   true,
		Locale:       raw.Locale,
		Translations: raw.Translations,
	}
	if raw.RowsPerPage != nil {
		opts.RowsPerPage = CoercePageSize(raw.RowsPerPage)
	}
	if raw.ShowSearch != nil {
		opts.ShowSearch = *raw.ShowSearch
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.Translations == nil {
		opts.Translations = raw.Traducciones
	}

	opts.Columns = make([]Column, len(raw.Columns))
	for i, rc := range raw.Columns {
		opts.Columns[i] = normalizeColumn(i, rc, logger)
	}

	return opts
}

func normalizeColumn(i int, rc RawColumn, logger *slog.Logger) Column {
	col := Column{
		Key:        rc.Key,
		Title:      firstNonEmpty(rc.Title, rc.Titulo),
		Width:      firstNonEmpty(rc.Width, rc.Ancho),
		Sortable:   true,
		Filterable: true,
		Render:     rc.Render,
	}

	if col.Key == "" {
		col.Key = fmt.Sprintf("col_%d", i)
		logger.Warn("column missing key, auto-assigned", "index", i, "key", col.Key)
	}
	if col.Title == "" {
		col.Title = fmt.Sprintf("Column %d", i)
		logger.Warn("column missing title, auto-assigned", "index", i, "title", col.Title)
	}
	if rc.Sortable != nil {
		col.Sortable = *rc.Sortable
	}
	if rc.Filterable != nil {
		col.Filterable = *rc.Filterable
	} else if rc.Filtrable != nil {
		col.Filterable = *rc.Filtrable
	}

	rawOpts := rc.SelectOptions
	if len(rawOpts) == 0 {
		rawOpts = rc.OpcionesSelect
	}
	if len(rawOpts) > 0 && !bytes.Equal(bytes.TrimSpace(rawOpts), []byte("null")) {
		options, err := parseSelectOptions(rawOpts)
		if err != nil {
			logger.Warn("column selectOptions should be an array", "key", col.Key, "error", err)
			options = []SelectOption{}
		}
		col.Options = options
	}

	return col
}

// parseSelectOptions accepts an array whose items are strings, numbers or
// {value, label} objects.
func parseSelectOptions(data []byte) ([]SelectOption, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	options := make([]SelectOption, 0, len(items))
	for _, item := range items {
		var obj struct {
			Value any    `json:"value"`
			Label string `json:"label"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			value, _ := Stringify(obj.Value)
			options = append(options, SelectOption{Value: value, Label: firstNonEmpty(obj.Label, value)})
			continue
		}

		var scalar any
		if err := json.Unmarshal(item, &scalar); err != nil {
			return nil, err
		}
		value, _ := Stringify(scalar)
		options = append(options, SelectOption{Value: value, Label: value})
	}
	return options, nil
}

// Label returns the display label for an option value, or the value itself.
func (c Column) Label(value string) string {
	for _, opt := range c.Options {
		if strings.EqualFold(opt.Value, value) {
			return opt.Label
		}
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
