// Package locale holds the user-facing strings of the table renderers.
//
// Two catalogues ship built in, Spanish ("es", the default) and English
// ("en"). Per-table overrides are merged on top of the selected catalogue
// key by key, so a table only needs to supply the strings it changes.
//
// Summary strings use named placeholders:
//
//	{from} {to} {total}
//
// A key that is missing from both the overrides and the catalogue renders
// as "[key]" so gaps are visible instead of blank.
package locale

import (
	"strconv"
	"strings"
)

// Message keys.
const (
	SearchPlaceholder = "searchPlaceholder"
	NoResults         = "noResults"
	TryOtherTerms     = "tryOtherTerms"
	EmptyTable        = "emptyTable"
	Loading           = "loading"
	All               = "all"
	ShowingRecords    = "showingRecords"
	FilteredSuffix    = "filteredSuffix"
	Accept            = "accept"
	Cancel            = "cancel"
	Filter            = "filter"
	RowsPerPage       = "rowsPerPage"
	Previous          = "previous"
	Next              = "next"
	ClearFilters      = "clearFilters"
)

// Default is the locale used when none is configured or the configured one
// has no catalogue.
const Default = "es"

// Catalog maps message keys to text.
type Catalog map[string]string

var catalogs = map[string]Catalog{
	"es": {
		SearchPlaceholder: "Buscar...",
		NoResults:         "No se encontraron resultados",
		TryOtherTerms:     "Intenta con otros términos de búsqueda",
		EmptyTable:        "No hay datos disponibles",
		Loading:           "Cargando...",
		All:               "Todos",
		ShowingRecords:    "Mostrando {from}–{to} de {total} registros",
		FilteredSuffix:    "(filtrados)",
		Accept:            "Aceptar",
		Cancel:            "Cancelar",
		Filter:            "Filtrar",
		RowsPerPage:       "Registros por página",
		Previous:          "Anterior",
		Next:              "Siguiente",
		ClearFilters:      "Limpiar filtros",
	},
	"en": {
		SearchPlaceholder: "Search...",
		NoResults:         "No results found",
		TryOtherTerms:     "Try other search terms",
		EmptyTable:        "No data available",
		Loading:           "Loading...",
		All:               "All",
		ShowingRecords:    "Showing {from}–{to} of {total} records",
		FilteredSuffix:    "(filtered)",
		Accept:            "Accept",
		Cancel:            "Cancel",
		Filter:            "Filter",
		RowsPerPage:       "Rows per page",
		Previous:          "Previous",
		Next:              "Next",
		ClearFilters:      "Clear filters",
	},
}

// Supported reports whether a built-in catalogue exists for locale.
func Supported(locale string) bool {
	_, ok := catalogs[locale]
	return ok
}

// Locales returns the built-in locale codes.
func Locales() []string {
	return []string{"es", "en"}
}

// Translator resolves message keys for one locale.
type Translator struct {
	locale   string
	messages Catalog
}

// New builds a translator for locale with overrides keyed by locale.
// Unknown locales fall back to Default; overrides for the requested locale
// still apply.
func New(locale string, overrides map[string]map[string]string) *Translator {
	base, ok := catalogs[locale]
	if !ok {
		base = catalogs[Default]
		if locale == "" {
			locale = Default
		}
	}

	messages := make(Catalog, len(base))
	for k, v := range base {
		messages[k] = v
	}
	for k, v := range overrides[locale] {
		messages[k] = v
	}

	return &Translator{locale: locale, messages: messages}
}

// Locale returns the locale code the translator was built for.
func (t *Translator) Locale() string { return t.locale }

// T returns the text for key, or "[key]" when there is none.
func (t *Translator) T(key string) string {
	if msg, ok := t.messages[key]; ok {
		return msg
	}
	return "[" + key + "]"
}

// Showing formats the records summary, e.g. "Showing 11–20 of 57 records".
// filtered appends the filtered suffix.
func (t *Translator) Showing(from, to, total int, filtered bool) string {
	s := strings.NewReplacer(
		"{from}", strconv.Itoa(from),
		"{to}", strconv.Itoa(to),
		"{total}", strconv.Itoa(total),
	).Replace(t.T(ShowingRecords))
	if filtered {
		s += " " + t.T(FilteredSuffix)
	}
	return s
}

// EmptyMessage returns the lines shown in place of rows: a no-results
// message and a hint when a search or filter is active, otherwise the
// empty-table message.
func (t *Translator) EmptyMessage(filtered bool) []string {
	if filtered {
		return []string{t.T(NoResults), t.T(TryOtherTerms)}
	}
	return []string{t.T(EmptyTable)}
}
