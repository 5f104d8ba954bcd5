package locale

import (
	"testing"
)

func TestNew_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		locale     string
		wantLocale string
		wantAll    string
	}{
		{"es", "es", "Todos"},
		{"en", "en", "All"},
		{"", "es", "Todos"},
		{"fr", "fr", "Todos"},
	}

	for _, tt := range tests {
		tr := New(tt.locale, nil)
		if tr.Locale() != tt.wantLocale {
			t.Errorf("New(%q).Locale() = %q, want %q", tt.locale, tr.Locale(), tt.wantLocale)
		}
		if got := tr.T(All); got != tt.wantAll {
			t.Errorf("New(%q).T(All) = %q, want %q", tt.locale, got, tt.wantAll)
		}
	}
}

func TestNew_OverridesMergeOntoCatalog(t *testing.T) {
	tr := New("en", map[string]map[string]string{
		"en": {NoResults: "Nothing here", "custom": "Custom"},
		"es": {NoResults: "Nada"},
	})

	if got := tr.T(NoResults); got != "Nothing here" {
		t.Errorf("T(NoResults) = %q, want override", got)
	}
	if got := tr.T("custom"); got != "Custom" {
		t.Errorf("T(custom) = %q, want %q", got, "Custom")
	}
	if got := tr.T(Loading); got != "Loading..." {
		t.Errorf("T(Loading) = %q, want catalogue default", got)
	}
}

func TestOverridesDoNotLeakBetweenTranslators(t *testing.T) {
	_ = New("en", map[string]map[string]string{"en": {All: "Everything"}})

	if got := New("en", nil).T(All); got != "All" {
		t.Errorf("T(All) = %q after unrelated override, want %q", got, "All")
	}
}

func TestT_MissingKey(t *testing.T) {
	if got := New("en", nil).T("nope"); got != "[nope]" {
		t.Errorf("T(nope) = %q, want %q", got, "[nope]")
	}
}

func TestShowing(t *testing.T) {
	tests := []struct {
		locale   string
		filtered bool
		want     string
	}{
		{"en", false, "Showing 11–20 of 57 records"},
		{"en", true, "Showing 11–20 of 57 records (filtered)"},
		{"es", false, "Mostrando 11–20 de 57 registros"},
		{"es", true, "Mostrando 11–20 de 57 registros (filtrados)"},
	}

	for _, tt := range tests {
		if got := New(tt.locale, nil).Showing(11, 20, 57, tt.filtered); got != tt.want {
			t.Errorf("Showing(%s, filtered=%v) = %q, want %q", tt.locale, tt.filtered, got, tt.want)
		}
	}
}

func TestEmptyMessage(t *testing.T) {
	tr := New("en", nil)

	if got := tr.EmptyMessage(false); len(got) != 1 || got[0] != "No data available" {
		t.Errorf("EmptyMessage(false) = %v", got)
	}
	got := tr.EmptyMessage(true)
	if len(got) != 2 || got[0] != "No results found" || got[1] != "Try other search terms" {
		t.Errorf("EmptyMessage(true) = %v", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for k := range catalogs["es"] {
		if _, ok := catalogs["en"][k]; !ok {
			t.Errorf("key %q missing from en catalogue", k)
		}
	}
	for k := range catalogs["en"] {
		if _, ok := catalogs["es"][k]; !ok {
			t.Errorf("key %q missing from es catalogue", k)
		}
	}
}
