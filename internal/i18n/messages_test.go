package i18n

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestNewLoader_AllBundlesEmbedded(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	for _, code := range Supported {
		m, err := l.Load(code)
		if err != nil {
			t.Fatalf("Load(%q): %v", code, err)
		}
		if m.Locale != code {
			t.Fatalf("Locale = %q; want %q", m.Locale, code)
		}
		if m.T("nav.home") == "nav.home" {
			t.Fatalf("%s: nav.home missing", code)
		}
	}
}

func TestLoad_UnsupportedLocale(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := l.Load("xx"); !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("expected ErrBundleNotFound, got %v", err)
	}
	if m := l.MustLoad("xx"); m.Locale != Default {
		t.Fatalf("MustLoad fallback = %q; want %q", m.Locale, Default)
	}
}

func TestMessages_FallbackChain(t *testing.T) {
	l, err := NewLoader()
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	de, _ := l.Load("de")
	en, _ := l.Load("en")

	if got := de.T("nav.home"); got != "Startseite" {
		t.Fatalf("de nav.home = %q", got)
	}
	// Partial bundle: falls back to English.
	if de.Has("home.heroTitle") {
		t.Fatalf("fixture expects de to lack home.heroTitle")
	}
	if got, want := de.T("home.heroTitle"), en.T("home.heroTitle"); got != want {
		t.Fatalf("fallback = %q; want %q", got, want)
	}
	// Unknown everywhere: the key itself.
	if got := de.T("no.such.key"); got != "no.such.key" {
		t.Fatalf("missing key = %q", got)
	}
	var zero Messages
	if got := zero.T("x"); got != "x" {
		t.Fatalf("zero Messages must not panic, got %q", got)
	}
}

func TestMessages_Tf(t *testing.T) {
	l, _ := NewLoader()
	en, _ := l.Load("en")
	got := en.Tf("footer.rights", "year", "2026")
	if got != "© 2026 Northwind Technologies. All rights reserved." {
		t.Fatalf("Tf = %q", got)
	}
	if got := en.Tf("footer.rights"); got != en.T("footer.rights") {
		t.Fatalf("Tf without pairs should equal T")
	}
}

func TestLoadFromFS_Errors(t *testing.T) {
	full := fstest.MapFS{}
	for _, code := range Supported {
		full["messages/"+code+".json"] = &fstest.MapFile{Data: []byte(`{"a":{"b":"c","n":1}}`)}
	}
	l, err := LoadFromFS(full)
	if err != nil {
		t.Fatalf("LoadFromFS: %v", err)
	}
	m, _ := l.Load("fi")
	if m.T("a.b") != "c" || m.T("a.n") != "1" {
		t.Fatalf("flatten failed: a.b=%q a.n=%q", m.T("a.b"), m.T("a.n"))
	}

	missing := fstest.MapFS{"messages/en.json": &fstest.MapFile{Data: []byte(`{}`)}}
	if _, err := LoadFromFS(missing); err == nil {
		t.Fatalf("expected error when bundles are missing")
	}

	bad := fstest.MapFS{}
	for k, v := range full {
		bad[k] = v
	}
	bad["messages/pl.json"] = &fstest.MapFile{Data: []byte(`{not json`)}
	if _, err := LoadFromFS(bad); err == nil {
		t.Fatalf("expected parse error")
	}

	extra := fstest.MapFS{}
	for k, v := range full {
		extra[k] = v
	}
	extra["messages/xx.json"] = &fstest.MapFile{Data: []byte(`{}`)}
	if _, err := LoadFromFS(extra); err == nil {
		t.Fatalf("expected error for unsupported bundle")
	}
}
