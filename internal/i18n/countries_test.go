package i18n

import "testing"

func TestCountryTableTargetsSupportedLocales(t *testing.T) {
	for country, locale := range countryLocale {
		if !IsSupported(locale) {
			t.Fatalf("country %s maps to unsupported locale %q", country, locale)
		}
	}
}

func TestLocaleForCountry(t *testing.T) {
	if l, ok := LocaleForCountry(" br "); !ok || l != "pt" {
		t.Fatalf("BR = %q,%v; want pt", l, ok)
	}
	if _, ok := LocaleForCountry(""); ok {
		t.Fatalf("empty country must not match")
	}
	if _, ok := LocaleForCountry("ZZ"); ok {
		t.Fatalf("unknown country must not match")
	}
}
