package i18n

import "strings"

// countryLocale maps ISO 3166-1 alpha-2 countries to a supported locale.
// Countries without an entry fall through to the default.
var countryLocale = map[string]string{
	"GB": "en", "US": "en", "IE": "en", "CA": "en", "AU": "en", "NZ": "en", "MT": "en",
	"PL": "pl",
	"DE": "de", "AT": "de", "CH": "de", "LI": "de",
	"FR": "fr", "BE": "fr", "LU": "fr", "MC": "fr",
	"ES": "es", "MX": "es", "AR": "es", "CO": "es", "CL": "es",
	"IT": "it", "SM": "it", "VA": "it",
	"PT": "pt", "BR": "pt",
	"NL": "nl",
	"CZ": "cs",
	"SK": "sk",
	"HU": "hu",
	"RO": "ro", "MD": "ro",
	"BG": "bg",
	"HR": "hr",
	"SI": "sl",
	"GR": "el", "CY": "el",
	"SE": "sv",
	"DK": "da",
	"FI": "fi",
	"NO": "no",
	"EE": "et",
	"LV": "lv",
	"LT": "lt",
	"UA": "uk",
}

// LocaleForCountry returns the locale mapped to an ISO alpha-2 country code.
func LocaleForCountry(country string) (string, bool) {
	l, ok := countryLocale[strings.ToUpper(strings.TrimSpace(country))]
	if !ok || !IsSupported(l) {
		return "", false
	}
	return l, true
}
