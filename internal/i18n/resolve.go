package i18n

import "strings"

// Resolution is the outcome of locale detection for one request.
type Resolution struct {
	Locale string
	// FromCookie is true when a valid preference cookie decided the locale,
	// in which case the cookie must not be rewritten.
	FromCookie bool
}

// Resolve picks the request locale. Order: preference cookie, then the first
// supported language in Accept-Language (list order, quality weights
// ignored), then the geo-IP country, then Default. Malformed input never
// fails; it simply does not match.
func Resolve(cookie, acceptLanguage, geoCountry string) Resolution {
	if IsSupported(cookie) {
		return Resolution{Locale: cookie, FromCookie: true}
	}
	for _, code := range ParseAcceptLanguage(acceptLanguage) {
		if IsSupported(code) {
			return Resolution{Locale: code}
		}
	}
	if l, ok := LocaleForCountry(geoCountry); ok {
		return Resolution{Locale: l}
	}
	return Resolution{Locale: Default}
}

// ParseAcceptLanguage returns the primary subtags of an Accept-Language
// header in the order they appear, e.g. "de-CH;q=0.9, en" → [de en].
// Parameters (";q=…") are stripped and empty or wildcard entries skipped.
func ParseAcceptLanguage(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if i := strings.IndexByte(p, ';'); i >= 0 {
			p = p[:i]
		}
		code := primarySubtag(p)
		if code == "" || code == "*" {
			continue
		}
		out = append(out, code)
	}
	return out
}
