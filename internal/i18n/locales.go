// Package i18n resolves the active locale of a request and loads the
// translation bundle for it.
//
// Locale resolution is a pure function of three request inputs (the
// preference cookie, the Accept-Language header and an upstream geo-IP
// country header) so it can be tested without HTTP. The Gin middleware that
// calls it lives in internal/http/middleware.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// CookieName stores the visitor's locale preference.
	CookieName = "NEXT_LOCALE"
	// CookieMaxAge is one year in seconds.
	CookieMaxAge = 365 * 24 * 60 * 60
	// Default is used when nothing else matches.
	Default = "en"
)

// Supported lists every locale with a translation bundle, in switcher order.
var Supported = []string{
	"en", "pl", "de", "fr", "es", "it", "pt", "nl", "cs", "sk", "hu", "ro",
	"bg", "hr", "sl", "el", "sv", "da", "fi", "no", "et", "lv", "lt", "uk",
}

var supportedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Supported))
	for _, l := range Supported {
		m[l] = struct{}{}
	}
	return m
}()

// IsSupported reports whether code is one of the Supported locales. The
// check is exact: callers normalize first.
func IsSupported(code string) bool {
	_, ok := supportedSet[code]
	return ok
}

// Option is a locale switcher entry.
type Option struct {
	Code   string
	Label  string
	Active bool
}

// Options returns the switcher entries with active marking the current one.
// Labels are the native language names ("polski", "Deutsch").
func Options(active string) []Option {
	out := make([]Option, 0, len(Supported))
	for _, code := range Supported {
		out = append(out, Option{Code: code, Label: NativeName(code), Active: code == active})
	}
	return out
}

// NativeName returns the self-name of a locale, falling back to the code.
func NativeName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.Self.Name(tag)
	if name == "" {
		return code
	}
	return name
}

// primarySubtag lowercases s and returns the part before the first '-' or
// '_' ("en-US" → "en", "pt_BR" → "pt").
func primarySubtag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		s = s[:i]
	}
	return s
}
