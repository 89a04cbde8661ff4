package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/i18n"
)

// Gin context keys shared by the locale middleware, the auth guard and the
// handlers.
const (
	CtxLocale       = "locale"
	CtxUserID       = "userID"
	CtxAdminEmail   = "adminEmail"
	CtxSessionState = "sessionState"
)

// LocaleOptions configures Locale.
type LocaleOptions struct {
	// GeoHeaders are checked in order; the first non-empty value is taken as
	// the visitor's ISO 3166 country code.
	GeoHeaders []string
	// Secure marks the preference cookie Secure.
	Secure bool
}

// Locale resolves the request locale from the NEXT_LOCALE cookie, the
// Accept-Language header and the upstream geo country header, in that order,
// and stores it under CtxLocale. When the cookie did not decide, the detected
// locale is written back as the preference cookie.
//
// Admin pages and the admin API skip detection and are always English.
func Locale(opt LocaleOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAdminPath(c.Request.URL.Path) {
			c.Set(CtxLocale, i18n.Default)
			c.Next()
			return
		}

		cookie, _ := c.Cookie(i18n.CookieName)
		res := i18n.Resolve(cookie, c.GetHeader("Accept-Language"), geoCountry(c.Request, opt.GeoHeaders))
		if !res.FromCookie {
			SetLocaleCookie(c, res.Locale, opt.Secure)
		}
		c.Set(CtxLocale, res.Locale)
		c.Next()
	}
}

// SetLocaleCookie writes the one-year locale preference cookie.
func SetLocaleCookie(c *gin.Context, locale string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    locale,
		Path:     "/",
		MaxAge:   i18n.CookieMaxAge,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// LocaleFrom returns the locale chosen by Locale, or the default locale when
// the middleware did not run.
func LocaleFrom(c *gin.Context) string {
	if l := c.GetString(CtxLocale); l != "" {
		return l
	}
	return i18n.Default
}

func geoCountry(r *http.Request, headers []string) string {
	for _, h := range headers {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return ""
}

func isAdminPath(p string) bool {
	return hasSegmentPrefix(p, "/admin") || hasSegmentPrefix(p, "/api/admin")
}

// hasSegmentPrefix matches prefix as a whole path segment, so "/admin"
// covers "/admin" and "/admin/x" but not "/administrators".
func hasSegmentPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
