package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/auth"
)

// SessionState is the admin session as seen by the guard. Server-side the
// check is synchronous, so SessionLoading is only ever reported to the
// browser shell before its first session probe returns.
type SessionState int

const (
	SessionLoading SessionState = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// SessionVerifier validates a raw session cookie value.
type SessionVerifier interface {
	Session(raw string) (auth.Claims, error)
}

// LoginPath is where unauthenticated admin page requests are sent.
const LoginPath = "/admin/login"

// publicAdminPages are reachable without a session.
var publicAdminPages = map[string]struct{}{
	LoginPath:                {},
	"/admin/signup":          {},
	"/admin/forgot-password": {},
	"/admin/reset-password":  {},
}

// redirectBody is the only content an unauthenticated admin page request
// ever receives.
const redirectBody = `<!doctype html><meta charset="utf-8"><title>Redirecting…</title><p>Redirecting…</p>`

// AuthGuard protects admin pages and the admin API.
//
// A valid session stores the admin id and e-mail under CtxUserID and
// CtxAdminEmail. Otherwise admin pages answer 303 to the login page with the
// original path in ?next= and the admin API answers 401. A verifier error is
// treated like a missing session.
func AuthGuard(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		_, public := publicAdminPages[p]

		if claims, ok := verify(c, v); ok {
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxAdminEmail, claims.Email)
			c.Set(CtxSessionState, SessionAuthenticated)
			c.Next()
			return
		}
		c.Set(CtxSessionState, SessionUnauthenticated)
		if public {
			c.Next()
			return
		}

		if hasSegmentPrefix(p, "/api/admin") {
			authRejects.WithLabelValues("api").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "authentication required",
				"code":       "unauthorized",
				"request_id": RequestIDFrom(c),
			})
			return
		}

		authRejects.WithLabelValues("page").Inc()
		c.Header("Location", LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusSeeOther, "text/html; charset=utf-8", []byte(redirectBody))
		c.Abort()
	}
}

func verify(c *gin.Context, v SessionVerifier) (auth.Claims, bool) {
	raw, err := c.Cookie(auth.CookieName)
	if err != nil || raw == "" {
		return auth.Claims{}, false
	}
	claims, err := v.Session(raw)
	if err != nil {
		LoggerFrom(c).Debug().Err(err).Msg("admin session rejected")
		return auth.Claims{}, false
	}
	return claims, true
}

// SessionStateFrom reports what the guard decided for this request.
// Requests the guard never saw are SessionLoading.
func SessionStateFrom(c *gin.Context) SessionState {
	if v, ok := c.Get(CtxSessionState); ok {
		if s, ok := v.(SessionState); ok {
			return s
		}
	}
	return SessionLoading
}

// AdminFrom returns the authenticated admin id and e-mail, if any.
func AdminFrom(c *gin.Context) (id, email string, ok bool) {
	id = c.GetString(CtxUserID)
	return id, c.GetString(CtxAdminEmail), id != ""
}
