package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/http/middleware"
	"github.com/tbourn/go-company-site/internal/i18n"
	"github.com/tbourn/go-company-site/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS holds the stylesheet and the form script served under /static.
func StaticFS() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

// Public pages render inside layout.html; admin pages inside admin.html.
var (
	publicPages = []string{"home", "about", "careers", "job", "products", "category", "contact", "notfound", "error"}
	adminPages  = []string{"dashboard", "section", "login", "signup", "forgot-password", "reset-password"}
)

// AdminSections are the content and inbox screens of the admin shell.
var AdminSections = []string{
	"jobs", "categories", "products", "testimonials", "statistics",
	"messages", "applications", "enquiries",
}

// Pages renders the server-side HTML. Templates are parsed once at startup.
type Pages struct {
	tpl    map[string]*template.Template
	loader *i18n.Loader
	now    func() time.Time
}

// NewPages parses the embedded templates.
func NewPages(loader *i18n.Loader) (*Pages, error) {
	p := &Pages{tpl: make(map[string]*template.Template), loader: loader, now: time.Now}
	for _, name := range publicPages {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.tpl[name] = t
	}
	for _, name := range adminPages {
		t, err := template.ParseFS(templateFS, "templates/admin.html", "templates/admin-"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse admin %s: %w", name, err)
		}
		p.tpl["admin-"+name] = t
	}
	return p, nil
}

// view is the data every template receives.
type view struct {
	Locale  string
	Msg     i18n.Messages
	Locales []i18n.Option
	Path    string
	Year    string
	Title   string
	Data    any
}

func (p *Pages) render(c *gin.Context, status int, name, titleKey string, data any) {
	t, found := p.tpl[name]
	if !found {
		middleware.LoggerFrom(c).Error().Str("template", name).Msg("unknown template")
		c.Status(http.StatusInternalServerError)
		return
	}
	locale := middleware.LocaleFrom(c)
	msgs := p.loader.MustLoad(locale)
	title := msgs.T("meta.title")
	if titleKey != "" {
		title = msgs.T(titleKey) + " | " + title
	}
	v := view{
		Locale:  locale,
		Msg:     msgs,
		Locales: i18n.Options(locale),
		Path:    c.Request.URL.RequestURI(),
		Year:    strconv.Itoa(p.now().Year()),
		Title:   title,
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("template", name).Msg("render failed")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Vary", "Cookie, Accept-Language")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// pageError renders the not-found page for ErrNotFound and the generic error
// page for anything else.
func (p *Pages) pageError(c *gin.Context, op, id string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		p.render(c, http.StatusNotFound, "notfound", "errors.notFound", nil)
		return
	}
	middleware.LoggerFrom(c).Error().Err(err).Str("op", op).Str("id", id).Msg("page failed")
	p.render(c, http.StatusInternalServerError, "error", "", nil)
}

// MountPages registers the public pages on r. The routes are expected to run
// behind middleware.Locale.
func (h *Handlers) MountPages(r gin.IRoutes) {
	r.GET("/", h.Home)
	r.GET("/about", h.About)
	r.GET("/careers", h.Careers)
	r.GET("/careers/:id", h.Job)
	r.GET("/products", h.Products)
	r.GET("/products/:route", h.Category)
	r.GET("/contact", h.ContactPage)
}

// MountLocaleSwitch registers /locale/:code on r. It must not run behind
// middleware.Locale, which would set a second preference cookie.
func (h *Handlers) MountLocaleSwitch(r gin.IRoutes) {
	r.GET("/locale/:code", h.SwitchLocale)
}

// MountAdminPages registers the admin shell on g (/admin). Auth is enforced
// by middleware.AuthGuard on the group.
func (h *Handlers) MountAdminPages(g *gin.RouterGroup) {
	g.GET("", h.adminPage("dashboard", AdminSections))
	g.GET("/login", h.adminPage("login", nil))
	g.GET("/signup", h.adminPage("signup", nil))
	g.GET("/forgot-password", h.adminPage("forgot-password", nil))
	g.GET("/reset-password", h.adminPage("reset-password", nil))
	g.GET("/:section", h.AdminSection)
}

// Home renders the landing page.
func (h *Handlers) Home(c *gin.Context) {
	home, err := h.d.Reader.Home(c.Request.Context())
	if err != nil {
		h.d.Pages.pageError(c, "page.home", "", err)
		return
	}
	h.d.Pages.render(c, http.StatusOK, "home", "", home)
}

// About renders the static about page.
func (h *Handlers) About(c *gin.Context) {
	h.d.Pages.render(c, http.StatusOK, "about", "about.title", nil)
}

// Careers lists the open positions.
func (h *Handlers) Careers(c *gin.Context) {
	jobs, err := h.d.Reader.Careers(c.Request.Context())
	if err != nil {
		h.d.Pages.pageError(c, "page.careers", "", err)
		return
	}
	h.d.Pages.render(c, http.StatusOK, "careers", "careers.title", jobs)
}

// Job renders one active position with the application form.
func (h *Handlers) Job(c *gin.Context) {
	id := c.Param("id")
	job, err := h.d.Reader.Job(c.Request.Context(), id)
	if err != nil {
		h.d.Pages.pageError(c, "page.job", id, err)
		return
	}
	h.d.Pages.render(c, http.StatusOK, "job", "careers.title", job)
}

// Products lists the active categories.
func (h *Handlers) Products(c *gin.Context) {
	cats, err := h.d.Reader.Categories(c.Request.Context())
	if err != nil {
		h.d.Pages.pageError(c, "page.products", "", err)
		return
	}
	h.d.Pages.render(c, http.StatusOK, "products", "products.title", cats)
}

// Category renders a category page by its route.
func (h *Handlers) Category(c *gin.Context) {
	route := c.Param("route")
	page, err := h.d.Reader.Category(c.Request.Context(), route)
	if err != nil {
		h.d.Pages.pageError(c, "page.category", route, err)
		return
	}
	h.d.Pages.render(c, http.StatusOK, "category", "products.title", page)
}

// ContactPage renders the contact form.
func (h *Handlers) ContactPage(c *gin.Context) {
	h.d.Pages.render(c, http.StatusOK, "contact", "contact.title", nil)
}

// NotFoundPage renders the localized 404 page.
func (h *Handlers) NotFoundPage(c *gin.Context) {
	h.d.Pages.render(c, http.StatusNotFound, "notfound", "errors.notFound", nil)
}

// SwitchLocale godoc
// @Summary     Switch the site language
// @Description Stores the locale preference cookie and redirects to next (same-site paths only, default /).
// @Tags        Pages
// @Param       code  path   string  true   "Locale code, e.g. de"
// @Param       next  query  string  false  "Path to return to"
// @Success     303
// @Failure     400  {object}  handlers.ErrorResponse  "unsupported locale"
// @Router      /locale/{code} [get]
func (h *Handlers) SwitchLocale(c *gin.Context) {
	code := strings.ToLower(c.Param("code"))
	if !i18n.IsSupported(code) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unsupported locale")
		return
	}
	middleware.SetLocaleCookie(c, code, h.d.CookieSecure)
	c.Redirect(http.StatusSeeOther, safeNext(c.Query("next")))
}

// AdminSection renders one admin screen; unknown sections are 404.
func (h *Handlers) AdminSection(c *gin.Context) {
	section := c.Param("section")
	for _, s := range AdminSections {
		if s == section {
			h.adminPage("section", section)(c)
			return
		}
	}
	h.d.Pages.render(c, http.StatusNotFound, "notfound", "errors.notFound", nil)
}

// adminShell is the data of the admin templates.
type adminShell struct {
	State    string
	Email    string
	Sections []string
	Current  any
	Next     string
	Token    string
}

func (h *Handlers) adminPage(name string, data any) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, email, _ := middleware.AdminFrom(c)
		next := safeNext(c.Query("next"))
		if next == "/" {
			next = "/admin"
		}
		shell := adminShell{
			State:    middleware.SessionStateFrom(c).String(),
			Email:    email,
			Sections: AdminSections,
			Current:  data,
			Next:     next,
			Token:    c.Query("token"),
		}
		c.Header("Cache-Control", "no-store")
		h.d.Pages.render(c, http.StatusOK, "admin-"+name, "", shell)
	}
}

// safeNext keeps redirects on this site: only absolute paths without a host
// are accepted.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
