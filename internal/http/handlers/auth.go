package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/auth"
	"github.com/tbourn/go-company-site/internal/http/middleware"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email,max=255" example:"admin@example.com"`
	Password string `json:"password" binding:"required,max=1024"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email       string `json:"email"        binding:"required,email,max=255"`
	Password    string `json:"password"     binding:"required,max=1024"`
	DisplayName string `json:"display_name" binding:"max=255"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token"    binding:"required,max=256"`
	Password string `json:"password" binding:"required,max=1024"`
}

// SessionResponse describes the caller's admin session.
type SessionResponse struct {
	State     string     `json:"state"                example:"authenticated"`
	UserID    string     `json:"user_id,omitempty"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

const resetPasswordPath = "/admin/reset-password"

// MountAuth registers the admin authentication endpoints on g (/api/auth).
func (h *Handlers) MountAuth(g *gin.RouterGroup) {
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/signup", h.Signup)
	g.POST("/forgot-password", h.ForgotPassword)
	g.POST("/reset-password", h.ResetPassword)
	g.GET("/session", h.Session)
}

// Login godoc
// @Summary     Admin login
// @Description Verifies the credentials and sets the HttpOnly session cookie.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.SessionResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     401   {object}  handlers.ErrorResponse  "invalid email or password"
// @Failure     429   {object}  handlers.ErrorResponse
// @Router      /api/auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	token, claims, err := h.d.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failService(c, "auth.login", "", err)
		return
	}
	h.setSessionCookie(c, token, int(h.d.SessionTTL.Seconds()))
	middleware.LoggerFrom(c).Info().Str("admin_id", claims.UserID).Msg("admin login")
	ok(c, http.StatusOK, sessionBody(middleware.SessionAuthenticated, claims))
}

// Logout godoc
// @Summary     Admin logout
// @Description Clears the session cookie. Always succeeds.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.SuccessResponse
// @Router      /api/auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	success(c)
}

// Signup godoc
// @Summary     Create an admin account
// @Description Allowed while no admin exists, or always when signup is enabled in the configuration.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SignupRequest  true  "Account"
// @Success     201   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     403   {object}  handlers.ErrorResponse  "signup is disabled"
// @Failure     409   {object}  handlers.ErrorResponse  "email already registered"
// @Router      /api/auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	if _, err := h.d.Auth.Signup(c.Request.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		failService(c, "auth.signup", "", err)
		return
	}
	ok(c, http.StatusCreated, SuccessResponse{Success: true})
}

// ForgotPassword godoc
// @Summary     Request a password reset e-mail
// @Description Answers the same way whether or not the address belongs to an admin.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ForgotPasswordRequest  true  "Address"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /api/auth/forgot-password [post]
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	if err := h.d.Auth.ForgotPassword(c.Request.Context(), req.Email, h.d.PublicBaseURL+resetPasswordPath); err != nil {
		failService(c, "auth.forgot", "", err)
		return
	}
	success(c)
}

// ResetPassword godoc
// @Summary     Set a new password with a reset token
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ResetPasswordRequest  true  "Token and new password"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse  "reset token is invalid or expired"
// @Router      /api/auth/reset-password [post]
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	if err := h.d.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		failService(c, "auth.reset", "", err)
		return
	}
	success(c)
}

// Session godoc
// @Summary     Current session state
// @Description Reports authenticated or unauthenticated. Never fails; verification errors count as unauthenticated.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.SessionResponse
// @Router      /api/auth/session [get]
func (h *Handlers) Session(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	raw, err := c.Cookie(auth.CookieName)
	if err != nil || raw == "" {
		ok(c, http.StatusOK, SessionResponse{State: middleware.SessionUnauthenticated.String()})
		return
	}
	claims, err := h.d.Auth.Session(raw)
	if err != nil {
		ok(c, http.StatusOK, SessionResponse{State: middleware.SessionUnauthenticated.String()})
		return
	}
	ok(c, http.StatusOK, sessionBody(middleware.SessionAuthenticated, claims))
}

// AdminSession godoc
// @Summary     Signed-in admin
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.SessionResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /api/admin/session [get]
func (h *Handlers) AdminSession(c *gin.Context) {
	id, email, _ := middleware.AdminFrom(c)
	ok(c, http.StatusOK, SessionResponse{
		State:  middleware.SessionStateFrom(c).String(),
		UserID: id,
		Email:  email,
	})
}

func (h *Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionBody(state middleware.SessionState, claims auth.Claims) SessionResponse {
	exp := claims.ExpiresAt
	return SessionResponse{
		State:     state.String(),
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: &exp,
	}
}
