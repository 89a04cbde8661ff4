package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/auth"
	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/notify"
	"github.com/tbourn/go-company-site/internal/repo"
)

// ResetTokenTTL is the lifetime of a password reset link.
const ResetTokenTTL = time.Hour

const minPasswordLen = 8

// AuthService implements admin login, signup and password reset.
type AuthService struct {
	DB       *gorm.DB
	Sessions *auth.SessionManager
	Hasher   *auth.Hasher
	Mailer   notify.Mailer

	// SignupEnabled allows signup when admins already exist. The first
	// admin can always sign up.
	SignupEnabled bool

	now func() time.Time
}

const authTracer = "services/AuthService"

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, auth.Claims, error) {
	ctx, span := startSpan(ctx, authTracer, "Login")
	defer span.End()

	u, err := repo.GetAdminUserByEmail(ctx, s.DB, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return "", auth.Claims{}, ErrInvalidCredentials
		}
		return "", auth.Claims{}, err
	}
	ok, err := s.Hasher.Verify(password, u.PasswordHash)
	if err != nil || !ok {
		return "", auth.Claims{}, ErrInvalidCredentials
	}
	return s.Sessions.Issue(u.ID, u.Email)
}

// Signup creates an admin account. It is refused once an admin exists
// unless SignupEnabled is set.
func (s *AuthService) Signup(ctx context.Context, email, password, displayName string) (*domain.AdminUser, error) {
	ctx, span := startSpan(ctx, authTracer, "Signup")
	defer span.End()

	if !s.SignupEnabled {
		n, err := repo.CountAdminUsers(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrSignupDisabled
		}
	}
	return s.createUser(ctx, email, password, displayName)
}

func (s *AuthService) createUser(ctx context.Context, email, password, displayName string) (*domain.AdminUser, error) {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateAdminUser(ctx, s.DB, normalizeEmail(email), strings.TrimSpace(displayName), hash)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Bootstrap creates the configured admin when no account exists yet. It
// reports whether an account was created.
func (s *AuthService) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := repo.CountAdminUsers(ctx, s.DB)
	if err != nil || n > 0 {
		return false, err
	}
	if _, err := s.createUser(ctx, email, password, "Administrator"); err != nil {
		return false, err
	}
	return true, nil
}

// ForgotPassword e-mails a one-hour reset link to email when it belongs to
// an admin. Unknown addresses and delivery failures are not reported, so
// the caller always answers the same way.
func (s *AuthService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	ctx, span := startSpan(ctx, authTracer, "ForgotPassword")
	defer span.End()

	logger := log.With().Str("component", "auth").Logger()
	u, err := repo.GetAdminUserByEmail(ctx, s.DB, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if _, err := repo.CreatePasswordReset(ctx, s.DB, u.ID, hashToken(token), s.clock().Add(ResetTokenTTL)); err != nil {
		return err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	link := resetURL + "?token=" + url.QueryEscape(token)
	html, err := notify.ResetHTML(link)
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, notify.Email{
		To:      []string{u.Email},
		Subject: "Reset your admin password",
		HTML:    html,
	}); err != nil {
		logger.Warn().Err(err).Str("user_id", u.ID).Msg("reset e-mail failed")
	}
	return nil
}

// ResetPassword sets a new password using a reset token. Each token works
// once.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	ctx, span := startSpan(ctx, authTracer, "ResetPassword")
	defer span.End()

	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrWeakPassword
	}
	now := s.clock()
	pr, err := repo.GetActivePasswordReset(ctx, s.DB, hashToken(token), now)
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ConsumePasswordReset(ctx, tx, pr.ID, now); err != nil {
			if isNotFound(err) {
				return ErrInvalidResetToken
			}
			return err
		}
		return repo.UpdatePasswordHash(ctx, tx, pr.UserID, hash)
	})
}

// Session verifies a raw session cookie value.
func (s *AuthService) Session(raw string) (auth.Claims, error) {
	return s.Sessions.Parse(raw)
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
