// Package auth issues and verifies admin session tokens and hashes admin
// passwords.
//
// Sessions are HS256 JWTs carried in an HttpOnly cookie. Passwords are
// stored as encoded argon2id hashes.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the admin session cookie.
const CookieName = "admin_session"

// ErrInvalidSession is returned for missing, malformed, expired or forged
// tokens.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the verified content of a session token.
type Claims struct {
	SessionID string
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager signs and parses session tokens.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager returns a manager signing with secret.
func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the given admin.
func (m *SessionManager) Issue(userID, email string) (string, Claims, error) {
	now := m.now().UTC()
	jti := uuid.NewString()
	cl := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return raw, Claims{
		SessionID: jti,
		UserID:    userID,
		Email:     email,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Parse verifies signature, algorithm, issuer and expiry.
func (m *SessionManager) Parse(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrInvalidSession
	}
	var out sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tkn.Valid || out.Subject == "" {
		return Claims{}, ErrInvalidSession
	}
	return Claims{
		SessionID: out.ID,
		UserID:    out.Subject,
		Email:     out.Email,
		IssuedAt:  out.IssuedAt.Time,
		ExpiresAt: out.ExpiresAt.Time,
	}, nil
}
