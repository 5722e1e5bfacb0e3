// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements staff authentication for the admin API with HS256
// JSON Web Tokens. A token's subject identifies the staff member; it is
// stored in the Gin context and used as the actor for idempotency records,
// rate-limit buckets and the sender id of staff messages.
//
// Authentication is disabled when no secret is configured; every request is
// then attributed to DefaultStaffID.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultStaffID is the actor used when authentication is disabled.
const DefaultStaffID = "admin"

const ctxKeyStaff = "staffID"

// ErrMissingToken is returned by BearerToken when no bearer credentials are
// present.
var ErrMissingToken = errors.New("missing bearer token")

// StaffClaims are the JWT claims issued to staff members.
type StaffClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthOptions configures StaffAuth.
type AuthOptions struct {
	// Secret is the HS256 key. Empty disables authentication.
	Secret []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	// Leeway tolerates clock skew on exp/nbf/iat.
	Leeway time.Duration
}

// IssueToken signs a staff token for subject valid for ttl from now.
func IssueToken(secret []byte, issuer, subject, name string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("jwt subject is empty")
	}
	claims := StaffClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies raw and returns its claims.
func ParseToken(raw string, opts AuthOptions) (*StaffClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return opts.Secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(c *gin.Context) (string, error) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, tok, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(tok), nil
}

// StaffAuth rejects requests without a valid staff token with 401 and
// stores the token subject for StaffID.
func StaffAuth(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(opts.Secret) == 0 {
			c.Set(ctxKeyStaff, DefaultStaffID)
			c.Next()
			return
		}
		raw, err := BearerToken(c)
		if err != nil {
			unauthorized(c, "missing bearer token")
			return
		}
		claims, err := ParseToken(raw, opts)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Set(ctxKeyStaff, claims.Subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="lawdesk"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}

// StaffID returns the authenticated staff member, or DefaultStaffID.
func StaffID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyStaff); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return DefaultStaffID
}
