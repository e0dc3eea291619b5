package sessions

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
	"golang.org/x/crypto/hkdf"
)

const cookieKeyInfo = "gitfiti session cookie v1"

// CookieCodec signs session IDs into tamper-evident cookie values. A value is
// an HS256 JWT whose jti is the session ID and whose exp is the session
// expiry. The signing key is derived from the configured session secret.
type CookieCodec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func NewCookieCodec(secret, issuer string) (*CookieCodec, error) {
	if secret == "" {
		return nil, apperrors.Wrapf(apperrors.ErrConfigurationMissing, "session secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session cookie key: %w", err)
	}
	return &CookieCodec{
		key:    key,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (c *CookieCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID is required")
	}
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(c.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return value, nil
}

// Decode verifies a cookie value and returns the session ID it carries.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrSessionExpired
		}
		return "", apperrors.Wrapf(apperrors.ErrInvalidSession, "%v", err)
	}
	if claims.ID == "" {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSession, "missing session id")
	}
	return claims.ID, nil
}
