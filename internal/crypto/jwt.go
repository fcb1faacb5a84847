package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

// Identity is the verified subject of a session token.
type Identity struct {
	Email  string
	UserID int64
}

// Claims is the session token payload: sub carries the email, id the user id.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies stateless session tokens signed with a
// shared HMAC secret. Tokens are never stored; they expire on their own.
type TokenManager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewTokenManager creates a TokenManager for the named HMAC algorithm
// (HS256, HS384 or HS512).
func NewTokenManager(secret, algorithm string) (*TokenManager, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	return &TokenManager{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for the user that expires ttl from now.
func (m *TokenManager) Issue(email string, userID int64, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token with %s: %w", m.method.Alg(), err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the identity the
// token was issued for. Every failure is reported as ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: claims.Subject, UserID: claims.UserID}, nil
}
