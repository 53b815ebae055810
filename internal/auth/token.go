package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/task-service/internal/domain"
)

// DefaultTokenTTL is used when TokenConfig.TTL is not positive.
const DefaultTokenTTL = 30 * time.Minute

// TokenConfig holds the signing parameters of a TokenCodec.
type TokenConfig struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
}

// TokenCodec signs and verifies session tokens. It performs no I/O and is
// safe for concurrent use.
type TokenCodec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

type sessionClaims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// NewTokenCodec builds a codec. Only HMAC algorithms are accepted.
func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &TokenCodec{
		secret: append([]byte(nil), cfg.Secret...),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime given to new claims.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// NewClaims builds the claim set for a fresh session expiring one TTL from now.
func (c *TokenCodec) NewClaims(username string, isAdmin bool) domain.Claims {
	return domain.Claims{
		ID:        uuid.NewString(),
		Subject:   username,
		IsAdmin:   isAdmin,
		ExpiresAt: c.now().Add(c.ttl).UTC().Truncate(time.Second),
	}
}

// Encode signs the claim set. The exp claim has whole-second precision, so
// ExpiresAt is truncated to the second before signing.
func (c *TokenCodec) Encode(claims domain.Claims) (string, error) {
	token := jwt.NewWithClaims(c.method, sessionClaims{
		IsAdmin: claims.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID,
			Subject:   claims.Subject,
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt.Truncate(time.Second)),
		},
	})
	return token.SignedString(c.secret)
}

// Decode verifies the token and returns its claims. A token is valid through
// the whole second named by exp. A correctly signed token past its expiry
// fails with ErrTokenExpired; every other failure is ErrTokenInvalid.
func (c *TokenCodec) Decode(tokenString string) (domain.Claims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Second),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return domain.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return domain.Claims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		IsAdmin:   claims.IsAdmin,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
