package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-service/internal/domain"
)

var testSecret = []byte("unit-test-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(t *testing.T, now time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, TTL: 30 * time.Minute}, WithClock(fixedClock(now)))
	require.NoError(t, err)
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 500, time.UTC)
	codec := newTestCodec(t, now)

	for _, isAdmin := range []bool{false, true} {
		claims := codec.NewClaims("alice12", isAdmin)
		require.Equal(t, now.Add(30*time.Minute).Truncate(time.Second), claims.ExpiresAt)

		token, err := codec.Encode(claims)
		require.NoError(t, err)

		decoded, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, claims, decoded)
	}
}

func TestTokenCodec_ExpiredAfterTTL(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token, err := newTestCodec(t, issuedAt).Encode(newTestCodec(t, issuedAt).NewClaims("alice12", false))
	require.NoError(t, err)

	stillValid := newTestCodec(t, issuedAt.Add(29*time.Minute))
	_, err = stillValid.Decode(token)
	require.NoError(t, err)

	later := newTestCodec(t, issuedAt.Add(31*time.Minute))
	_, err = later.Decode(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_ValidThroughExpirySecond(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	claims := newTestCodec(t, issuedAt).NewClaims("alice12", false)
	token, err := newTestCodec(t, issuedAt).Encode(claims)
	require.NoError(t, err)

	decoded, err := newTestCodec(t, claims.ExpiresAt).Decode(token)
	require.NoError(t, err)
	require.Equal(t, claims, decoded)

	_, err = newTestCodec(t, claims.ExpiresAt.Add(999*time.Millisecond)).Decode(token)
	require.NoError(t, err)

	_, err = newTestCodec(t, claims.ExpiresAt.Add(time.Second)).Decode(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_EncodeTruncatesFractionalExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)

	claims := domain.Claims{
		ID:        "fixed-id",
		Subject:   "alice12",
		ExpiresAt: now.Add(10*time.Minute + 500*time.Millisecond),
	}
	token, err := codec.Encode(claims)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	require.Equal(t, now.Add(10*time.Minute), decoded.ExpiresAt)

	claims.ExpiresAt = claims.ExpiresAt.Truncate(time.Second)
	require.Equal(t, claims, decoded)
}

func TestTokenCodec_InvalidTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)
	exp := now.Add(10 * time.Minute).Unix()

	sign := func(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key []byte) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return signed
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice12", "exp": exp}, []byte("other")),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "alice12", "exp": exp}, testSecret),
		"missing exp":  sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice12"}, testSecret),
		"expired and wrong secret": sign(t, jwt.SigningMethodHS256,
			jwt.MapClaims{"sub": "alice12", "exp": now.Add(-time.Hour).Unix()}, []byte("other")),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(token)
			require.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenCodec_NoneAlgorithmRejected(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, now)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice12",
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_EachIssuanceIsUnique(t *testing.T) {
	codec := newTestCodec(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	first, err := codec.Encode(codec.NewClaims("alice12", false))
	require.NoError(t, err)
	second, err := codec.Encode(codec.NewClaims("alice12", false))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestNewTokenCodec_Config(t *testing.T) {
	_, err := NewTokenCodec(TokenConfig{})
	require.Error(t, err)

	_, err = NewTokenCodec(TokenConfig{Secret: testSecret, Algorithm: "RS256"})
	require.Error(t, err)

	_, err = NewTokenCodec(TokenConfig{Secret: testSecret, Algorithm: "bogus"})
	require.Error(t, err)

	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, Algorithm: "HS384"})
	require.NoError(t, err)
	require.Equal(t, DefaultTokenTTL, codec.TTL())
}
