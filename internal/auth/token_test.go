package auth

import (
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

const testSecret = "unit-test-secret"

var issuedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{Secret: testSecret, Algorithm: "HS256", TTL: time.Minute})
	require.NoError(t, err)
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	for _, subject := range []int64{1, 42, 1 << 40} {
		token, err := codec.Issue(subject, issuedAt, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, issuedAt.Add(time.Hour), token.ExpiresAt)

		got, err := codec.Verify(token.Token, issuedAt)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
	}
}

func TestTokenCodec_Expiry(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(7, issuedAt, time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token.Token, issuedAt.Add(30*time.Second))
	assert.NoError(t, err)

	_, err = codec.Verify(token.Token, issuedAt.Add(61*time.Second))
	assert.ErrorIs(t, err, domain.ErrExpiredToken)

	_, err = codec.Verify(token.Token, token.ExpiresAt)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)

	_, err = codec.Verify(token.Token, token.ExpiresAt.Add(-time.Nanosecond))
	assert.NoError(t, err)
}

func TestTokenCodec_TamperedBytesAreInvalid(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(7, issuedAt, time.Minute)
	require.NoError(t, err)

	raw := []byte(token.Token)
	for i := range raw {
		tampered := append([]byte{}, raw...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		subject, err := codec.Verify(string(tampered), issuedAt)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "byte %d", i)
		assert.Zero(t, subject)
	}
}

func TestTokenCodec_ExpiredButTamperedIsInvalid(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(7, issuedAt, time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token.Token+"x", issuedAt.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenCodec_WrongKeyOrAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewTokenCodec(TokenConfig{Secret: "another-secret", Algorithm: "HS256", TTL: time.Minute})
	require.NoError(t, err)
	token, err := other.Issue(7, issuedAt, time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(token.Token, issuedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	hs512, err := NewTokenCodec(TokenConfig{Secret: testSecret, Algorithm: "HS512", TTL: time.Minute})
	require.NoError(t, err)
	token, err = hs512.Issue(7, issuedAt, time.Minute)
	require.NoError(t, err)
	_, err = codec.Verify(token.Token, issuedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Verify(unsigned, issuedAt)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenCodec_ClaimShape(t *testing.T) {
	codec := newTestCodec(t)
	sign := func(claims *Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(issuedAt.Add(time.Hour))

	tests := map[string]*Claims{
		"missing exp":      {UserID: 7, RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}},
		"zero user":        {UserID: 0, RegisteredClaims: jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}},
		"negative user":    {UserID: -3, RegisteredClaims: jwt.RegisteredClaims{Subject: "-3", ExpiresAt: exp}},
		"subject mismatch": {UserID: 7, RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.Itoa(8), ExpiresAt: exp}},
	}
	for name, claims := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(sign(claims), issuedAt)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec := newTestCodec(t)
	for _, token := range []string{"", "abc", "a.b.c", "..", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := codec.Verify(token, issuedAt)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", token)
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	_, err := NewTokenCodec(TokenConfig{Algorithm: "HS256", TTL: time.Minute})
	assert.Error(t, err)
	_, err = NewTokenCodec(TokenConfig{Secret: "s", Algorithm: "RS256", TTL: time.Minute})
	assert.Error(t, err)
	_, err = NewTokenCodec(TokenConfig{Secret: "s", Algorithm: "none", TTL: time.Minute})
	assert.Error(t, err)
	_, err = NewTokenCodec(TokenConfig{Secret: "s", Algorithm: "HS256"})
	assert.Error(t, err)
}

func TestTokenCodec_IssueRejectsBadInput(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.Issue(0, issuedAt, time.Minute)
	assert.Error(t, err)
	_, err = codec.Issue(1, issuedAt, 0)
	assert.Error(t, err)
}
