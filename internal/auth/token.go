package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// TokenConfig is the immutable signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

// TokenCodec issues and verifies signed, time-limited bearer tokens. Verification is
// stateless: a token is valid iff its signature checks out and it has not expired.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	parser *jwt.Parser
}

// Claims describes the JWT payload.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// NewTokenCodec builds a codec. HMAC algorithms only.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	// Claims validation is skipped here so expiry is checked afterwards against the
	// caller's clock, and only once the signature has been accepted.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)

	return &TokenCodec{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TTL,
		parser: parser,
	}, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subjectID valid from issuedAt for ttl. The returned ExpiresAt is
// the exact (second precision) instant encoded in the token.
func (c *TokenCodec) Issue(subjectID int64, issuedAt time.Time, ttl time.Duration) (domain.AccessToken, error) {
	if subjectID <= 0 {
		return domain.AccessToken{}, errors.New("subject id must be positive")
	}
	if ttl <= 0 {
		return domain.AccessToken{}, errors.New("token ttl must be positive")
	}

	iat := jwt.NewNumericDate(issuedAt)
	exp := jwt.NewNumericDate(issuedAt.Add(ttl))
	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return domain.AccessToken{}, err
	}
	return domain.AccessToken{
		Token:     signed,
		SubjectID: subjectID,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}

// Verify returns the subject of a token. Failures are domain.ErrInvalidToken for anything
// wrong with structure or signature, and domain.ErrExpiredToken when now >= exp.
func (c *TokenCodec) Verify(token string, now time.Time) (int64, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, domain.ErrInvalidToken
	}

	if claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return 0, domain.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return 0, domain.ErrInvalidToken
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return 0, domain.ErrExpiredToken
	}
	return claims.UserID, nil
}
