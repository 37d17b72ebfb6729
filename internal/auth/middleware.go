package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/observability"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectID int64
	Username  string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	sessions *SessionResolver
	metrics  *observability.Metrics
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionResolver, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err == nil {
		var user *domain.User
		user, err = m.sessions.Resolve(c.UserContext(), token)
		if err == nil {
			m.metrics.RecordSession("ok")
			c.Locals(principalKey, &Principal{SubjectID: user.ID, Username: user.Username})
			return c.Next()
		}
	}

	m.metrics.RecordSession(sessionOutcome(err))
	if isUnauthenticated(err) {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return err
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing authorization header: %w", domain.ErrInvalidToken)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("invalid authorization header: %w", domain.ErrInvalidToken)
	}
	return strings.TrimSpace(parts[1]), nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, domain.ErrInvalidToken) ||
		errors.Is(err, domain.ErrExpiredToken) ||
		errors.Is(err, domain.ErrUnknownSubject)
}

func sessionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, domain.ErrUnknownSubject):
		return "unknown_subject"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	default:
		return "error"
	}
}
