package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// AuthService coordinates registration, login and profile lookups.
type AuthService struct {
	users    repository.UserRepository
	hasher   auth.PasswordHasher
	verifier *auth.CredentialVerifier
	tokens   *auth.TokenCodec
	metrics  *observability.Metrics
	logger   *zap.Logger
	clock    func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.PasswordHasher
	Tokens   *auth.TokenCodec
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Clock    func() time.Time
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		hasher:   deps.Hasher,
		verifier: auth.NewCredentialVerifier(deps.UserRepo, deps.Hasher),
		tokens:   deps.Tokens,
		metrics:  deps.Metrics,
		logger:   logger,
		clock:    clock,
	}
}

// Register creates a credential record. A taken username or email fails with a
// *domain.DuplicateIdentityError naming the field.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := validateRegistration(username, email, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		if existing.Username == username {
			return nil, &domain.DuplicateIdentityError{Field: "username", Value: username}
		}
		return nil, &domain.DuplicateIdentityError{Field: "email", Value: email}
	case !errors.Is(err, domain.ErrResourceNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues an access token for the subject.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.AccessToken, error) {
	subjectID, err := s.verifier.Login(ctx, username, password)
	if err != nil {
		s.metrics.RecordLogin(loginOutcome(err))
		if errors.Is(err, domain.ErrMalformedCredential) {
			s.logger.Error("stored password hash is unreadable", zap.String("username", username), zap.Error(err))
		}
		return domain.AccessToken{}, err
	}

	token, err := s.tokens.Issue(subjectID, s.clock(), s.tokens.TTL())
	if err != nil {
		s.metrics.RecordLogin("error")
		return domain.AccessToken{}, err
	}
	s.metrics.RecordLogin("ok")
	return token, nil
}

// Profile returns the public projection of a user.
func (s *AuthService) Profile(ctx context.Context, id int64) (domain.UserProfile, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return user.Profile(), nil
}

func validateRegistration(username, email, password string) error {
	details := map[string]any{}
	if username == "" {
		details["username"] = "required"
	} else if len(username) > 50 {
		details["username"] = "must be at most 50 characters"
	}
	if email == "" {
		details["email"] = "required"
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		details["email"] = "invalid email address"
	}
	if password == "" {
		details["password"] = "required"
	} else if len(password) > 72 {
		details["password"] = "must be at most 72 bytes"
	}
	if len(details) > 0 {
		return domain.NewValidationError("invalid registration", details)
	}
	return nil
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "invalid_password"
	default:
		return "error"
	}
}
