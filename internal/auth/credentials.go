package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// CredentialStore is the slice of the record store that login needs.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// CredentialVerifier checks a username/password pair against stored credential records.
// It is read-only and holds no mutable state.
type CredentialVerifier struct {
	users  CredentialStore
	hasher PasswordHasher
}

// NewCredentialVerifier constructs a verifier.
func NewCredentialVerifier(users CredentialStore, hasher PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

// Login returns the subject id for valid credentials. It fails with domain.ErrUserNotFound
// when no record has the username and domain.ErrInvalidPassword when the password does not
// match, including when the stored hash is unreadable.
func (v *CredentialVerifier) Login(ctx context.Context, username, password string) (int64, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	ok, err := v.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidPassword, err)
	}
	if !ok {
		return 0, domain.ErrInvalidPassword
	}
	return user.ID, nil
}
