package auth

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SubjectStore is the slice of the record store that session resolution needs.
type SubjectStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionResolver turns a bearer token into the user it names.
type SessionResolver struct {
	tokens *TokenCodec
	users  SubjectStore
	clock  func() time.Time
}

// NewSessionResolver constructs a resolver. A nil clock means time.Now.
func NewSessionResolver(tokens *TokenCodec, users SubjectStore, clock func() time.Time) *SessionResolver {
	if clock == nil {
		clock = time.Now
	}
	return &SessionResolver{tokens: tokens, users: users, clock: clock}
}

// Resolve verifies the token and confirms its subject still exists. Failures are
// domain.ErrInvalidToken, domain.ErrExpiredToken or domain.ErrUnknownSubject; store
// outages propagate unchanged.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	subjectID, err := r.tokens.Verify(token, r.clock())
	if err != nil {
		return nil, err
	}

	user, err := r.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrResourceNotFound) {
			return nil, domain.ErrUnknownSubject
		}
		return nil, err
	}
	return user, nil
}
