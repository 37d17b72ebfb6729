package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// userTable is a map-backed CredentialStore and SubjectStore.
type userTable struct {
	byID map[int64]*domain.User
	err  error
}

func newUserTable(users ...*domain.User) *userTable {
	table := &userTable{byID: map[int64]*domain.User{}}
	for _, u := range users {
		table.byID[u.ID] = u
	}
	return table
}

func (t *userTable) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if t.err != nil {
		return nil, t.err
	}
	for _, u := range t.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrResourceNotFound
}

func (t *userTable) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if t.err != nil {
		return nil, t.err
	}
	if u, ok := t.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrResourceNotFound
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost).Hash(plain)
	require.NoError(t, err)
	return h
}

func TestCredentialVerifier_Login(t *testing.T) {
	alice := &domain.User{ID: 1, Username: "alice", PasswordHash: hashed(t, "pw1"), CreatedAt: time.Now()}
	verifier := NewCredentialVerifier(newUserTable(alice), NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()

	id, err := verifier.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = verifier.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = verifier.Login(ctx, "bob", "pw1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCredentialVerifier_MalformedHashIsInvalidPassword(t *testing.T) {
	eve := &domain.User{ID: 2, Username: "eve", PasswordHash: "not-a-hash"}
	verifier := NewCredentialVerifier(newUserTable(eve), NewBcryptHasher(bcrypt.MinCost))

	_, err := verifier.Login(context.Background(), "eve", "anything")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	assert.ErrorIs(t, err, domain.ErrMalformedCredential)
}

func TestCredentialVerifier_StoreFailurePropagates(t *testing.T) {
	outage := errors.New("connection refused")
	table := newUserTable()
	table.err = outage
	verifier := NewCredentialVerifier(table, NewBcryptHasher(bcrypt.MinCost))

	_, err := verifier.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}
