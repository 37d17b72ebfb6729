package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

func TestSessionResolver_Resolve(t *testing.T) {
	codec := newTestCodec(t)
	alice := &domain.User{ID: 1, Username: "alice"}
	now := issuedAt
	resolver := NewSessionResolver(codec, newUserTable(alice), func() time.Time { return now })

	token, err := codec.Issue(alice.ID, issuedAt, time.Minute)
	require.NoError(t, err)

	user, err := resolver.Resolve(context.Background(), token.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	now = issuedAt.Add(2 * time.Minute)
	_, err = resolver.Resolve(context.Background(), token.Token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestSessionResolver_UnknownSubject(t *testing.T) {
	codec := newTestCodec(t)
	resolver := NewSessionResolver(codec, newUserTable(), func() time.Time { return issuedAt })

	token, err := codec.Issue(99, issuedAt, time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token.Token)
	assert.ErrorIs(t, err, domain.ErrUnknownSubject)
}

func TestSessionResolver_InvalidTokenSkipsStore(t *testing.T) {
	table := newUserTable()
	table.err = errors.New("store must not be queried")
	resolver := NewSessionResolver(newTestCodec(t), table, nil)

	_, err := resolver.Resolve(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSessionResolver_StoreOutage(t *testing.T) {
	codec := newTestCodec(t)
	outage := errors.New("timeout")
	table := newUserTable()
	table.err = outage
	resolver := NewSessionResolver(codec, table, func() time.Time { return issuedAt })

	token, err := codec.Issue(1, issuedAt, time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token.Token)
	assert.ErrorIs(t, err, outage)
}
