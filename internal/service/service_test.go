package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/repository/memory"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	now      time.Time
	tokens   *auth.TokenCodec
	metrics  *observability.Metrics
	auth     *AuthService
	listings *ListingService
	media    *MediaService
	blobs    *fakeBlobs
	events   []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: t0, metrics: observability.NewMetrics(), blobs: &fakeBlobs{}}
	clock := func() time.Time { return f.now }
	f.store = memory.New(clock)

	tokens, err := auth.NewTokenCodec(auth.TokenConfig{Secret: "test-secret", Algorithm: "HS256", TTL: time.Minute})
	require.NoError(t, err)
	f.tokens = tokens

	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{
		events.EventListingCreated,
		events.EventListingUpdated,
		events.EventListingDeleted,
		events.EventMediaUploaded,
	} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}

	f.auth = NewAuthService(AuthDependencies{
		UserRepo: f.store.Users(),
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   tokens,
		Metrics:  f.metrics,
		Clock:    clock,
	})
	f.listings = NewListingService(ListingDependencies{
		ListingRepo: f.store.Listings(),
		Dispatcher:  dispatcher,
		Metrics:     f.metrics,
		Clock:       clock,
	})
	f.media = NewMediaService(MediaDependencies{
		ListingRepo: f.store.Listings(),
		MediaRepo:   f.store.Media(),
		BlobStore:   f.blobs,
		MaxBytes:    64,
		Dispatcher:  dispatcher,
		Metrics:     f.metrics,
		Clock:       clock,
	})
	return f
}

func (f *fixture) register(t *testing.T, username, password string) *domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

type fakeBlobs struct {
	mu      sync.Mutex
	uploads map[string][]byte
	err     error
}

func (b *fakeBlobs) Upload(_ context.Context, data []byte, name, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	if b.uploads == nil {
		b.uploads = map[string][]byte{}
	}
	b.uploads[name] = data
	return "https://blobs.test/" + name, nil
}

var errBlobDown = errors.New("blob store down")
