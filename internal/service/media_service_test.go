package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
)

var (
	pngBytes  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01}
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
)

func TestMediaService_UploadListingImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Bike", Price: 1})
	require.NoError(t, err)

	media, err := f.media.UploadListingImage(ctx, a.ID, listing.ID, UploadInput{
		FileName:    "photo.PNG",
		ContentType: "image/png",
		Data:        pngBytes,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(media.FileName, ".png"))
	assert.Equal(t, "https://blobs.test/"+media.FileName, media.BlobURL)
	assert.Equal(t, domain.MediaFileTypeImage, media.FileType)
	require.NotNil(t, media.ListingID)
	assert.Equal(t, listing.ID, *media.ListingID)
	assert.Nil(t, media.UserID)
	assert.Equal(t, pngBytes, f.blobs.uploads[media.FileName])

	files, err := f.media.ListListingMedia(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	last := f.events[len(f.events)-1]
	assert.Equal(t, events.EventMediaUploaded, last.Type)
}

func TestMediaService_NonOwnerCannotUploadToListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	b := f.register(t, "bob", "pw2")
	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Bike", Price: 1})
	require.NoError(t, err)

	_, err = f.media.UploadListingImage(ctx, b.ID, listing.ID, UploadInput{FileName: "x.jpg", ContentType: "image/jpeg", Data: jpegBytes})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.blobs.uploads)

	_, err = f.media.UploadListingImage(ctx, b.ID, listing.ID+100, UploadInput{FileName: "x.jpg", ContentType: "image/jpeg", Data: jpegBytes})
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestMediaService_ProfileImageOnlyForSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	b := f.register(t, "bob", "pw2")
	in := UploadInput{FileName: "me.jpeg", ContentType: "image/jpeg", Data: jpegBytes}

	_, err := f.media.UploadProfileImage(ctx, b.ID, a.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	media, err := f.media.UploadProfileImage(ctx, a.ID, a.ID, in)
	require.NoError(t, err)
	require.NotNil(t, media.UserID)
	assert.Equal(t, a.ID, *media.UserID)

	files, err := f.media.ListUserMedia(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMediaService_RejectsBadFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")

	tests := []struct {
		name string
		in   UploadInput
	}{
		{"extension", UploadInput{FileName: "x.gif", ContentType: "image/gif", Data: pngBytes}},
		{"empty", UploadInput{FileName: "x.png", ContentType: "image/png"}},
		{"too large", UploadInput{FileName: "x.png", ContentType: "image/png", Data: append(append([]byte{}, pngBytes...), make([]byte, 64)...)}},
		{"content type", UploadInput{FileName: "x.png", ContentType: "text/plain", Data: pngBytes}},
		{"signature", UploadInput{FileName: "x.png", ContentType: "image/png", Data: jpegBytes}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.media.UploadProfileImage(ctx, a.ID, a.ID, tc.in)
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Empty(t, f.blobs.uploads)
}

func TestMediaService_BlobFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	in := UploadInput{FileName: "me.png", ContentType: "image/png", Data: pngBytes}

	f.blobs.err = errBlobDown
	_, err := f.media.UploadProfileImage(ctx, a.ID, a.ID, in)
	assert.ErrorIs(t, err, errBlobDown)

	disabled := NewMediaService(MediaDependencies{
		ListingRepo: f.store.Listings(),
		MediaRepo:   f.store.Media(),
	})
	_, err = disabled.UploadProfileImage(ctx, a.ID, a.ID, in)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, DefaultMaxUploadBytes, disabled.MaxBytes())
}
