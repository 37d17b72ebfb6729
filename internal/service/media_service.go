package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/blobstore"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// DefaultMaxUploadBytes caps an upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// MediaService validates image uploads, stores them in the blob store and records them
// against a listing or a user profile.
type MediaService struct {
	listings   repository.ListingRepository
	media      repository.MediaRepository
	blobs      blobstore.Store
	maxBytes   int64
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      func() time.Time
}

// MediaDependencies bundles collaborators for the media service. A nil BlobStore disables
// uploads.
type MediaDependencies struct {
	ListingRepo repository.ListingRepository
	MediaRepo   repository.MediaRepository
	BlobStore   blobstore.Store
	MaxBytes    int64
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// UploadInput is one file received from a client.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// NewMediaService constructs the service.
func NewMediaService(deps MediaDependencies) *MediaService {
	maxBytes := deps.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{
		listings:   deps.ListingRepo,
		media:      deps.MediaRepo,
		blobs:      deps.BlobStore,
		maxBytes:   maxBytes,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		clock:      clock,
	}
}

// MaxBytes returns the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadListingImage attaches an image to a listing the subject owns.
func (s *MediaService) UploadListingImage(ctx context.Context, subjectID, listingID int64, in UploadInput) (*domain.MediaFile, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize("listing", subjectID, listing.SellerID); err != nil {
		return nil, err
	}

	media, err := s.store(ctx, "listing", in, &domain.MediaFile{ListingID: &listing.ID})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, subjectID, media, "listing")
	return media, nil
}

// UploadProfileImage attaches an image to the subject's own profile. userID is the target
// from the request path; it must equal the subject.
func (s *MediaService) UploadProfileImage(ctx context.Context, subjectID, userID int64, in UploadInput) (*domain.MediaFile, error) {
	if err := s.authorize("user", subjectID, userID); err != nil {
		return nil, err
	}

	media, err := s.store(ctx, "user", in, &domain.MediaFile{UserID: &userID})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, subjectID, media, "user")
	return media, nil
}

// ListListingMedia returns the media attached to a listing.
func (s *MediaService) ListListingMedia(ctx context.Context, listingID int64) ([]domain.MediaFile, error) {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.media.ListByListing(ctx, listingID)
}

// ListUserMedia returns the media attached to a user profile.
func (s *MediaService) ListUserMedia(ctx context.Context, userID int64) ([]domain.MediaFile, error) {
	return s.media.ListByUser(ctx, userID)
}

func (s *MediaService) authorize(resource string, subjectID, ownerID int64) error {
	decision := auth.Authorize(subjectID, ownerID)
	s.metrics.RecordOwnership(resource, decision.String())
	if decision != auth.Allow {
		s.metrics.RecordUpload(resource, "forbidden")
		return domain.ErrForbidden
	}
	return nil
}

func (s *MediaService) store(ctx context.Context, target string, in UploadInput, media *domain.MediaFile) (*domain.MediaFile, error) {
	if s.blobs == nil {
		s.metrics.RecordUpload(target, "unavailable")
		return nil, domain.ErrStorageUnavailable
	}

	ext, err := validateImage(in, s.maxBytes)
	if err != nil {
		s.metrics.RecordUpload(target, "rejected")
		return nil, err
	}

	name := uuid.NewString() + "." + ext
	url, err := s.blobs.Upload(ctx, in.Data, name, in.ContentType)
	if err != nil {
		s.metrics.RecordUpload(target, "error")
		return nil, err
	}

	media.FileName = name
	media.BlobURL = url
	media.FileType = domain.MediaFileTypeImage
	if err := s.media.Create(ctx, media); err != nil {
		s.logger.Error("media row not recorded after blob upload", zap.String("blob_url", url), zap.Error(err))
		s.metrics.RecordUpload(target, "error")
		return nil, err
	}
	s.metrics.RecordUpload(target, "ok")
	return media, nil
}

func (s *MediaService) publish(ctx context.Context, subjectID int64, media *domain.MediaFile, target string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventMediaUploaded,
		ActorID:   subjectID,
		ListingID: media.ListingID,
		Timestamp: s.clock().UTC(),
		Payload: events.MediaUploadedPayload{
			MediaID: media.ID,
			Target:  target,
			BlobURL: media.BlobURL,
		},
	})
}

// validateImage checks extension, size, declared content type and file signature, and
// returns the normalized extension.
func validateImage(in UploadInput, maxBytes int64) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.FileName), "."))
	switch ext {
	case "jpg", "jpeg", "png":
	default:
		return "", domain.NewValidationError("unsupported file type", map[string]any{
			"file":    "extension must be one of jpeg, jpg, png",
			"allowed": []string{"jpeg", "jpg", "png"},
		})
	}

	if len(in.Data) == 0 {
		return "", domain.NewValidationError("file is empty", nil)
	}
	if int64(len(in.Data)) > maxBytes {
		return "", domain.NewValidationError("file too large", map[string]any{"max_bytes": maxBytes})
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return "", domain.NewValidationError("file must be an image", map[string]any{"content_type": in.ContentType})
	}

	var magic []byte
	if ext == "png" {
		magic = pngMagic
	} else {
		magic = jpegMagic
	}
	if !bytes.HasPrefix(in.Data, magic) {
		return "", domain.NewValidationError("file content does not match its extension", nil)
	}
	return ext, nil
}
