package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLength  = 200
	maxPrice        = 1e10
)

// ListingService coordinates listing workflows. Every mutation is gated on the stored
// owner of the listing.
type ListingService struct {
	listings   repository.ListingRepository
	cache      *cache.ListingCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      func() time.Time
}

// ListingDependencies bundles collaborators for the listing service.
type ListingDependencies struct {
	ListingRepo repository.ListingRepository
	Cache       *cache.ListingCache
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// ListingQuery describes a public listing search.
type ListingQuery struct {
	Keyword  string
	SellerID *int64
	Page     int
	PageSize int
}

// NewListingService constructs the service.
func NewListingService(deps ListingDependencies) *ListingService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		listings:   deps.ListingRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		clock:      clock,
	}
}

// Create stores a listing owned by the subject.
func (s *ListingService) Create(ctx context.Context, subjectID int64, draft domain.ListingDraft) (*domain.Listing, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	listing, err := s.listings.Create(ctx, subjectID, draft)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewListingEvent(events.EventListingCreated, subjectID, listing.ID, s.clock(), nil))
	return listing, nil
}

// Get returns a listing, served from cache when possible.
func (s *ListingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	if listing, ok := s.cache.Get(ctx, id); ok {
		return listing, nil
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, listing)
	return listing, nil
}

// List searches listings by keyword with page-based pagination.
func (s *ListingService) List(ctx context.Context, query ListingQuery) ([]domain.Listing, error) {
	page, size := NormalizePage(query.Page, query.PageSize)
	return s.listings.List(ctx, repository.ListingFilter{
		Keyword:  query.Keyword,
		SellerID: query.SellerID,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
}

// Update applies patch to a listing the subject owns. A listing owned by someone else is
// left untouched and domain.ErrForbidden is returned.
func (s *ListingService) Update(ctx context.Context, subjectID, id int64, patch domain.ListingPatch) (*domain.Listing, error) {
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	current, err := s.authorizeListing(ctx, subjectID, id)
	if err != nil {
		return nil, err
	}

	updated := current.Apply(patch)
	if err := s.listings.Update(ctx, &updated, current.SellerID); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	s.publish(ctx, events.NewListingEvent(events.EventListingUpdated, subjectID, id, s.clock(),
		events.ListingChangedPayload{Fields: patchedFields(patch)}))
	return &updated, nil
}

// Delete removes a listing the subject owns.
func (s *ListingService) Delete(ctx context.Context, subjectID, id int64) error {
	current, err := s.authorizeListing(ctx, subjectID, id)
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, id, current.SellerID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	s.publish(ctx, events.NewListingEvent(events.EventListingDeleted, subjectID, id, s.clock(), nil))
	return nil
}

// authorizeListing reads the stored listing, bypassing the cache, and checks ownership.
func (s *ListingService) authorizeListing(ctx context.Context, subjectID, id int64) (*domain.Listing, error) {
	current, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := auth.Authorize(subjectID, current.SellerID)
	s.metrics.RecordOwnership("listing", decision.String())
	if decision != auth.Allow {
		s.logger.Warn("listing mutation denied",
			zap.Int64("subject_id", subjectID),
			zap.Int64("listing_id", id))
		return nil, domain.ErrForbidden
	}
	return current, nil
}

func (s *ListingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func validateDraft(draft domain.ListingDraft) error {
	details := map[string]any{}
	if draft.Title == "" {
		details["title"] = "required"
	} else if len(draft.Title) > maxTitleLength {
		details["title"] = "too long"
	}
	if !validPrice(draft.Price) {
		details["price"] = "must be between 0 and 9999999999.99"
	}
	if len(details) > 0 {
		return domain.NewValidationError("invalid listing", details)
	}
	return nil
}

func validatePatch(patch *domain.ListingPatch) error {
	if patch.IsEmpty() {
		return domain.NewValidationError("no fields to update", nil)
	}
	details := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
		if title == "" {
			details["title"] = "must not be empty"
		} else if len(title) > maxTitleLength {
			details["title"] = "too long"
		}
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		patch.Description = &description
	}
	if patch.Price != nil && !validPrice(*patch.Price) {
		details["price"] = "must be between 0 and 9999999999.99"
	}
	if len(details) > 0 {
		return domain.NewValidationError("invalid listing", details)
	}
	return nil
}

// validPrice rejects NaN as well, since every comparison with it is false.
func validPrice(price float64) bool {
	return price >= 0 && price < maxPrice
}

func patchedFields(patch domain.ListingPatch) []string {
	var fields []string
	if patch.Title != nil {
		fields = append(fields, "title")
	}
	if patch.Description != nil {
		fields = append(fields, "description")
	}
	if patch.Price != nil {
		fields = append(fields, "price")
	}
	return fields
}

// NormalizePage clamps page to at least 1 and size to [1, 100], defaulting size to 20.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
