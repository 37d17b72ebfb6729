package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
)

func strPtr(s string) *string { return &s }

func TestListingService_OwnerCanUpdateOthersCannot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	b := f.register(t, "bob", "pw2")

	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Bike", Description: "red", Price: 100})
	require.NoError(t, err)
	assert.Equal(t, a.ID, listing.SellerID)

	assert.Equal(t, auth.Allow, auth.Authorize(a.ID, listing.SellerID))
	updated, err := f.listings.Update(ctx, a.ID, listing.ID, domain.ListingPatch{Title: strPtr("Blue bike")})
	require.NoError(t, err)
	assert.Equal(t, "Blue bike", updated.Title)
	assert.Equal(t, a.ID, updated.SellerID)

	assert.Equal(t, auth.Deny, auth.Authorize(b.ID, listing.SellerID))
	_, err = f.listings.Update(ctx, b.ID, listing.ID, domain.ListingPatch{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := f.listings.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue bike", stored.Title)
	assert.Equal(t, "red", stored.Description)

	decisions, err := testutil.GatherAndCount(f.metrics.Registry(), "marketplace_ownership_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, decisions)
}

func TestListingService_DeleteIsOwnerGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	b := f.register(t, "bob", "pw2")

	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Lamp", Price: 5})
	require.NoError(t, err)

	assert.ErrorIs(t, f.listings.Delete(ctx, b.ID, listing.ID), domain.ErrForbidden)
	_, err = f.listings.Get(ctx, listing.ID)
	require.NoError(t, err)

	require.NoError(t, f.listings.Delete(ctx, a.ID, listing.ID))
	_, err = f.listings.Get(ctx, listing.ID)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)

	assert.ErrorIs(t, f.listings.Delete(ctx, a.ID, listing.ID), domain.ErrResourceNotFound)
}

func TestListingService_EmitsEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")

	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Desk", Price: 40})
	require.NoError(t, err)
	_, err = f.listings.Update(ctx, a.ID, listing.ID, domain.ListingPatch{Title: strPtr("Oak desk")})
	require.NoError(t, err)
	require.NoError(t, f.listings.Delete(ctx, a.ID, listing.ID))

	require.Len(t, f.events, 3)
	assert.Equal(t, events.EventListingCreated, f.events[0].Type)
	assert.Equal(t, events.EventListingUpdated, f.events[1].Type)
	assert.Equal(t, events.ListingChangedPayload{Fields: []string{"title"}}, f.events[1].Payload)
	assert.Equal(t, events.EventListingDeleted, f.events[2].Type)
	assert.Equal(t, a.ID, f.events[2].ActorID)
}

func TestListingService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")

	var verr *domain.ValidationError
	_, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "  ", Price: 1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "title")

	_, err = f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Chair", Price: -1})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "price")

	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Chair", Price: 1})
	require.NoError(t, err)

	_, err = f.listings.Update(ctx, a.ID, listing.ID, domain.ListingPatch{})
	require.ErrorAs(t, err, &verr)
}

func TestListingService_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	for _, title := range []string{"Bike one", "Bike two", "Bike three", "Sofa"} {
		_, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: title, Price: 1})
		require.NoError(t, err)
	}

	page, err := f.listings.List(ctx, ListingQuery{Keyword: "bike", Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Bike three", page[0].Title)

	all, err := f.listings.List(ctx, ListingQuery{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAuthorize_IsPureAndRepeatable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "pw1")
	listing, err := f.listings.Create(ctx, a.ID, domain.ListingDraft{Title: "Bike", Price: 1})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, auth.Deny, auth.Authorize(a.ID+1, listing.SellerID))
		assert.Equal(t, auth.Allow, auth.Authorize(a.ID, listing.SellerID))
	}
	stored, err := f.listings.Get(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, *listing, *stored)
}
