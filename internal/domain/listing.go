package domain

import "time"

// Listing is an item offered for sale. SellerID is the owning user and never changes.
type Listing struct {
	ID          int64
	Title       string
	Description string
	Price       float64
	SellerID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListingDraft holds the client-controlled fields of a listing.
type ListingDraft struct {
	Title       string
	Description string
	Price       float64
}

// ListingPatch holds optional field updates; nil means unchanged.
type ListingPatch struct {
	Title       *string
	Description *string
	Price       *float64
}

// NewListing assembles a listing from client fields plus the server-assigned id, owner and
// creation time. It is the only way a listing value is built from request input.
func NewListing(id, sellerID int64, draft ListingDraft, createdAt time.Time) *Listing {
	return &Listing{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Price:       draft.Price,
		SellerID:    sellerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// Apply returns a copy of the listing with the patch applied. Identity and ownership are
// carried over from the receiver.
func (l Listing) Apply(patch ListingPatch) Listing {
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.Price != nil {
		l.Price = *patch.Price
	}
	return l
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil
}
