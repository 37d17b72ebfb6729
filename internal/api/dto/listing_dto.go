package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ListingCreateRequest carries the client-controlled listing fields. The owner is never
// read from the body.
type ListingCreateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ListingUpdateRequest carries optional listing changes.
type ListingUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// ListingResponse is the wire form of a listing.
type ListingResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	SellerID    int64     `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingListResponse is a page of listings.
type ListingListResponse struct {
	Items    []ListingResponse `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// Draft converts the request to domain input.
func (r ListingCreateRequest) Draft() domain.ListingDraft {
	return domain.ListingDraft{Title: r.Title, Description: r.Description, Price: r.Price}
}

// Patch converts the request to domain input.
func (r ListingUpdateRequest) Patch() domain.ListingPatch {
	return domain.ListingPatch{Title: r.Title, Description: r.Description, Price: r.Price}
}

// NewListingResponse converts a listing.
func NewListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		SellerID:    l.SellerID,
		CreatedAt:   l.CreatedAt.UTC(),
		UpdatedAt:   l.UpdatedAt.UTC(),
	}
}

// NewListingListResponse converts a page of listings.
func NewListingListResponse(listings []domain.Listing, page, pageSize int) ListingListResponse {
	items := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, NewListingResponse(&listings[i]))
	}
	return ListingListResponse{Items: items, Page: page, PageSize: pageSize}
}
