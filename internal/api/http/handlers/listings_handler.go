package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

// ListingsHandler exposes listing CRUD.
type ListingsHandler struct {
	listings *service.ListingService
	media    *service.MediaService
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings *service.ListingService, media *service.MediaService) *ListingsHandler {
	return &ListingsHandler{listings: listings, media: media}
}

// Create handles POST /listings. The seller is the authenticated subject.
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	principal, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.ListingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid payload", nil)
	}

	listing, err := h.listings.Create(c.UserContext(), principal.SubjectID, req.Draft())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewListingResponse(listing))
}

// List handles GET /listings.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	query := service.ListingQuery{
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Query("seller_id"); raw != "" {
		sellerID := int64(c.QueryInt("seller_id"))
		if sellerID <= 0 {
			return domain.NewValidationError("invalid query parameter", map[string]any{"seller_id": "must be a positive integer"})
		}
		query.SellerID = &sellerID
	}

	listings, err := h.listings.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	page, pageSize = service.NormalizePage(page, pageSize)
	return c.JSON(dto.NewListingListResponse(listings, page, pageSize))
}

// Get handles GET /listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.listings.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListingResponse(listing))
}

// Update handles PATCH /listings/:id.
func (h *ListingsHandler) Update(c *fiber.Ctx) error {
	principal, err := subject(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ListingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid payload", nil)
	}

	listing, err := h.listings.Update(c.UserContext(), principal.SubjectID, id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListingResponse(listing))
}

// Delete handles DELETE /listings/:id.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	principal, err := subject(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.listings.Delete(c.UserContext(), principal.SubjectID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Media handles GET /listings/:id/media.
func (h *ListingsHandler) Media(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	files, err := h.media.ListListingMedia(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMediaListResponse(files))
}
