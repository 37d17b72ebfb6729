package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
)

const uploadField = "file"

// UploadsHandler accepts multipart image uploads.
type UploadsHandler struct {
	media *service.MediaService
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(media *service.MediaService) *UploadsHandler {
	return &UploadsHandler{media: media}
}

// Listing handles POST /uploads/listing/:id.
func (h *UploadsHandler) Listing(c *fiber.Ctx) error {
	principal, err := subject(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.readFile(c)
	if err != nil {
		return err
	}

	media, err := h.media.UploadListingImage(c.UserContext(), principal.SubjectID, id, in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewMediaResponse(media))
}

// Profile handles POST /uploads/users/:id.
func (h *UploadsHandler) Profile(c *fiber.Ctx) error {
	principal, err := subject(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	in, err := h.readFile(c)
	if err != nil {
		return err
	}

	media, err := h.media.UploadProfileImage(c.UserContext(), principal.SubjectID, id, in)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewMediaResponse(media))
}

// readFile loads the multipart file, reading at most one byte past the limit so oversize
// files are detected without buffering them whole.
func (h *UploadsHandler) readFile(c *fiber.Ctx) (service.UploadInput, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return service.UploadInput{}, domain.NewValidationError("multipart field \"file\" is required", nil)
	}

	f, err := header.Open()
	if err != nil {
		return service.UploadInput{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.media.MaxBytes()+1))
	if err != nil {
		return service.UploadInput{}, err
	}
	return service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
