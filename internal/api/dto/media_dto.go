package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// MediaResponse is the wire form of an uploaded file.
type MediaResponse struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"filename"`
	BlobURL    string    `json:"blob_url"`
	ListingID  *int64    `json:"listing_id,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	FileType   string    `json:"file_type"`
	UploadedAt time.Time `json:"upload_date"`
}

// NewMediaResponse converts a media record.
func NewMediaResponse(m *domain.MediaFile) MediaResponse {
	return MediaResponse{
		ID:         m.ID,
		FileName:   m.FileName,
		BlobURL:    m.BlobURL,
		ListingID:  m.ListingID,
		UserID:     m.UserID,
		FileType:   string(m.FileType),
		UploadedAt: m.UploadedAt.UTC(),
	}
}

// NewMediaListResponse converts media records.
func NewMediaListResponse(files []domain.MediaFile) []MediaResponse {
	out := make([]MediaResponse, 0, len(files))
	for i := range files {
		out = append(out, NewMediaResponse(&files[i]))
	}
	return out
}
