package domain

import "time"

// MediaFileType classifies uploaded media.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
)

// MediaFile records an uploaded blob attached to either a listing or a user profile.
type MediaFile struct {
	ID         int64
	FileName   string
	BlobURL    string
	ListingID  *int64
	UserID     *int64
	FileType   MediaFileType
	UploadedAt time.Time
}
