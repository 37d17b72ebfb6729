package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventListingCreated EventType = "listing_created"
	EventListingUpdated EventType = "listing_updated"
	EventListingDeleted EventType = "listing_deleted"
	EventMediaUploaded  EventType = "media_uploaded"
)

// Event represents a domain event emitted by services after a successful write.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	ListingID *int64      `json:"listing_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewListingEvent stamps a listing event with a fresh id.
func NewListingEvent(eventType EventType, actorID, listingID int64, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		ListingID: &listingID,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// ListingChangedPayload names the fields an update touched.
type ListingChangedPayload struct {
	Fields []string `json:"fields"`
}

// MediaUploadedPayload describes a stored upload.
type MediaUploadedPayload struct {
	MediaID int64  `json:"media_id"`
	Target  string `json:"target"`
	BlobURL string `json:"blob_url"`
}
