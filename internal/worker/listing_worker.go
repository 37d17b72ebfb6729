package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/events"
)

// StartListingWorker registers the handlers that react to listing writes: cache eviction
// for changed listings and an audit log line for every event.
func StartListingWorker(dispatcher events.Dispatcher, listings *cache.ListingCache, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	evict := func(ctx context.Context, event events.Event) error {
		if event.ListingID != nil {
			listings.Invalidate(ctx, *event.ListingID)
		}
		return nil
	}
	dispatcher.Subscribe(events.EventListingUpdated, evict)
	dispatcher.Subscribe(events.EventListingDeleted, evict)

	audit := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("actor_id", event.ActorID),
		}
		if event.ListingID != nil {
			fields = append(fields, zap.Int64("listing_id", *event.ListingID))
		}
		logger.Info("marketplace event", fields...)
		return nil
	}
	for _, t := range []events.EventType{
		events.EventListingCreated,
		events.EventListingUpdated,
		events.EventListingDeleted,
		events.EventMediaUploaded,
	} {
		dispatcher.Subscribe(t, audit)
	}
}
