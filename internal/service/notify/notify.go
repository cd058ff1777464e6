package notify

import (
	"context"
	"io"
	"log/slog"

	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/metrics"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
)

// Notifier runs the after-commit side effects of a state change: cache
// invalidation and event publication. Failures are logged, never returned;
// the change is already committed.
type Notifier struct {
	cache     *redisrepo.Cache
	publisher events.Publisher
	logger    *slog.Logger
}

func New(cache *redisrepo.Cache, publisher events.Publisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{cache: cache, publisher: publisher, logger: logger}
}

// Notify handles e. vendorIDs name vendors whose cached statistics are stale.
func (n *Notifier) Notify(ctx context.Context, e events.Event, vendorIDs ...string) {
	if n == nil {
		return
	}

	if n.cache != nil {
		if e.AffectsListings() {
			if err := n.cache.InvalidateListings(ctx); err != nil {
				n.logger.Warn("invalidate listings", slog.String("event", string(e.Type)), slog.Any("err", err))
			}
		}
		for _, id := range vendorIDs {
			if err := n.cache.InvalidateVendorStats(ctx, id); err != nil {
				n.logger.Warn("invalidate vendor stats", slog.String("vendor_id", id), slog.Any("err", err))
			}
		}
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, e); err != nil {
			metrics.EventPublishFailures.Inc()
			n.logger.Warn("publish event",
				slog.String("event", string(e.Type)),
				slog.String("entity_id", e.EntityID),
				slog.Any("err", err),
			)
		}
	}
}
