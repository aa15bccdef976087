package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ferialibre/listings-api/internal/listing"
	"github.com/ferialibre/listings-api/internal/queue"
)

// CleanupWorker permanently removes listings that have sat in the
// soft-deleted state past the retention window, stored media included.
type CleanupWorker struct {
	listings      *listing.Service
	retentionDays int
}

func NewCleanupWorker(listings *listing.Service, retentionDays int) *CleanupWorker {
	return &CleanupWorker{listings: listings, retentionDays: retentionDays}
}

func (w *CleanupWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ListingPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	days := payload.RetentionDays
	if days <= 0 {
		days = w.retentionDays
	}
	retention := time.Duration(days) * 24 * time.Hour

	slog.Info("purging expired listings", "retention_days", days)

	purged, err := w.listings.PurgeExpired(ctx, retention)
	if err != nil {
		return fmt.Errorf("purge expired listings: %w", err)
	}

	slog.Info("purge complete", "purged", purged)
	return nil
}
