package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ferialibre/listings-api/internal/models"
)

// AddMedia attaches one media item to a listing. The per-listing cap is
// enforced inside the insert statement itself, so two concurrent
// attaches cannot both slip past a pre-check and exceed it.
func (s *Service) AddMedia(ctx context.Context, listingID uuid.UUID, m MediaInput) (*models.ListingMedia, error) {
	if _, err := s.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	if err := s.insertMedia(ctx, listingID, m); err != nil {
		return nil, err
	}
	s.invalidate(ctx, listingID)

	media, err := s.mediaFor(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for i := range media {
		if media[i].URL == m.URL && media[i].Position == m.Position {
			return &media[i], nil
		}
	}
	return nil, fmt.Errorf("media not found after insert")
}

// RemoveMedia detaches a media item and deletes the stored file when the
// item carries a storage id. Storage failures are logged and the row is
// removed regardless.
func (s *Service) RemoveMedia(ctx context.Context, mediaID uuid.UUID) error {
	var m models.ListingMedia
	err := s.db.QueryRow(ctx,
		`SELECT id, listing_id, url, position, kind, storage_id, created_at
		 FROM listing_media WHERE id = $1`,
		mediaID,
	).Scan(&m.ID, &m.ListingID, &m.URL, &m.Position, &m.Kind, &m.StorageID, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMediaNotFound
	}
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}

	if m.StorageID != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, m.StorageID); err != nil {
			slog.Warn("delete stored media", "media_id", mediaID, "storage_id", m.StorageID, "error", err)
		}
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM listing_media WHERE id = $1`, mediaID); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	s.invalidate(ctx, m.ListingID)
	return nil
}

// insertMedia inserts one media row, guarded by the cap in the same
// statement: when the listing already carries MaxMediaPerListing items
// the insert affects zero rows.
func (s *Service) insertMedia(ctx context.Context, listingID uuid.UUID, m MediaInput) error {
	kind := m.Kind
	if kind == "" {
		kind = models.MediaKindImage
	}
	tag, err := s.db.Exec(ctx,
		`INSERT INTO listing_media (id, listing_id, url, position, kind, storage_id)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE (SELECT COUNT(*) FROM listing_media WHERE listing_id = $2) < $7`,
		uuid.New(), listingID, m.URL, m.Position, kind, m.StorageID, models.MaxMediaPerListing,
	)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMediaLimit
	}
	return nil
}

func (s *Service) mediaFor(ctx context.Context, listingID uuid.UUID) ([]models.ListingMedia, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, listing_id, url, position, kind, storage_id, created_at
		 FROM listing_media WHERE listing_id = $1 ORDER BY position ASC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var media []models.ListingMedia
	for rows.Next() {
		var m models.ListingMedia
		if err := rows.Scan(&m.ID, &m.ListingID, &m.URL, &m.Position, &m.Kind, &m.StorageID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, m)
	}
	return media, nil
}

// deleteStoredMedia removes stored files for the given media rows, best
// effort, and returns how many deletions succeeded.
func (s *Service) deleteStoredMedia(ctx context.Context, media []models.ListingMedia) int {
	if s.storage == nil {
		return 0
	}
	removed := 0
	for _, m := range media {
		if m.StorageID == "" {
			continue
		}
		if err := s.storage.Delete(ctx, m.StorageID); err != nil {
			slog.Warn("delete stored media", "storage_id", m.StorageID, "error", err)
			continue
		}
		removed++
	}
	return removed
}
