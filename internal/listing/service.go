package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ferialibre/listings-api/internal/cache"
	"github.com/ferialibre/listings-api/internal/catalog"
	"github.com/ferialibre/listings-api/internal/ledger"
	"github.com/ferialibre/listings-api/internal/models"
	"github.com/ferialibre/listings-api/internal/moderation"
	"github.com/ferialibre/listings-api/internal/storage"
)

const listingCacheTTL = 60 * time.Second

// DB is the subset of *pgxpool.Pool the service relies on, small enough
// to fake when testing transactional behavior.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service owns the listing lifecycle: CRUD, media, status transitions and
// the wiring of the moderation engine. The engine itself is pure; this
// service is where its verdict is persisted to the ledger and applied to
// the listing status, both inside one transaction.
type Service struct {
	db      DB
	engine  *moderation.Engine
	ledger  *ledger.Service
	storage storage.Storage
	catalog *catalog.Client
	cache   *cache.Cache
}

func NewService(db DB, engine *moderation.Engine, led *ledger.Service, store storage.Storage, cat *catalog.Client, c *cache.Cache) *Service {
	return &Service{
		db:      db,
		engine:  engine,
		ledger:  led,
		storage: store,
		catalog: cat,
		cache:   c,
	}
}

type MediaInput struct {
	URL       string `json:"url"`
	Position  int    `json:"position"`
	Kind      string `json:"kind"`
	StorageID string `json:"storage_id"`
}

type CreateRequest struct {
	SellerID    string       `json:"seller_id"`
	ProductID   string       `json:"product_id"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       int64        `json:"price"`
	Media       []MediaInput `json:"media"`
}

// Create inserts a new listing in review state, attaches its media, and
// runs the automatic moderation pass. The verdict record and the
// resulting status transition are applied atomically: if either write
// fails the listing stays in review with no orphaned record, and the
// caller gets a retryable infrastructure error rather than a moderation
// outcome.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Listing, error) {
	if len(req.Media) > models.MaxMediaPerListing {
		return nil, ErrMediaLimit
	}

	id := uuid.New()
	_, err := s.db.Exec(ctx,
		`INSERT INTO listings (id, seller_id, product_id, category_id, title, description, price, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, req.SellerID, req.ProductID, req.CategoryID, req.Title, req.Description, req.Price, models.ListingStatusInReview,
	)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	for _, m := range req.Media {
		if err := s.insertMedia(ctx, id, m); err != nil {
			return nil, err
		}
	}

	verdict := s.engine.Evaluate(req.Title, req.Description)
	if err := s.applyVerdict(ctx, id, verdict); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// applyVerdict writes the automatic moderation record and the listing
// status it implies in a single transaction.
func (s *Service) applyVerdict(ctx context.Context, listingID uuid.UUID, v moderation.Verdict) error {
	status := models.ListingStatusActive
	if v.Rejected() {
		status = models.ListingStatusRejected
	}

	cats := make([]string, len(v.Categories))
	for i, c := range v.Categories {
		cats[i] = string(c)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin moderation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = s.ledger.RecordTx(ctx, tx, ledger.Entry{
		ListingID:    listingID,
		Kind:         models.ModerationKindAutomatic,
		Decision:     string(v.Decision),
		Categories:   cats,
		MatchedTerms: v.MatchedTerms,
		Rationale:    v.Rationale,
	})
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE listings SET status = $1, updated_at = now() WHERE id = $2`,
		status, listingID,
	); err != nil {
		return fmt.Errorf("update listing status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit moderation tx: %w", err)
	}

	slog.Info("listing moderated", "listing_id", listingID, "decision", v.Decision, "status", status)
	return nil
}

// ModerateManual records a moderator's decision and applies the matching
// status, transactionally, bypassing the matcher entirely.
func (s *Service) ModerateManual(ctx context.Context, listingID uuid.UUID, moderatorID, action, reason string) (*models.ModerationRecord, error) {
	if _, err := s.GetByID(ctx, listingID); err != nil {
		return nil, err
	}

	var status, decision string
	switch action {
	case "aprobado":
		status, decision = models.ListingStatusActive, string(moderation.DecisionAccepted)
	case "rechazado":
		status, decision = models.ListingStatusRejected, string(moderation.DecisionRejected)
	default:
		return nil, fmt.Errorf("%w: unknown moderation action %q", ErrInvalidStatus, action)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin moderation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	recordID, err := s.ledger.RecordTx(ctx, tx, ledger.Entry{
		ListingID:   listingID,
		Kind:        models.ModerationKindManual,
		Decision:    decision,
		Rationale:   reason,
		ModeratorID: &moderatorID,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE listings SET status = $1, updated_at = now() WHERE id = $2`,
		status, listingID,
	); err != nil {
		return nil, fmt.Errorf("update listing status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit moderation tx: %w", err)
	}

	s.invalidate(ctx, listingID)

	history, err := s.ledger.History(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].ID == recordID {
			return &history[i], nil
		}
	}
	return nil, fmt.Errorf("moderation record %s not found after write", recordID)
}

// ModerationHistory returns the listing's ledger, newest first.
func (s *Service) ModerationHistory(ctx context.Context, listingID uuid.UUID) ([]models.ModerationRecord, error) {
	if _, err := s.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, listingID)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	err := s.db.QueryRow(ctx,
		`SELECT id, seller_id, product_id, category_id, title, description, price, status, created_at, updated_at, deleted_at
		 FROM listings WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.SellerID, &l.ProductID, &l.CategoryID, &l.Title, &l.Description, &l.Price, &l.Status, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	media, err := s.mediaFor(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Media = media

	return &l, nil
}

// Detail is a listing enriched with product-catalog data. Product is nil
// when the catalog service is down or slow; the listing is served anyway.
type Detail struct {
	models.Listing
	Product *catalog.Product `json:"product,omitempty"`
}

// GetDetail returns the enriched listing, cached for a short window.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	key := cacheKey(id)
	if s.cache != nil {
		var cached Detail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	l, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{Listing: *l}
	if s.catalog != nil && l.ProductID != "" {
		if p, err := s.catalog.Product(ctx, l.ProductID); err == nil {
			d.Product = p
		} else {
			slog.Warn("catalog enrichment unavailable", "listing_id", id, "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, d, listingCacheTTL); err != nil {
			slog.Warn("cache listing", "listing_id", id, "error", err)
		}
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, seller_id, product_id, category_id, title, description, price, status, created_at, updated_at, deleted_at
			  FROM listings`
	args := []any{}
	if !includeDeleted {
		query += ` WHERE status <> $1`
		args = append(args, models.ListingStatusDeleted)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.ProductID, &l.CategoryID, &l.Title, &l.Description, &l.Price, &l.Status, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}

	for i := range listings {
		media, err := s.mediaFor(ctx, listings[i].ID)
		if err != nil {
			return nil, err
		}
		listings[i].Media = media
	}
	return listings, nil
}

type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	Status      *string `json:"status"`
}

// Update patches mutable listing fields. A deleted listing cannot leave
// the deleted state through this path.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Listing, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !models.IsValidListingStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		if existing.Status == models.ListingStatusDeleted && *req.Status != models.ListingStatusDeleted {
			return nil, ErrDeleted
		}
	}

	query := `UPDATE listings SET updated_at = now()`
	args := []any{}
	idx := 1
	if req.Title != nil {
		query += fmt.Sprintf(", title = $%d", idx)
		args = append(args, *req.Title)
		idx++
	}
	if req.Description != nil {
		query += fmt.Sprintf(", description = $%d", idx)
		args = append(args, *req.Description)
		idx++
	}
	if req.Price != nil {
		query += fmt.Sprintf(", price = $%d", idx)
		args = append(args, *req.Price)
		idx++
	}
	if req.Status != nil {
		query += fmt.Sprintf(", status = $%d", idx)
		args = append(args, *req.Status)
		idx++
	}
	query += fmt.Sprintf(" WHERE id = $%d", idx)
	args = append(args, id)

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	s.invalidate(ctx, id)
	return s.GetByID(ctx, id)
}

// ChangeStatus applies a lifecycle transition requested by the caller.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*models.Listing, error) {
	if !models.IsValidListingStatus(status) {
		return nil, ErrInvalidStatus
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ListingStatusDeleted && status != models.ListingStatusDeleted {
		return nil, ErrDeleted
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE listings SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	); err != nil {
		return nil, fmt.Errorf("change listing status: %w", err)
	}

	s.invalidate(ctx, id)
	return s.GetByID(ctx, id)
}

// SoftDelete parks the listing in the deleted state and stamps the
// deletion time; the purge worker removes it for good after the
// retention window.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == models.ListingStatusDeleted {
		return ErrAlreadyDeleted
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE listings SET status = $1, deleted_at = now(), updated_at = now() WHERE id = $2`,
		models.ListingStatusDeleted, id,
	); err != nil {
		return fmt.Errorf("soft delete listing: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

// ForceDelete removes the listing and its media immediately, including
// the stored files. Storage failures are logged but do not keep the rows
// alive.
func (s *Service) ForceDelete(ctx context.Context, id uuid.UUID) (int, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	removed := s.deleteStoredMedia(ctx, existing.Media)

	if _, err := s.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id); err != nil {
		return removed, fmt.Errorf("delete listing: %w", err)
	}

	s.invalidate(ctx, id)
	return removed, nil
}

// PurgeExpired permanently deletes listings soft-deleted before the
// cutoff, media included. Returns how many listings were purged. Used by
// the cleanup worker.
func (s *Service) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)

	rows, err := s.db.Query(ctx,
		`SELECT id FROM listings WHERE status = $1 AND deleted_at IS NOT NULL AND deleted_at <= $2`,
		models.ListingStatusDeleted, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("query expired listings: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan expired listing: %w", err)
		}
		ids = append(ids, id)
	}

	purged := 0
	for _, id := range ids {
		if _, err := s.ForceDelete(ctx, id); err != nil {
			slog.Error("purge listing", "listing_id", id, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		slog.Warn("invalidate listing cache", "listing_id", id, "error", err)
	}
}

func cacheKey(id uuid.UUID) string {
	return "listing:" + id.String()
}
