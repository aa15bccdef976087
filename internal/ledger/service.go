package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ferialibre/listings-api/internal/models"
)

// Service is the moderation ledger: a durable, append-only record of
// every verdict applied to a listing. Automatic verdicts are written
// inside the same transaction as the listing-status update so a listing
// can never end up in review with an orphaned verdict, or the other way
// around.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Entry is the input for one ledger record.
type Entry struct {
	ListingID    uuid.UUID
	Kind         string
	Decision     string
	Categories   []string
	MatchedTerms []string
	Rationale    string
	ModeratorID  *string
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so a record can
// be written standalone or as part of the caller's transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Record appends a ledger entry outside any transaction.
func (s *Service) Record(ctx context.Context, e Entry) (uuid.UUID, error) {
	return s.record(ctx, s.db, e)
}

// RecordTx appends a ledger entry within the caller's transaction.
func (s *Service) RecordTx(ctx context.Context, tx pgx.Tx, e Entry) (uuid.UUID, error) {
	return s.record(ctx, tx, e)
}

func (s *Service) record(ctx context.Context, q querier, e Entry) (uuid.UUID, error) {
	if e.Categories == nil {
		e.Categories = []string{}
	}
	if e.MatchedTerms == nil {
		e.MatchedTerms = []string{}
	}

	var id uuid.UUID
	err := q.QueryRow(ctx,
		`INSERT INTO moderation_records (id, listing_id, kind, decision, categories, matched_terms, rationale, moderator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		uuid.New(), e.ListingID, e.Kind, e.Decision, e.Categories, e.MatchedTerms, e.Rationale, e.ModeratorID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert moderation record: %w", err)
	}
	return id, nil
}

// History returns every ledger record for a listing, newest first.
func (s *Service) History(ctx context.Context, listingID uuid.UUID) ([]models.ModerationRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, listing_id, kind, decision, categories, matched_terms, rationale, moderator_id, created_at
		 FROM moderation_records WHERE listing_id = $1 ORDER BY created_at DESC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query moderation history: %w", err)
	}
	defer rows.Close()

	var records []models.ModerationRecord
	for rows.Next() {
		var r models.ModerationRecord
		if err := rows.Scan(&r.ID, &r.ListingID, &r.Kind, &r.Decision, &r.Categories, &r.MatchedTerms, &r.Rationale, &r.ModeratorID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
