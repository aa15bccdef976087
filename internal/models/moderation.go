package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationRecord is one entry in the append-only moderation ledger.
// Automatic records are produced by the verdict engine at creation time;
// manual records come from a moderator and carry their id. Records are
// never mutated or deleted while the listing exists.
type ModerationRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ListingID    uuid.UUID `json:"listing_id" db:"listing_id"`
	Kind         string    `json:"kind" db:"kind"`
	Decision     string    `json:"decision" db:"decision"`
	Categories   []string  `json:"categories,omitempty" db:"categories"`
	MatchedTerms []string  `json:"matched_terms,omitempty" db:"matched_terms"`
	Rationale    string    `json:"rationale" db:"rationale"`
	ModeratorID  *string   `json:"moderator_id,omitempty" db:"moderator_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

const (
	ModerationKindAutomatic = "automatica"
	ModerationKindManual    = "manual"
)
