package models

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SellerID    string     `json:"seller_id" db:"seller_id"`
	ProductID   string     `json:"product_id,omitempty" db:"product_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Price       int64      `json:"price" db:"price"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	Media []ListingMedia `json:"media,omitempty" db:"-"`
}

type ListingMedia struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ListingID uuid.UUID `json:"listing_id" db:"listing_id"`
	URL       string    `json:"url" db:"url"`
	Position  int       `json:"position" db:"position"`
	Kind      string    `json:"kind" db:"kind"`
	StorageID string    `json:"storage_id,omitempty" db:"storage_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Listing lifecycle states. The values are persisted domain data carried
// over from the marketplace: a new listing always starts in review, the
// automatic verdict moves it to active or rejected, and soft deletion
// parks it in "eliminado" until the purge worker removes it for good.
const (
	ListingStatusDraft    = "borrador"
	ListingStatusInReview = "en_revision"
	ListingStatusActive   = "activo"
	ListingStatusPaused   = "pausado"
	ListingStatusSold     = "vendido"
	ListingStatusRejected = "rechazado"
	ListingStatusDeleted  = "eliminado"
)

var validListingStatuses = map[string]bool{
	ListingStatusDraft:    true,
	ListingStatusInReview: true,
	ListingStatusActive:   true,
	ListingStatusPaused:   true,
	ListingStatusSold:     true,
	ListingStatusRejected: true,
	ListingStatusDeleted:  true,
}

func IsValidListingStatus(s string) bool {
	return validListingStatuses[s]
}

const (
	MediaKindImage = "imagen"
	MediaKindVideo = "video"
)

// MaxMediaPerListing caps how many media items a listing may carry.
const MaxMediaPerListing = 6
