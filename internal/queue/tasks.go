package queue

const (
	// TypeListingPurge permanently removes listings whose soft-delete
	// retention window has elapsed. Scheduled daily, enqueueable on demand.
	TypeListingPurge = "listing:purge"
)

type ListingPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}
