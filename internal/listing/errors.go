package listing

import "errors"

var (
	ErrNotFound       = errors.New("listing not found")
	ErrMediaNotFound  = errors.New("media not found")
	ErrAlreadyDeleted = errors.New("listing already deleted")
	ErrDeleted        = errors.New("listing is deleted")
	ErrInvalidStatus  = errors.New("invalid listing status")
	ErrMediaLimit     = errors.New("listing media limit reached")
)
