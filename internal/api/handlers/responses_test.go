package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferialibre/listings-api/internal/category"
	"github.com/ferialibre/listings-api/internal/listing"
)

func TestWriteServiceErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{listing.ErrNotFound, http.StatusNotFound},
		{listing.ErrMediaNotFound, http.StatusNotFound},
		{category.ErrNotFound, http.StatusNotFound},
		{listing.ErrAlreadyDeleted, http.StatusBadRequest},
		{listing.ErrDeleted, http.StatusBadRequest},
		{listing.ErrInvalidStatus, http.StatusBadRequest},
		{listing.ErrMediaLimit, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", listing.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, "error %v", tt.err)
	}
}

func TestWriteServiceErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New(`ERROR: relation "listings" does not exist (SQLSTATE 42P01)`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SQLSTATE")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
