package errors

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"listing not found", ErrListingNotFound, http.StatusNotFound, "LISTING_NOT_FOUND"},
		{"wrapped thread not found", fmt.Errorf("open thread: %w", ErrThreadNotFound), http.StatusNotFound, "THREAD_NOT_FOUND"},
		{"not owner", ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
		{"staff only", ErrStaffOnly, http.StatusForbidden, "STAFF_ONLY"},
		{"empty message", ErrEmptyMessage, http.StatusBadRequest, "EMPTY_MESSAGE"},
		{"invalid transition", ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
	assert.Equal(t, "internal server error", httpErr.Error())
}

func TestValidationResponse(t *testing.T) {
	type form struct {
		Title string `json:"title" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string { return f.Tag.Get("json") })

	err := v.Struct(form{Email: "nope"})
	require.Error(t, err)

	resp, ok := ValidationResponse(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "this field is required", resp.Fields["title"])
	assert.Equal(t, "must be a valid email address", resp.Fields["email"])

	_, ok = ValidationResponse(errors.New("other"))
	assert.False(t, ok)
}
