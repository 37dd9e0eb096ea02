package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrListingNotFound is returned when a listing is missing or no longer active.
	ErrListingNotFound = errors.New("listing not found")
	// ErrImageNotFound is returned when a listing image is not found.
	ErrImageNotFound = errors.New("image not found")
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrThreadNotFound is returned when a chat thread is missing or the viewer is not a participant.
	ErrThreadNotFound = errors.New("chat thread not found")
	// ErrReportNotFound is returned when a report is not found.
	ErrReportNotFound = errors.New("report not found")
	// ErrNotOwner is returned when a listing is modified by someone other than its seller.
	ErrNotOwner = errors.New("you do not own this listing")
	// ErrStaffOnly is returned when a non-staff user calls an operator feature.
	ErrStaffOnly = errors.New("staff access required")
	// ErrEmptyMessage is returned when a message has neither text nor image.
	ErrEmptyMessage = errors.New("message must contain text or an image")
	// ErrSelfChat is returned when a seller tries to chat on their own listing.
	ErrSelfChat = errors.New("you cannot chat about your own listing")
	// ErrBlocked is returned when a message is sent between blocked users.
	ErrBlocked = errors.New("messaging is blocked between these users")
	// ErrSelfBlock is returned when a user tries to block themselves.
	ErrSelfBlock = errors.New("you cannot block yourself")
	// ErrAlreadyBlocked is returned when the block edge already exists.
	ErrAlreadyBlocked = errors.New("user already blocked")
	// ErrNotBlocked is returned when unblocking a user that was never blocked.
	ErrNotBlocked = errors.New("user is not blocked")
	// ErrInvalidTransition is returned for a report status change the workflow does not allow.
	ErrInvalidTransition = errors.New("invalid report status transition")
	// ErrReportTargetRequired is returned when a report names neither a user nor a listing.
	ErrReportTargetRequired = errors.New("report must target a user or a listing")
	// ErrInvalidReason is returned for a report reason outside the known set.
	ErrInvalidReason = errors.New("invalid report reason")
	// ErrTooManyImages is returned when a listing already holds the maximum number of images.
	ErrTooManyImages = errors.New("listing already has the maximum number of images")
	// ErrSelfReview is returned when a user reviews themselves.
	ErrSelfReview = errors.New("you cannot review yourself")
	// ErrAlreadyReviewed is returned for a duplicate review.
	ErrAlreadyReviewed = errors.New("you have already reviewed this seller for this listing")
	// ErrInvalidRating is returned for a rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrInvalidPrice is returned for a negative price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidCondition is returned for an unknown listing condition.
	ErrInvalidCondition = errors.New("invalid condition")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("username or email already registered")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrPasswordMismatch is returned when password confirmation differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidVerificationToken is returned for an unknown email verification token.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	// ErrInvalidImage is returned when an upload is not an accepted image.
	ErrInvalidImage = errors.New("invalid image file")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrListingNotFound, http.StatusNotFound, "LISTING_NOT_FOUND"},
	{ErrImageNotFound, http.StatusNotFound, "IMAGE_NOT_FOUND"},
	{ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
	{ErrThreadNotFound, http.StatusNotFound, "THREAD_NOT_FOUND"},
	{ErrReportNotFound, http.StatusNotFound, "REPORT_NOT_FOUND"},
	{ErrInvalidVerificationToken, http.StatusNotFound, "INVALID_VERIFICATION_TOKEN"},
	{ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
	{ErrStaffOnly, http.StatusForbidden, "STAFF_ONLY"},
	{ErrBlocked, http.StatusForbidden, "BLOCKED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
	{ErrAlreadyBlocked, http.StatusConflict, "ALREADY_BLOCKED"},
	{ErrAlreadyReviewed, http.StatusConflict, "ALREADY_REVIEWED"},
	{ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{ErrEmptyMessage, http.StatusBadRequest, "EMPTY_MESSAGE"},
	{ErrSelfChat, http.StatusBadRequest, "SELF_CHAT"},
	{ErrSelfBlock, http.StatusBadRequest, "SELF_BLOCK"},
	{ErrNotBlocked, http.StatusBadRequest, "NOT_BLOCKED"},
	{ErrReportTargetRequired, http.StatusBadRequest, "REPORT_TARGET_REQUIRED"},
	{ErrInvalidReason, http.StatusBadRequest, "INVALID_REASON"},
	{ErrTooManyImages, http.StatusBadRequest, "TOO_MANY_IMAGES"},
	{ErrSelfReview, http.StatusBadRequest, "SELF_REVIEW"},
	{ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{ErrInvalidCondition, http.StatusBadRequest, "INVALID_CONDITION"},
	{ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{ErrInvalidImage, http.StatusBadRequest, "INVALID_IMAGE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors, unwrapping as needed.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// ValidationResponse renders validator field errors keyed by their json field name.
// It returns false when err is not a validation error.
func ValidationResponse(err error) (ErrorResponse, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrorResponse{}, false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return ErrorResponse{
		Error:  "validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: fields,
	}, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "eqfield":
		return "must match " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
