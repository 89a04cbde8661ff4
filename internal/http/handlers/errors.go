package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/http/middleware"
	"github.com/tbourn/go-company-site/internal/services"
)

// Error codes returned in ErrorResponse.Code. Clients branch on these.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeCategoryInUse  = "category_in_use"
	ErrCodeUploadRejected = "upload_rejected"
	ErrCodeSubmitFailed   = "submit_failed"
)

// failService maps a service error to a status and code. Unknown errors are
// store failures: 500 with the store's message, logged with the operation
// and entity id.
func failService(c *gin.Context, op, id string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, services.ErrCategoryInUse):
		fail(c, http.StatusBadRequest, ErrCodeCategoryInUse, err.Error())
	case errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrInvalidReorder),
		errors.Is(err, services.ErrCategoryRequired),
		errors.Is(err, services.ErrInvalidRoute),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidResetToken):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrRouteTaken),
		errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrSignupDisabled):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrUnknownUploadKind),
		errors.Is(err, services.ErrEmptyUpload),
		errors.Is(err, services.ErrUploadTooLarge),
		errors.Is(err, services.ErrUploadType):
		fail(c, http.StatusBadRequest, ErrCodeUploadRejected, err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Str("op", op).Str("id", id).Msg("operation failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
