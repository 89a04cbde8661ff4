// Package handlers implements the HTTP endpoints of the company website: the
// guarded admin JSON API, public form submissions, uploads, admin auth and
// the server-rendered public pages.
//
// Every JSON error uses the ErrorResponse envelope:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "error": "validation failed",
//	  "code": "validation_failed",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "details": {"email": "must be a valid e-mail address"}
//	}
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-company-site/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all JSON endpoints.
type ErrorResponse struct {
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"not found"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Field → reason for validation failures
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is returned by writes that have no resource to echo.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// URLResponse carries the location of an uploaded file.
type URLResponse struct {
	URL string `json:"url" example:"/uploads/product-image/1700000000123_pump.png"`
}

// fail aborts with the error envelope. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWithDetails(c, status, code, msg, nil)
}

func failWithDetails(c *gin.Context, status int, code, msg string, details map[string]string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("error", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: middleware.RequestIDFrom(c),
		Details:   details,
	})
}

// Fail is the exported variant of fail for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failBinding answers 400 for a body that failed to bind. Validator errors
// become per-field details keyed by the JSON field name.
func failBinding(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]string, len(ve))
		for _, fe := range ve {
			details[fe.Field()] = describe(fe)
		}
		failWithDetails(c, http.StatusBadRequest, ErrCodeValidation, "validation failed", details)
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid e-mail address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func init() {
	// Report JSON field names in validation details.
	if v, isValidator := binding.Validator.Engine().(*validator.Validate); isValidator {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}
