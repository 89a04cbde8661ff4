// Package services implements the website's use-cases: admin content CRUD
// with cache revalidation, the submissions inbox, cached public reads,
// uploads, and admin authentication.
//
// This file centralizes service-level error values so they can be returned
// consistently by service methods and mapped to HTTP results by handlers.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-company-site/internal/repo"
)

// Content errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCategoryInUse is matched by *CategoryInUseError.
	ErrCategoryInUse = errors.New("category still referenced by products")

	// ErrUnknownCategory is returned when a product references a category
	// that does not exist.
	ErrUnknownCategory = errors.New("category does not exist")

	// ErrInvalidReorder is returned for an empty id list or duplicate ids.
	ErrInvalidReorder = errors.New("ids must be a non-empty list of unique ids")

	// ErrCategoryRequired is returned when reordering products without a
	// category scope.
	ErrCategoryRequired = errors.New("categoryId is required")

	// ErrInvalidRoute is returned for category routes that are not URL slugs.
	ErrInvalidRoute = errors.New("route must contain only lowercase letters, digits and dashes")

	// ErrRouteTaken is returned when another category already uses the route.
	ErrRouteTaken = errors.New("route already in use")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupDisabled     = errors.New("signup is disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

// Upload errors.
var (
	ErrUnknownUploadKind = errors.New("unknown upload kind")
	ErrEmptyUpload       = errors.New("file is empty")
	ErrUploadTooLarge    = errors.New("file too large")
	ErrUploadType        = errors.New("file type not allowed")
)

// CategoryInUseError reports how many products block a category delete.
type CategoryInUseError struct {
	Products int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("cannot delete category: %d product(s) still reference it", e.Products)
}

// Is makes errors.Is(err, ErrCategoryInUse) match.
func (e *CategoryInUseError) Is(target error) bool { return target == ErrCategoryInUse }

// mapNotFound converts repository not-found errors into ErrNotFound.
func mapNotFound(err error) error {
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite: "UNIQUE constraint failed"; Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
