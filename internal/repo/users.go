// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for admin accounts
// and password reset tokens.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
)

// CreateAdminUser inserts a new admin account with a UUID primary key.
func CreateAdminUser(ctx context.Context, db *gorm.DB, email, displayName, passwordHash string) (*domain.AdminUser, error) {
	u := &domain.AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetAdminUserByEmail fetches an account by its (lowercased) e-mail.
func GetAdminUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.AdminUser, error) {
	var u domain.AdminUser
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountAdminUsers returns the number of admin accounts.
func CountAdminUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.AdminUser{}).Count(&n).Error
	return n, err
}

// UpdatePasswordHash replaces the stored hash for userID.
func UpdatePasswordHash(ctx context.Context, db *gorm.DB, userID, hash string) error {
	return UpdateFields[domain.AdminUser](ctx, db, userID, map[string]any{"password_hash": hash})
}

// CreatePasswordReset stores a reset token hash for userID.
func CreatePasswordReset(ctx context.Context, db *gorm.DB, userID, tokenHash string, expiresAt time.Time) (*domain.PasswordReset, error) {
	pr := &domain.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(pr).Error; err != nil {
		return nil, err
	}
	return pr, nil
}

// GetActivePasswordReset returns an unused, unexpired reset by token hash, or
// ErrNotFound.
func GetActivePasswordReset(ctx context.Context, db *gorm.DB, tokenHash string, now time.Time) (*domain.PasswordReset, error) {
	var pr domain.PasswordReset
	err := db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, now.UTC()).
		First(&pr).Error
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// ConsumePasswordReset marks a reset as used. Only the first caller wins; a
// second call returns ErrNotFound.
func ConsumePasswordReset(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", now.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
