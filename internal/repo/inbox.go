// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides queries for the admin inbox: contact
// messages, job applications and product enquiries. Inbox lists are newest
// first.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/domain"
)

const inboxOrder = "created_at DESC, id DESC"

// ListContactMessages returns all contact messages, newest first.
func ListContactMessages(ctx context.Context, db *gorm.DB) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	err := db.WithContext(ctx).Order(inboxOrder).Find(&out).Error
	return out, err
}

// ListApplications returns all job applications, newest first.
func ListApplications(ctx context.Context, db *gorm.DB) ([]domain.Application, error) {
	var out []domain.Application
	err := db.WithContext(ctx).Order(inboxOrder).Find(&out).Error
	return out, err
}

// ListEnquiries returns all product enquiries, newest first.
func ListEnquiries(ctx context.Context, db *gorm.DB) ([]domain.ProductEnquiry, error) {
	var out []domain.ProductEnquiry
	err := db.WithContext(ctx).Order(inboxOrder).Find(&out).Error
	return out, err
}

// CountUnread returns the number of unread rows of model T.
func CountUnread[T any](ctx context.Context, db *gorm.DB) (int64, error) {
	var (
		model T
		n     int64
	)
	err := db.WithContext(ctx).Model(&model).Where("is_read = ?", false).Count(&n).Error
	return n, err
}
