package domain

import "time"

// AdminUser is an account allowed into the admin panel. PasswordHash holds an
// encoded argon2id hash and is never serialized.
type AdminUser struct {
	ID           string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"        gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(255)"`
	PasswordHash string    `json:"-"            gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for AdminUser.
func (AdminUser) TableName() string { return "admin_users" }

// PasswordReset is a single-use reset token. Only the SHA-256 of the token is
// stored; the raw token travels in the e-mailed link.
type PasswordReset struct {
	ID        string     `gorm:"type:char(36);primaryKey"`
	UserID    string     `gorm:"type:char(36);not null;index"`
	TokenHash string     `gorm:"type:char(64);not null;uniqueIndex"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	UsedAt    *time.Time `gorm:""`
	CreatedAt time.Time

	User AdminUser `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PasswordReset.
func (PasswordReset) TableName() string { return "password_resets" }
