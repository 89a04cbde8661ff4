// Package domain defines the persistence models for the website content
// (jobs, product categories, products, testimonials, statistics), the inbox
// of public submissions, and admin accounts. These types are mapped with GORM
// and shared across the repository, service and HTTP layers.
package domain

import (
	"time"
)

// Job is an open position listed on the careers page. Inactive jobs stay in
// the admin list but are hidden from public pages.
type Job struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Title          string    `json:"title"           gorm:"type:varchar(255);not null"`
	Location       string    `json:"location"        gorm:"type:varchar(255)"`
	EmploymentType string    `json:"employment_type" gorm:"type:varchar(64)"`
	Department     string    `json:"department"      gorm:"type:varchar(128)"`
	Description    string    `json:"description"     gorm:"type:text"`
	Requirements   string    `json:"requirements"    gorm:"type:text"`
	IsActive       bool      `json:"is_active"       gorm:"not null;index"`
	SortOrder      int       `json:"sort_order"      gorm:"not null;default:0;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string { return "jobs" }

// Category groups products on the public products pages. Route is the URL
// slug used by /products/:route and is unique.
type Category struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"       gorm:"type:varchar(255);not null"`
	Route       string    `json:"route"       gorm:"type:varchar(128);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url"   gorm:"type:text"`
	IsActive    bool      `json:"is_active"   gorm:"not null;index"`
	SortOrder   int       `json:"sort_order"  gorm:"not null;default:0;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Product belongs to exactly one Category. Deleting a category that still has
// products is refused by the service layer (and by the FK constraint).
type Product struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	CategoryID  string    `json:"category_id" gorm:"type:char(36);not null;index:idx_products_category,priority:1"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"image_url"   gorm:"type:text"`
	CatalogURL  string    `json:"catalog_url" gorm:"type:text"`
	IsActive    bool      `json:"is_active"   gorm:"not null"`
	SortOrder   int       `json:"sort_order"  gorm:"not null;default:0;index:idx_products_category,priority:2"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Testimonial is a customer quote shown on the home page when the
// testimonials feature flag is on.
type Testimonial struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Author    string    `json:"author"     gorm:"type:varchar(255);not null"`
	Role      string    `json:"role"       gorm:"type:varchar(255)"`
	Company   string    `json:"company"    gorm:"type:varchar(255)"`
	Quote     string    `json:"quote"      gorm:"type:text;not null"`
	IsActive  bool      `json:"is_active"  gorm:"not null"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Testimonial.
func (Testimonial) TableName() string { return "testimonials" }

// Statistic is a headline figure on the home page ("25+ years").
type Statistic struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Label     string    `json:"label"      gorm:"type:varchar(255);not null"`
	Value     string    `json:"value"      gorm:"type:varchar(64);not null"`
	Suffix    string    `json:"suffix"     gorm:"type:varchar(16)"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Statistic.
func (Statistic) TableName() string { return "statistics" }
