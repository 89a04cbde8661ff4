package domain

import "time"

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null"`
	Phone     string    `json:"phone"      gorm:"type:varchar(64)"`
	Company   string    `json:"company"    gorm:"type:varchar(255)"`
	Subject   string    `json:"subject"    gorm:"type:varchar(255)"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read"    gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ContactMessage.
func (ContactMessage) TableName() string { return "contact_messages" }

// Application is a job application. JobID is nil for open applications.
type Application struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	JobID       *string   `json:"job_id"       gorm:"type:char(36);index"`
	Name        string    `json:"name"         gorm:"type:varchar(255);not null"`
	Email       string    `json:"email"        gorm:"type:varchar(255);not null"`
	Phone       string    `json:"phone"        gorm:"type:varchar(64)"`
	ResumeURL   string    `json:"resume_url"   gorm:"type:text;not null"`
	CoverLetter string    `json:"cover_letter" gorm:"type:text"`
	IsRead      bool      `json:"is_read"      gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string { return "applications" }

// ProductEnquiry is a request for information about a product.
type ProductEnquiry struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ProductID *string   `json:"product_id" gorm:"type:char(36);index"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null"`
	Company   string    `json:"company"    gorm:"type:varchar(255)"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read"    gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ProductEnquiry.
func (ProductEnquiry) TableName() string { return "product_enquiries" }
