package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Job{}).TableName():            "jobs",
		(Category{}).TableName():       "categories",
		(Product{}).TableName():        "products",
		(Testimonial{}).TableName():    "testimonials",
		(Statistic{}).TableName():      "statistics",
		(ContactMessage{}).TableName(): "contact_messages",
		(Application{}).TableName():    "applications",
		(ProductEnquiry{}).TableName(): "product_enquiries",
		(AdminUser{}).TableName():      "admin_users",
		(PasswordReset{}).TableName():  "password_resets",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_RouteUnique_AndProductFK(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Category{}, &Product{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	now := time.Now().UTC()
	if err := db.Create(&Category{ID: "c1", Title: "A", Route: "sensors", CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("create c1: %v", err)
	}
	if err := db.Create(&Category{ID: "c2", Title: "B", Route: "sensors", CreatedAt: now, UpdatedAt: now}).Error; err == nil {
		t.Fatalf("expected unique violation on duplicate route")
	}

	if err := db.Create(&Product{ID: "p1", CategoryID: "nope", Name: "X", CreatedAt: now, UpdatedAt: now}).Error; err == nil {
		t.Fatalf("expected FK violation for unknown category")
	}
	if err := db.Create(&Product{ID: "p2", CategoryID: "c1", Name: "Y", CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("create p2: %v", err)
	}

	// RESTRICT: category with products cannot be deleted.
	if err := db.Delete(&Category{}, "id = ?", "c1").Error; err == nil {
		t.Fatalf("expected FK restrict on category delete")
	}
}

func TestInactiveIsPersisted(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := db.Create(&Job{ID: "j1", Title: "Engineer", IsActive: false}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var got Job
	if err := db.First(&got, "id = ?", "j1").Error; err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected IsActive=false to round-trip")
	}
}

func TestAdminUser_HashNotSerialized(t *testing.T) {
	b, err := json.Marshal(AdminUser{ID: "u1", Email: "a@b.c", PasswordHash: "$argon2id$secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "argon2id") {
		t.Fatalf("password hash leaked into JSON: %s", b)
	}
}
