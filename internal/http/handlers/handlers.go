package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-company-site/internal/auth"
	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/services"
)

//
// Service contracts (context-aware)
//

// InboxService lists and triages public submissions.
type InboxService interface {
	Messages(ctx context.Context) ([]domain.ContactMessage, error)
	Applications(ctx context.Context) ([]domain.Application, error)
	Enquiries(ctx context.Context) ([]domain.ProductEnquiry, error)
	Unread(ctx context.Context) (services.InboxCounts, error)
	MarkMessageRead(ctx context.Context, id string) error
	DeleteMessage(ctx context.Context, id string) error
	MarkApplicationRead(ctx context.Context, id string) error
	DeleteApplication(ctx context.Context, id string) error
	MarkEnquiryRead(ctx context.Context, id string) error
	DeleteEnquiry(ctx context.Context, id string) error
}

// SubmissionService accepts the public forms.
type SubmissionService interface {
	Contact(ctx context.Context, in services.ContactInput) error
	Apply(ctx context.Context, in services.ApplicationInput) error
	Enquire(ctx context.Context, in services.EnquiryInput) error
}

// Uploader validates and stores uploaded files.
type Uploader interface {
	Upload(ctx context.Context, kind string, f services.UploadFile) (string, error)
}

// Authenticator implements admin login, signup and password reset.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, auth.Claims, error)
	Signup(ctx context.Context, email, password, displayName string) (*domain.AdminUser, error)
	ForgotPassword(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, token, password string) error
	Session(raw string) (auth.Claims, error)
}

// ContentReader serves cached, active-only content to the public pages.
type ContentReader interface {
	Home(ctx context.Context) (*services.HomeContent, error)
	Careers(ctx context.Context) ([]domain.Job, error)
	Job(ctx context.Context, id string) (*domain.Job, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, route string) (*services.CategoryPage, error)
}

//
// Handler wiring
//

// Deps are the collaborators of Handlers. Content services are concrete:
// their CRUD surface is mounted generically (see admin_content.go).
type Deps struct {
	// DB backs the list ETags.
	DB *gorm.DB

	Jobs         *services.JobService
	Categories   *services.CategoryService
	Products     *services.ProductService
	Testimonials *services.TestimonialService
	Statistics   *services.StatisticService

	Inbox       InboxService
	Submissions SubmissionService
	Uploads     Uploader
	Auth        Authenticator
	Reader      ContentReader
	Pages       *Pages

	SessionTTL   time.Duration
	CookieSecure bool

	// PublicBaseURL is the site origin e-mailed links point at. Links are
	// never built from the request's Host header.
	PublicBaseURL string
}

// Handlers groups every HTTP endpoint of the site.
type Handlers struct {
	d Deps
}

// New constructs Handlers bound to the given dependencies.
func New(d Deps) *Handlers {
	return &Handlers{d: d}
}
