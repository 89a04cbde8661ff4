package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/http/middleware"
	"github.com/tbourn/go-company-site/internal/services"
)

// MountSubmissions registers the public form endpoints on g (/api).
func (h *Handlers) MountSubmissions(g *gin.RouterGroup) {
	g.POST("/contact", h.Contact)
	g.POST("/careers/apply", h.Apply)
	g.POST("/products/enquiry", h.Enquire)
	if h.d.Uploads != nil {
		g.POST("/uploads/resume", h.ResumeUpload)
	}
}

// Contact godoc
// @Summary     Send a contact message
// @Description Stores the message and e-mails the company inbox. Succeeds when either step succeeds.
// @Tags        Submissions
// @Accept      json
// @Produce     json
// @Param       body  body      services.ContactInput  true  "Contact form"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     429   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/contact [post]
func (h *Handlers) Contact(c *gin.Context) {
	var in services.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	submitted(c, "contact", h.d.Submissions.Contact(c.Request.Context(), in))
}

// Apply godoc
// @Summary     Apply for a job
// @Description job_id is optional; without it the application is an open application. resume_url comes from POST /api/uploads/resume.
// @Tags        Submissions
// @Accept      json
// @Produce     json
// @Param       body  body      services.ApplicationInput  true  "Application"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     429   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/careers/apply [post]
func (h *Handlers) Apply(c *gin.Context) {
	var in services.ApplicationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	submitted(c, "application", h.d.Submissions.Apply(c.Request.Context(), in))
}

// Enquire godoc
// @Summary     Send a product enquiry
// @Tags        Submissions
// @Accept      json
// @Produce     json
// @Param       body  body      services.EnquiryInput  true  "Enquiry"
// @Success     200   {object}  handlers.SuccessResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     429   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/products/enquiry [post]
func (h *Handlers) Enquire(c *gin.Context) {
	var in services.EnquiryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		failBinding(c, err)
		return
	}
	submitted(c, "enquiry", h.d.Submissions.Enquire(c.Request.Context(), in))
}

func submitted(c *gin.Context, kind string, err error) {
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Str("op", "submit."+kind).Msg("submission failed")
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, "could not submit "+kind+", please try again")
		return
	}
	success(c)
}
