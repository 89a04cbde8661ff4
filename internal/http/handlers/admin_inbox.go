package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// inbox binds the list and triage operations of one submission kind.
type inbox struct {
	name     string
	list     func(ctx context.Context) (any, error)
	markRead func(ctx context.Context, id string) error
	remove   func(ctx context.Context, id string) error
}

func (h *Handlers) mountInbox(g *gin.RouterGroup) {
	s := h.d.Inbox
	boxes := []inbox{
		{
			name:     "messages",
			list:     func(ctx context.Context) (any, error) { return s.Messages(ctx) },
			markRead: s.MarkMessageRead,
			remove:   s.DeleteMessage,
		},
		{
			name:     "applications",
			list:     func(ctx context.Context) (any, error) { return s.Applications(ctx) },
			markRead: s.MarkApplicationRead,
			remove:   s.DeleteApplication,
		},
		{
			name:     "enquiries",
			list:     func(ctx context.Context) (any, error) { return s.Enquiries(ctx) },
			markRead: s.MarkEnquiryRead,
			remove:   s.DeleteEnquiry,
		},
	}
	for _, b := range boxes {
		rg := g.Group("/" + b.name)
		rg.GET("", b.listAll)
		rg.PATCH("/:id/read", b.read)
		rg.DELETE("/:id", b.delete)
	}
	g.GET("/inbox/unread", h.Unread)
}

// listAll godoc
// @Summary     List submissions (admin)
// @Description Newest first. Unread rows have is_read=false.
// @Tags        Admin inbox
// @Produce     json
// @Success     200  {array}   object
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /api/admin/messages [get]
// @Router      /api/admin/applications [get]
// @Router      /api/admin/enquiries [get]
func (b inbox) listAll(c *gin.Context) {
	items, err := b.list(c.Request.Context())
	if err != nil {
		failService(c, b.name+".list", "", err)
		return
	}
	ok(c, http.StatusOK, items)
}

// read godoc
// @Summary     Mark a submission as read (admin)
// @Tags        Admin inbox
// @Produce     json
// @Param       id   path      string  true  "Submission id"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/messages/{id}/read [patch]
// @Router      /api/admin/applications/{id}/read [patch]
// @Router      /api/admin/enquiries/{id}/read [patch]
func (b inbox) read(c *gin.Context) {
	id := c.Param("id")
	if err := b.markRead(c.Request.Context(), id); err != nil {
		failService(c, b.name+".read", id, err)
		return
	}
	success(c)
}

// delete godoc
// @Summary     Delete a submission (admin)
// @Tags        Admin inbox
// @Produce     json
// @Param       id   path      string  true  "Submission id"
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /api/admin/messages/{id} [delete]
// @Router      /api/admin/applications/{id} [delete]
// @Router      /api/admin/enquiries/{id} [delete]
func (b inbox) delete(c *gin.Context) {
	id := c.Param("id")
	if err := b.remove(c.Request.Context(), id); err != nil {
		failService(c, b.name+".delete", id, err)
		return
	}
	success(c)
}

// Unread godoc
// @Summary     Unread counters (admin)
// @Description Number of unread submissions per inbox, for the admin navigation badges.
// @Tags        Admin inbox
// @Produce     json
// @Success     200  {object}  services.InboxCounts
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /api/admin/inbox/unread [get]
func (h *Handlers) Unread(c *gin.Context) {
	counts, err := h.d.Inbox.Unread(c.Request.Context())
	if err != nil {
		failService(c, "inbox.unread", "", err)
		return
	}
	ok(c, http.StatusOK, counts)
}
