package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/tbourn/go-company-site/internal/domain"
	"github.com/tbourn/go-company-site/internal/services"
)

func TestInbox_ListReadDelete(t *testing.T) {
	e := newEnv(t)
	msg := &domain.ContactMessage{ID: "m1", Name: "Ada", Email: "ada@example.com", Message: "Hi"}
	if err := e.db.WithContext(context.Background()).Create(msg).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := e.do(t, http.MethodGet, "/api/admin/messages", "")
	expectStatus(t, w, http.StatusOK)
	list := decode[[]domain.ContactMessage](t, w.Body.Bytes())
	if len(list) != 1 || list[0].IsRead {
		t.Fatalf("list = %+v", list)
	}

	w = e.do(t, http.MethodGet, "/api/admin/inbox/unread", "")
	expectStatus(t, w, http.StatusOK)
	if c := decode[services.InboxCounts](t, w.Body.Bytes()); c.Messages != 1 || c.Applications != 0 {
		t.Fatalf("counts = %+v", c)
	}

	expectStatus(t, e.do(t, http.MethodPatch, "/api/admin/messages/m1/read", ""), http.StatusOK)

	w = e.do(t, http.MethodGet, "/api/admin/messages", "")
	if list := decode[[]domain.ContactMessage](t, w.Body.Bytes()); len(list) != 1 || !list[0].IsRead {
		t.Fatalf("mark read not visible: %+v", list)
	}

	expectStatus(t, e.do(t, http.MethodDelete, "/api/admin/messages/m1", ""), http.StatusOK)
	expectStatus(t, e.do(t, http.MethodDelete, "/api/admin/messages/m1", ""), http.StatusNotFound)
	expectStatus(t, e.do(t, http.MethodPatch, "/api/admin/enquiries/nope/read", ""), http.StatusNotFound)

	w = e.do(t, http.MethodGet, "/api/admin/applications", "")
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]domain.Application](t, w.Body.Bytes()); len(list) != 0 {
		t.Fatalf("applications = %+v", list)
	}
}
