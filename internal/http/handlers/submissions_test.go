package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/go-company-site/internal/services"
)

type stubSubmissions struct {
	err      error
	contacts []services.ContactInput
	apps     []services.ApplicationInput
	enqs     []services.EnquiryInput
}

func (s *stubSubmissions) Contact(_ context.Context, in services.ContactInput) error {
	s.contacts = append(s.contacts, in)
	return s.err
}

func (s *stubSubmissions) Apply(_ context.Context, in services.ApplicationInput) error {
	s.apps = append(s.apps, in)
	return s.err
}

func (s *stubSubmissions) Enquire(_ context.Context, in services.EnquiryInput) error {
	s.enqs = append(s.enqs, in)
	return s.err
}

func TestSubmissions_Success(t *testing.T) {
	sub := &stubSubmissions{}
	e := newEnv(t, func(d *Deps) { d.Submissions = sub })

	w := e.do(t, http.MethodPost, "/api/contact", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`)
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != `{"success":true}` || len(sub.contacts) != 1 || sub.contacts[0].Name != "Ada" {
		t.Fatalf("body=%s contacts=%+v", w.Body.String(), sub.contacts)
	}

	w = e.do(t, http.MethodPost, "/api/careers/apply", `{"name":"Ada","email":"ada@example.com","resume_url":"/uploads/resume/1_cv.pdf"}`)
	expectStatus(t, w, http.StatusOK)
	if len(sub.apps) != 1 || sub.apps[0].JobID != "" {
		t.Fatalf("apps = %+v", sub.apps)
	}

	w = e.do(t, http.MethodPost, "/api/products/enquiry", `{"product_id":"p1","name":"Ada","email":"ada@example.com","message":"Price?"}`)
	expectStatus(t, w, http.StatusOK)
	if len(sub.enqs) != 1 || sub.enqs[0].ProductID != "p1" {
		t.Fatalf("enqs = %+v", sub.enqs)
	}
}

func TestSubmissions_ValidationNeverReachesService(t *testing.T) {
	sub := &stubSubmissions{}
	e := newEnv(t, func(d *Deps) { d.Submissions = sub })

	w := e.do(t, http.MethodPost, "/api/contact", `{"name":"Ada","email":"not-an-email"}`)
	expectStatus(t, w, http.StatusBadRequest)
	resp := decode[ErrorResponse](t, w.Body.Bytes())
	if resp.Details["email"] == "" || resp.Details["message"] != "is required" {
		t.Fatalf("details = %v", resp.Details)
	}

	w = e.do(t, http.MethodPost, "/api/careers/apply", `{"name":"Ada","email":"ada@example.com"}`)
	expectStatus(t, w, http.StatusBadRequest)
	if !strings.Contains(w.Body.String(), `"resume_url":"is required"`) {
		t.Fatalf("body = %s", w.Body.String())
	}

	if len(sub.contacts)+len(sub.apps)+len(sub.enqs) != 0 {
		t.Fatalf("service called on invalid input")
	}
}

func TestSubmissions_Failure(t *testing.T) {
	sub := &stubSubmissions{err: errors.New("store down and mail down")}
	e := newEnv(t, func(d *Deps) { d.Submissions = sub })

	w := e.do(t, http.MethodPost, "/api/products/enquiry", `{"name":"Ada","email":"ada@example.com","message":"?"}`)
	expectStatus(t, w, http.StatusInternalServerError)
	resp := decode[ErrorResponse](t, w.Body.Bytes())
	if resp.Code != ErrCodeSubmitFailed || strings.Contains(resp.Error, "store down") {
		t.Fatalf("resp = %+v", resp)
	}
}
