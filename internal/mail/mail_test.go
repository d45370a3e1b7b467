package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/amishk599/hirecall/internal/model"
)

func TestShortlistEmail(t *testing.T) {
	e, err := ShortlistEmail("jobs@acme.io", Shortlist{
		CandidateName:  "Ana <script>",
		CandidateEmail: "ana@example.com",
		JobTitle:       "Backend Engineer",
		Score:          91,
	})
	if err != nil {
		t.Fatalf("ShortlistEmail: %v", err)
	}
	if e.Subject != "Great News: You've Been Shortlisted for Backend Engineer" {
		t.Errorf("Subject = %q", e.Subject)
	}
	if e.From != "jobs@acme.io" || e.To != "ana@example.com" {
		t.Errorf("envelope = %q -> %q", e.From, e.To)
	}
	for _, want := range []string{"Backend Engineer", "91%", "Ana &lt;script&gt;"} {
		if !strings.Contains(e.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(e.HTML, " at <strong>") {
		t.Error("organization clause rendered without an organization")
	}
}

func TestResendMailer_Send(t *testing.T) {
	var got resendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("path = %q", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id":"re_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_key", srv.Client())
	id, err := m.Send(context.Background(), model.Email{From: "a@x.io", To: "b@y.io", Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "re_123" {
		t.Errorf("id = %q", id)
	}
	if auth != "Bearer re_key" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(got.To) != 1 || got.To[0] != "b@y.io" || got.Subject != "Hi" || got.HTML != "<p>x</p>" {
		t.Errorf("request = %+v", got)
	}
}

func TestResendMailer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	_, err := NewResendMailer(srv.URL, "k", srv.Client()).Send(context.Background(), model.Email{To: "b@y.io"})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 2*time.Second {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}

func TestGmailMailer_Send(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var msg gmail.Message
		json.NewDecoder(r.Body).Decode(&msg)
		raw = msg.Raw
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gm_1"}`))
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("gmail.NewService: %v", err)
	}

	id, err := NewGmailMailerWithService(svc).Send(context.Background(), model.Email{
		From: "jobs@acme.io", To: "ana@example.com", Subject: "Shortlisted", HTML: "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "gm_1" {
		t.Errorf("id = %q", id)
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	for _, want := range []string{"To: ana@example.com\r\n", "Content-Type: text/html", "\r\n\r\n<p>hi</p>"} {
		if !bytes.Contains(decoded, []byte(want)) {
			t.Errorf("raw message missing %q:\n%s", want, decoded)
		}
	}
}

func TestGmailMailer_APIErrorIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"backend error"}}`))
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("gmail.NewService: %v", err)
	}
	_, err = NewGmailMailerWithService(svc).Send(context.Background(), model.Email{To: "a@b.c"})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("err = %v, want HTTPError 503", err)
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewTextHandler(&buf, nil)))
	id, err := m.Send(context.Background(), model.Email{To: "a@b.c", Subject: "Hello"})
	if err != nil || id == "" {
		t.Fatalf("Send = %q, %v", id, err)
	}
	if !strings.Contains(buf.String(), "to=a@b.c") {
		t.Errorf("log = %q", buf.String())
	}
}
