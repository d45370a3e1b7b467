package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAlert(name string) model.Alert {
	return model.Alert{
		Kind:           model.AlertShortlisted,
		CandidateName:  name,
		CandidateEmail: "ana@example.com",
		JobTitle:       "Backend Engineer",
		Score:          91,
		Highlights:     []string{"Strong Go background", "Led a payments migration"},
		Link:           "https://hire.example.com/applications/1",
	}
}

func newTestSlack(url string, client *http.Client) *SlackNotifier {
	n := NewSlackNotifier(url, client, discardLogger())
	n.gap = 0
	return n
}

func TestSlackNotifier_EmptyAlerts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())

	if err := n.Notify(context.Background(), nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify(context.Background(), []model.Alert{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleAlert(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("Ana")}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if got := payload.Blocks[0].Text.Text; got != "⭐ Ana shortlisted for Backend Engineer (ATS 91)" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Candidate:*\nAna" {
		t.Errorf("candidate field = %q", got)
	}
	if got := payload.Blocks[3].Elements[0].URL; got != "https://hire.example.com/applications/1" {
		t.Errorf("action URL = %q", got)
	}
}

func TestSlackNotifier_MultipleAlerts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	alerts := []model.Alert{sampleAlert("A"), sampleAlert("B"), sampleAlert("C")}

	if err := n.Notify(context.Background(), alerts); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("A"), sampleAlert("B")}); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("Fails"), sampleAlert("Succeeds")}); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("Ana")}); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	alert := model.Alert{
		Kind:           model.AlertCallAnalysed,
		CandidateName:  "Ben",
		CandidateEmail: "ben@example.com",
		JobTitle:       "SRE",
		Score:          8,
		Recommendation: model.RecommendYes,
		// No highlights and no link: header, fields and divider only.
	}

	if err := n.Notify(context.Background(), []model.Alert{alert}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" || payload.Blocks[0].Text.Text != "📞 Ben screened for SRE: yes (fit 8/10)" {
		t.Errorf("header = %+v", payload.Blocks[0])
	}
	if payload.Blocks[1].Type != "section" || len(payload.Blocks[1].Fields) != 2 {
		t.Errorf("block[1] not a 2-field section")
	}
	if payload.Blocks[2].Type != "divider" {
		t.Errorf("block[2] type = %q, want divider", payload.Blocks[2].Type)
	}
}
