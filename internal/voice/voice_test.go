package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ms(v int64) *int64 { return &v }

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw, cc, want string
	}{
		{"(555) 123-4567", "+91", "+915551234567"},
		{"+1 555 123 4567", "+91", "+15551234567"},
		{"+44 (0)20-7946-0958", "+91", "+4402079460958"},
		{"98765 43210", "", "+919876543210"},
		{"  5551234  ", "1", "+15551234"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.raw, tt.cc); got != tt.want {
			t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.raw, tt.cc, got, tt.want)
		}
	}
}

func TestFormatFromNumber(t *testing.T) {
	if got := FormatFromNumber("+1 (415) 555-0100"); got != "+14155550100" {
		t.Errorf("FormatFromNumber = %q, want +14155550100", got)
	}
	if got := FormatFromNumber("14155550100"); got != "+14155550100" {
		t.Errorf("FormatFromNumber = %q, want +14155550100", got)
	}
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name       string
		start, end *int64
		want       int
	}{
		{"one minute", ms(1000), ms(61000), 60},
		{"rounds half up", ms(0), ms(1500), 2},
		{"rounds down", ms(0), ms(1499), 1},
		{"negative is zero", ms(61000), ms(1000), 0},
		{"missing start", nil, ms(1000), 0},
		{"missing end", ms(1000), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationSeconds(tt.start, tt.end, discardLogger()); got != tt.want {
				t.Errorf("DurationSeconds = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDurationSeconds_LogsAnomaly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	DurationSeconds(ms(5000), ms(1000), logger)
	if !strings.Contains(buf.String(), "out of order") {
		t.Errorf("expected anomaly log, got %q", buf.String())
	}
}

func TestCreatePhoneCall(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody createPhoneCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"call_id":"ext-1","call_status":"registered"}`))
	}))
	defer srv.Close()

	g := NewRetellGateway(srv.URL, "key", srv.Client())
	id, err := g.CreatePhoneCall(context.Background(), model.PhoneCallRequest{
		AgentID:          "agent_abc",
		FromNumber:       "+14155550100",
		ToNumber:         "+915551234567",
		DynamicVariables: map[string]string{"candidate_name": "Ana"},
	})
	if err != nil {
		t.Fatalf("CreatePhoneCall: %v", err)
	}
	if id != "ext-1" {
		t.Errorf("call id = %q, want ext-1", id)
	}
	if gotPath != "/v2/create-phone-call" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.OverrideAgentID != "agent_abc" || gotBody.ToNumber != "+915551234567" || gotBody.DynamicVariables["candidate_name"] != "Ana" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestCreateWebCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/create-web-call" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"call_id":"web-1","access_token":"tok"}`))
	}))
	defer srv.Close()

	g := NewRetellGateway(srv.URL, "key", srv.Client())
	wc, err := g.CreateWebCall(context.Background(), model.WebCallRequest{AgentID: "agent_abc"})
	if err != nil {
		t.Fatalf("CreateWebCall: %v", err)
	}
	if wc.CallID != "web-1" || wc.AccessToken != "tok" {
		t.Errorf("web call = %+v", wc)
	}
}

func TestRetrieveCall_NoTranscriptIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/get-call/ext-1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"call_id":"ext-1","call_status":"ongoing","start_timestamp":1000}`))
	}))
	defer srv.Close()

	g := NewRetellGateway(srv.URL, "key", srv.Client())
	pc, err := g.RetrieveCall(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("RetrieveCall: %v", err)
	}
	if pc.Transcript != "" || pc.Status != "ongoing" {
		t.Errorf("provider call = %+v", pc)
	}
	if pc.StartTimestamp == nil || *pc.StartTimestamp != 1000 || pc.EndTimestamp != nil {
		t.Errorf("timestamps = %v, %v", pc.StartTimestamp, pc.EndTimestamp)
	}
}

func TestRetrieveCall_HTTPErrorCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewRetellGateway(srv.URL, "key", srv.Client())
	_, err := g.RetrieveCall(context.Background(), "ext-1")

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 7*time.Second {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}
