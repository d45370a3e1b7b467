package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/hirecall/internal/model"
)

// fakeTelegram answers getMe and records sendMessage texts.
type fakeTelegram struct {
	mu       sync.Mutex
	texts    []string
	failSend bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"hirecall","username":"hirecall_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		r.ParseForm()
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		if f.failSend {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestTelegram(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient: %v", err)
	}
	return NewTelegramNotifierWithBot(bot, 42, discardLogger())
}

func TestTelegramNotifier_SendsOneMessagePerAlert(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestTelegram(t, fake)

	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("Ana"), sampleAlert("Ben")}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fake.texts) != 2 {
		t.Fatalf("sent %d messages, want 2", len(fake.texts))
	}
	if !strings.HasPrefix(fake.texts[0], "⭐ Ana shortlisted for Backend Engineer (ATS 91)") {
		t.Errorf("text = %q", fake.texts[0])
	}
	if !strings.Contains(fake.texts[0], "• Strong Go background") {
		t.Errorf("highlights missing from %q", fake.texts[0])
	}
}

func TestTelegramNotifier_AllFail(t *testing.T) {
	n := newTestTelegram(t, &fakeTelegram{failSend: true})
	if err := n.Notify(context.Background(), []model.Alert{sampleAlert("Ana")}); err == nil {
		t.Error("expected error when every send fails")
	}
}
