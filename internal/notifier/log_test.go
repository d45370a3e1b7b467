package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

func TestLogNotifier_Notify_zeroAlerts(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(context.Background(), nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify(context.Background(), []model.Alert{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_logsEachAlert(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	alerts := []model.Alert{
		sampleAlert("Ana"),
		{Kind: model.AlertCallAnalysed, CandidateName: "Ben", Recommendation: model.RecommendYes},
	}
	if err := n.Notify(context.Background(), alerts); err != nil {
		t.Errorf("Notify(alerts) = %v, want nil", err)
	}
	out := buf.String()
	if strings.Count(out, "recruiter alert") != 2 {
		t.Errorf("expected 2 log lines, got:\n%s", out)
	}
	if !strings.Contains(out, "recommendation=yes") {
		t.Errorf("recommendation missing:\n%s", out)
	}
}
