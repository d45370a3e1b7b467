package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/hirecall/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes recruiter alerts to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each alert via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each alert. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, alerts []model.Alert) error {
	for _, a := range alerts {
		args := []any{"kind", a.Kind, "candidate", a.CandidateName, "email", a.CandidateEmail, "job_title", a.JobTitle, "score", a.Score}
		if a.Recommendation != "" {
			args = append(args, "recommendation", a.Recommendation)
		}
		if a.Link != "" {
			args = append(args, "link", a.Link)
		}
		n.logger.Info("recruiter alert", args...)
	}
	return nil
}
