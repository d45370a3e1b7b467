package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/amishk599/hirecall/internal/model"
)

// Ensure LogMailer implements model.Mailer.
var _ model.Mailer = (*LogMailer)(nil)

// LogMailer writes outgoing email to the logger instead of sending it.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the envelope and returns a generated id. It never fails.
func (m *LogMailer) Send(_ context.Context, e model.Email) (string, error) {
	id := uuid.NewString()
	m.logger.Info("email", "id", id, "from", e.From, "to", e.To, "subject", e.Subject, "html_bytes", len(e.HTML))
	return id, nil
}
