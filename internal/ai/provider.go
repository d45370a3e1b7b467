package ai

import (
	"context"
	"strings"

	"github.com/amishk599/hirecall/internal/model"
)

// Client sends a message list to a generative model and returns the raw text.
// Implementations make exactly one request and do not retry.
type Client interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// Flatten joins message contents in order, separated by a blank line. It is
// used for providers that take a single prompt rather than a chat history.
func Flatten(messages []model.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// System and User build single messages.
func System(content string) model.Message { return model.Message{Role: model.RoleSystem, Content: content} }
func User(content string) model.Message { return model.Message{Role: model.RoleUser, Content: content} }
