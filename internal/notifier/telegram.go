package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amishk599/hirecall/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier sends recruiter alerts to one Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegramNotifier connects to the bot API. It fails if the token is rejected.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting telegram bot: %w", err)
	}
	return NewTelegramNotifierWithBot(bot, chatID, logger), nil
}

// NewTelegramNotifierWithBot wraps an existing bot client.
func NewTelegramNotifierWithBot(bot *tgbotapi.BotAPI, chatID int64, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

// Notify sends one message per alert. Returns an error only if all fail.
func (t *TelegramNotifier) Notify(ctx context.Context, alerts []model.Alert) error {
	failures := 0
	for _, a := range alerts {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, telegramText(a))
		msg.DisableWebPagePreview = true
		if a.Link != "" {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Open", a.Link)),
			)
		}
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error("telegram notification failed", "kind", a.Kind, "candidate", a.CandidateName, "error", err)
			failures++
			continue
		}
		t.logger.Info("telegram message sent", "kind", a.Kind, "candidate", a.CandidateName)
	}
	if len(alerts) > 0 && failures == len(alerts) {
		return fmt.Errorf("all %d telegram notifications failed", failures)
	}
	return nil
}

func telegramText(a model.Alert) string {
	var b strings.Builder
	b.WriteString(headline(a))
	b.WriteString("\n")
	b.WriteString(a.CandidateEmail)
	for _, h := range a.Highlights {
		b.WriteString("\n• " + h)
	}
	return b.String()
}
