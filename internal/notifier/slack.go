package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends recruiter alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	gap        time.Duration
}

// NewSlackNotifier returns a notifier that posts each alert to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		gap:        500 * time.Millisecond,
	}
}

// Notify sends each alert as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(ctx context.Context, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	failures := 0
	for i, a := range alerts {
		if i > 0 {
			if err := sleep(ctx, s.gap); err != nil {
				return err
			}
		}

		if err := s.sendMessage(ctx, a); err != nil {
			s.logger.Error("slack notification failed", "kind", a.Kind, "candidate", a.CandidateName, "error", err)
			failures++
		}
	}

	if failures == len(alerts) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(alerts)-failures, "failed", failures)
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

func (s *SlackNotifier) sendMessage(ctx context.Context, a model.Alert) error {
	body, err := json.Marshal(buildPayload(a))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.post(ctx, body)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		if err := sleep(ctx, time.Duration(secs)*time.Second); err != nil {
			return err
		}

		resp2, err := s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "kind", a.Kind, "candidate", a.CandidateName, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "kind", a.Kind, "candidate", a.CandidateName)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a sample alert to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, []model.Alert{{
		Kind:           model.AlertShortlisted,
		CandidateName:  "Test Candidate",
		CandidateEmail: "test@example.com",
		JobTitle:       "Integration Check",
		Score:          90,
		Highlights:     []string{"Notification channel is wired up"},
	}})
}

// headline is the one-line summary shared by every channel.
func headline(a model.Alert) string {
	switch a.Kind {
	case model.AlertShortlisted:
		return fmt.Sprintf("⭐ %s shortlisted for %s (ATS %d)", a.CandidateName, a.JobTitle, a.Score)
	case model.AlertCallAnalysed:
		return fmt.Sprintf("📞 %s screened for %s: %s (fit %d/10)", a.CandidateName, a.JobTitle, a.Recommendation, a.Score)
	}
	return fmt.Sprintf("%s: %s", a.CandidateName, a.JobTitle)
}

func buildPayload(a model.Alert) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: headline(a)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Candidate:*\n" + a.CandidateName},
				{Type: "mrkdwn", Text: "*Email:*\n" + a.CandidateEmail},
			},
		},
	}

	if len(a.Highlights) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "• " + strings.Join(a.Highlights, "\n• ")},
		})
	}

	if a.Link != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "Open"},
				URL:   a.Link,
				Style: "primary",
			}},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{Blocks: blocks}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
