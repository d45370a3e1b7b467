package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

// DefaultResendURL is the Resend API root.
const DefaultResendURL = "https://api.resend.com"

// Ensure ResendMailer implements model.Mailer.
var _ model.Mailer = (*ResendMailer)(nil)

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewResendMailer(baseURL, apiKey string, httpClient *http.Client) *ResendMailer {
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	return &ResendMailer{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send posts one email and returns the Resend message id.
func (m *ResendMailer) Send(ctx context.Context, e model.Email) (string, error) {
	body, err := json.Marshal(resendRequest{From: e.From, To: []string{e.To}, Subject: e.Subject, HTML: e.HTML})
	if err != nil {
		return "", fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email to %s: %w", e.To, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: time.Duration(secs) * time.Second,
			Err:        fmt.Errorf("resend: %s", bytes.TrimSpace(msg)),
		}
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode resend response: %w", err)
	}
	return out.ID, nil
}
