package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amishk599/hirecall/internal/model"
)

// Ensure GmailMailer implements model.Mailer.
var _ model.Mailer = (*GmailMailer)(nil)

// GmailMailer sends email as the authorised Gmail account.
type GmailMailer struct {
	service *gmail.Service
}

// NewGmailMailer builds a mailer from an OAuth client credentials file and a
// previously saved token file. No interactive consent flow is run.
func NewGmailMailer(ctx context.Context, credentialsFile, tokenFile string) (*GmailMailer, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading gmail credentials: %w", err)
	}
	config, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parsing gmail credentials: %w", err)
	}
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading gmail token: %w", err)
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("creating gmail client: %w", err)
	}
	return &GmailMailer{service: srv}, nil
}

// NewGmailMailerWithService wraps an existing Gmail service.
func NewGmailMailerWithService(srv *gmail.Service) *GmailMailer {
	return &GmailMailer{service: srv}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

// Send sends one HTML email and returns the Gmail message id.
func (m *GmailMailer) Send(ctx context.Context, e model.Email) (string, error) {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(rfc822(e))}
	sent, err := m.service.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &model.HTTPError{StatusCode: apiErr.Code, Err: err}
		}
		return "", fmt.Errorf("send email to %s: %w", e.To, err)
	}
	return sent.Id, nil
}

func rfc822(e model.Email) []byte {
	var b strings.Builder
	if e.From != "" {
		b.WriteString("From: " + e.From + "\r\n")
	}
	b.WriteString("To: " + e.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", e.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(e.HTML)
	return []byte(b.String())
}
