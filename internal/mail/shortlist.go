// Package mail sends candidate email through Resend, Gmail or the log.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var shortlistTmpl = template.Must(template.ParseFS(templateFS, "templates/shortlist.html"))

// Shortlist is the data of a shortlist notification.
type Shortlist struct {
	CandidateName    string
	CandidateEmail   string
	JobTitle         string
	OrganizationName string
	Score            int
}

// ShortlistSubject is the subject line of the shortlist email.
func ShortlistSubject(jobTitle string) string {
	return fmt.Sprintf("Great News: You've Been Shortlisted for %s", jobTitle)
}

// ShortlistEmail renders the shortlist notification sent from from.
func ShortlistEmail(from string, s Shortlist) (model.Email, error) {
	var buf bytes.Buffer
	err := shortlistTmpl.Execute(&buf, struct {
		Shortlist
		Year int
	}{s, time.Now().Year()})
	if err != nil {
		return model.Email{}, fmt.Errorf("rendering shortlist email: %w", err)
	}
	return model.Email{
		From:    from,
		To:      s.CandidateEmail,
		Subject: ShortlistSubject(s.JobTitle),
		HTML:    buf.String(),
	}, nil
}
