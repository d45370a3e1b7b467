package ats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/hirecall/internal/mail"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/task"
)

// ErrMailNotConfigured is returned by SendEmail when no mailer is set up.
var ErrMailNotConfigured = errors.New("email service not configured")

// Shortlister flags candidates and tells them (and the recruiter) about it.
type Shortlister struct {
	apps     model.ApplicationStore
	jobs     model.JobPostStore
	mailer   model.Mailer
	from     string
	notifier model.Notifier
	tasks    *task.Runner
	baseURL  string
	logger   *slog.Logger
}

// NewShortlister wires a Shortlister. mailer is nil when email is disabled;
// notifier may be nil when recruiter alerts are off.
func NewShortlister(
	apps model.ApplicationStore,
	jobs model.JobPostStore,
	mailer model.Mailer,
	from string,
	notifier model.Notifier,
	tasks *task.Runner,
	baseURL string,
	logger *slog.Logger,
) *Shortlister {
	return &Shortlister{
		apps:     apps,
		jobs:     jobs,
		mailer:   mailer,
		from:     from,
		notifier: notifier,
		tasks:    tasks,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// Shortlist marks an application shortlisted by hand and emails the
// candidate in the background.
func (s *Shortlister) Shortlist(ctx context.Context, applicationID string) (*model.JobApplication, error) {
	if applicationID == "" {
		return nil, model.Invalid("Missing required field (applicationId)")
	}
	app, err := s.apps.Shortlist(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetJobPost(ctx, app.JobPostID)
	if err != nil {
		// The flag is already set; only the email loses its job title.
		s.logger.Warn("job post lookup failed for shortlist email", "application_id", app.ID, "error", err)
		job = &model.JobPost{ID: app.JobPostID}
	}
	s.logger.Info("candidate shortlisted", "application_id", app.ID, "job_post_id", app.JobPostID)
	s.announce(app, job, false)
	return app, nil
}

// SendEmail sends the shortlist email now and returns the provider message id.
func (s *Shortlister) SendEmail(ctx context.Context, sl mail.Shortlist) (string, error) {
	if sl.CandidateName == "" || sl.CandidateEmail == "" || sl.JobTitle == "" {
		return "", model.Invalid("Missing required fields (candidateName, candidateEmail, jobTitle)")
	}
	if s.mailer == nil {
		return "", ErrMailNotConfigured
	}
	email, err := mail.ShortlistEmail(s.from, sl)
	if err != nil {
		return "", err
	}
	id, err := s.mailer.Send(ctx, email)
	if err != nil {
		return "", fmt.Errorf("sending shortlist email to %s: %w", sl.CandidateEmail, err)
	}
	s.logger.Info("shortlist email sent", "to", sl.CandidateEmail, "email_id", id)
	return id, nil
}

// announce schedules the candidate email and, for automatic shortlists, a
// recruiter alert. Neither can fail the caller.
func (s *Shortlister) announce(app *model.JobApplication, job *model.JobPost, alert bool) {
	score := 0
	if app.ATSScore != nil {
		score = *app.ATSScore
	}

	if s.mailer != nil {
		sl := mail.Shortlist{
			CandidateName:  app.CandidateName,
			CandidateEmail: app.CandidateEmail,
			JobTitle:       job.Title,
			Score:          score,
		}
		s.tasks.Go("shortlist-email", func(ctx context.Context) error {
			_, err := s.SendEmail(ctx, sl)
			return err
		})
	}

	if alert && s.notifier != nil {
		a := model.Alert{
			Kind:           model.AlertShortlisted,
			CandidateName:  app.CandidateName,
			CandidateEmail: app.CandidateEmail,
			JobTitle:       job.Title,
			Score:          score,
		}
		if app.ATSAnalysis != nil {
			a.Highlights = firstN(app.ATSAnalysis.Strengths, 3)
		}
		if s.baseURL != "" {
			a.Link = s.baseURL + "/applications/" + app.ID
		}
		s.tasks.Go("shortlist-alert", func(ctx context.Context) error {
			return s.notifier.Notify(ctx, []model.Alert{a})
		})
	}
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
