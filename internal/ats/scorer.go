// Package ats scores résumés against job posts, takes in applications and
// shortlists candidates.
package ats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/prompt"
)

// DefaultThreshold is the score at which an application is auto-shortlisted.
const DefaultThreshold = 85

// TextExtractor turns an uploaded PDF into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Result is the outcome of scoring one application.
type Result struct {
	Score         int               `json:"score"`
	Analysis      model.ATSAnalysis `json:"analysis"`
	IsShortlisted bool              `json:"isShortlisted"`
}

// Scorer runs résumés through the model and records application scores.
type Scorer struct {
	apps        model.ApplicationStore
	jobs        model.JobPostStore
	client      ai.Client
	pdf         TextExtractor
	shortlister *Shortlister
	threshold   int
	logger      *slog.Logger
}

// NewScorer wires a Scorer. shortlister may be nil, in which case
// auto-shortlists send nothing.
func NewScorer(
	apps model.ApplicationStore,
	jobs model.JobPostStore,
	client ai.Client,
	pdf TextExtractor,
	shortlister *Shortlister,
	threshold int,
	logger *slog.Logger,
) *Scorer {
	return &Scorer{
		apps:        apps,
		jobs:        jobs,
		client:      client,
		pdf:         pdf,
		shortlister: shortlister,
		threshold:   threshold,
		logger:      logger,
	}
}

// ScoreApplication scores a submitted application once. A second call for
// the same application returns the stored score without asking the model.
func (s *Scorer) ScoreApplication(ctx context.Context, applicationID, jobPostID string) (*Result, error) {
	if applicationID == "" || jobPostID == "" {
		return nil, model.Invalid("Missing required fields (applicationId, jobPostId)")
	}
	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetJobPost(ctx, jobPostID)
	if err != nil {
		return nil, err
	}
	if app.JobPostID != job.ID {
		return nil, model.Invalid("Application %s does not belong to job post %s", app.ID, job.ID)
	}
	if app.Scored() {
		s.logger.Info("application already scored", "application_id", app.ID, "score", *app.ATSScore)
		return storedResult(app), nil
	}

	raw, err := s.client.Complete(ctx, []model.Message{ai.User(prompt.ATSScore(prompt.ATSInput{
		JobTitle:         job.Title,
		Description:      job.Description,
		Requirements:     job.Requirements,
		Responsibilities: job.Responsibilities,
		Resume:           app.ResumeText,
	}))})
	if err != nil {
		return nil, fmt.Errorf("scoring application %s: %w", app.ID, err)
	}
	analysis, err := ParseATSAnalysis(ai.ExtractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("scoring application %s: %w", app.ID, err)
	}

	updated, won, err := s.apps.RecordATSScore(ctx, app.ID, analysis, s.threshold)
	if err != nil {
		return nil, err
	}
	if !won {
		s.logger.Info("score already recorded by another request", "application_id", app.ID)
		return storedResult(updated), nil
	}

	s.logger.Info("ats scoring completed", "application_id", app.ID, "score", analysis.FinalScore, "shortlisted", updated.IsShortlisted)
	if updated.IsShortlisted && s.shortlister != nil {
		s.shortlister.announce(updated, job, true)
	}
	return &Result{Score: analysis.FinalScore, Analysis: analysis, IsShortlisted: updated.IsShortlisted}, nil
}

func storedResult(app *model.JobApplication) *Result {
	r := &Result{IsShortlisted: app.IsShortlisted}
	if app.ATSScore != nil {
		r.Score = *app.ATSScore
	}
	if app.ATSAnalysis != nil {
		r.Analysis = *app.ATSAnalysis
	}
	return r
}

// CheckResume is the applicant self-check against a free-text job
// description. Nothing is stored.
func (s *Scorer) CheckResume(ctx context.Context, pdf []byte, jobDescription string) (*model.ResumeCheck, error) {
	if len(pdf) == 0 || strings.TrimSpace(jobDescription) == "" {
		return nil, model.Invalid("Missing required fields (cvFile, jobDescription)")
	}
	text, err := s.extract(pdf)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Complete(ctx, []model.Message{ai.User(prompt.ATSCheck(jobDescription, text))})
	if err != nil {
		return nil, fmt.Errorf("checking resume: %w", err)
	}
	check, err := ParseResumeCheck(ai.ExtractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("checking resume: %w", err)
	}
	s.logger.Info("resume check completed", "score", check.Score)
	return &check, nil
}

// ManualCheck scores a résumé against a stored job post without creating an
// application.
func (s *Scorer) ManualCheck(ctx context.Context, jobPostID string, pdf []byte) (*Result, error) {
	if jobPostID == "" || len(pdf) == 0 {
		return nil, model.Invalid("Missing required fields (jobPostId, cvFile)")
	}
	job, err := s.jobs.GetJobPost(ctx, jobPostID)
	if err != nil {
		return nil, err
	}
	text, err := s.extract(pdf)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Complete(ctx, []model.Message{ai.User(prompt.ATSScore(prompt.ATSInput{
		JobTitle:         job.Title,
		Description:      job.Description,
		Requirements:     job.Requirements,
		Responsibilities: job.Responsibilities,
		Resume:           text,
	}))})
	if err != nil {
		return nil, fmt.Errorf("manual ats check for job %s: %w", job.ID, err)
	}
	analysis, err := ParseATSAnalysis(ai.ExtractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("manual ats check for job %s: %w", job.ID, err)
	}
	s.logger.Info("manual ats check completed", "job_post_id", job.ID, "score", analysis.FinalScore)
	return &Result{Score: analysis.FinalScore, Analysis: analysis}, nil
}

// extract requires readable text; the two check flows cannot score an empty résumé.
func (s *Scorer) extract(pdf []byte) (string, error) {
	text, err := s.pdf.Extract(pdf)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", model.ErrUnreadablePDF
	}
	return text, nil
}
