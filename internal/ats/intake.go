package ats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/task"
)

// Submission is one candidate applying to one job post.
type Submission struct {
	JobPostID      string
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	CoverLetter    string
	LinkedInURL    string
	Resume         []byte
}

// Intake creates applications and schedules their scoring.
type Intake struct {
	apps   model.ApplicationStore
	jobs   model.JobPostStore
	pdf    TextExtractor
	scorer *Scorer
	tasks  *task.Runner
	logger *slog.Logger
}

func NewIntake(apps model.ApplicationStore, jobs model.JobPostStore, pdf TextExtractor, scorer *Scorer, tasks *task.Runner, logger *slog.Logger) *Intake {
	return &Intake{apps: apps, jobs: jobs, pdf: pdf, scorer: scorer, tasks: tasks, logger: logger}
}

// Submit stores an application and starts ATS scoring in the background.
// An unreadable résumé does not reject the application; it is stored with
// empty text and scores poorly.
func (in *Intake) Submit(ctx context.Context, sub Submission) (*model.JobApplication, error) {
	if sub.JobPostID == "" || strings.TrimSpace(sub.CandidateName) == "" || strings.TrimSpace(sub.CandidateEmail) == "" || len(sub.Resume) == 0 {
		return nil, model.Invalid("Missing required fields (jobPostId, candidateName, candidateEmail, cvFile)")
	}
	if _, err := in.jobs.GetJobPost(ctx, sub.JobPostID); err != nil {
		return nil, err
	}

	text, err := in.pdf.Extract(sub.Resume)
	if err != nil {
		in.logger.Warn("resume text extraction failed, storing application without text",
			"job_post_id", sub.JobPostID, "error", err)
		text = ""
	}

	applied, err := in.apps.ApplicationExists(ctx, sub.JobPostID, sub.CandidateEmail)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, model.ErrAlreadyApplied
	}

	app, err := in.apps.CreateApplication(ctx, model.NewApplication{
		JobPostID:      sub.JobPostID,
		CandidateName:  strings.TrimSpace(sub.CandidateName),
		CandidateEmail: sub.CandidateEmail,
		CandidatePhone: strings.TrimSpace(sub.CandidatePhone),
		ResumeText:     text,
		CoverLetter:    strings.TrimSpace(sub.CoverLetter),
		LinkedInURL:    strings.TrimSpace(sub.LinkedInURL),
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyApplied) {
			in.logger.Warn("duplicate application caught by unique index", "job_post_id", sub.JobPostID)
		}
		return nil, err
	}

	if err := in.jobs.IncrementApplicationCount(ctx, sub.JobPostID); err != nil {
		in.logger.Error("incrementing application count", "job_post_id", sub.JobPostID, "error", err)
	}

	in.logger.Info("application submitted", "application_id", app.ID, "job_post_id", app.JobPostID, "resume_chars", len(text))
	if in.scorer != nil {
		id, jobID := app.ID, app.JobPostID
		in.tasks.Go("ats-score", func(ctx context.Context) error {
			_, err := in.scorer.ScoreApplication(ctx, id, jobID)
			if err != nil {
				return fmt.Errorf("scoring application %s: %w", id, err)
			}
			return nil
		})
	}
	return app, nil
}

// EmailApplied reports whether email has already applied to the job post.
func (in *Intake) EmailApplied(ctx context.Context, jobPostID, email string) (bool, error) {
	if jobPostID == "" || strings.TrimSpace(email) == "" {
		return false, model.Invalid("Missing required fields (jobPostId, candidateEmail)")
	}
	return in.apps.ApplicationExists(ctx, jobPostID, email)
}
