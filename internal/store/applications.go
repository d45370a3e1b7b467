package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/amishk599/hirecall/internal/model"
)

const applicationColumns = `id, created_at, job_post_id, candidate_name, candidate_email, candidate_phone,
	cv_text, cover_letter, linkedin_url, ats_score, ats_analysis, status, shortlist_date, is_shortlisted`

func scanApplication(row scanner) (*model.JobApplication, error) {
	var (
		a         model.JobApplication
		score     sql.NullInt64
		analysis  sql.NullString
		shortlist sql.NullTime
	)
	err := row.Scan(&a.ID, &a.CreatedAt, &a.JobPostID, &a.CandidateName, &a.CandidateEmail, &a.CandidatePhone,
		&a.ResumeText, &a.CoverLetter, &a.LinkedInURL, &score, &analysis, &a.Status, &shortlist, &a.IsShortlisted)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if score.Valid {
		v := int(score.Int64)
		a.ATSScore = &v
	}
	if analysis.Valid {
		a.ATSAnalysis = new(model.ATSAnalysis)
		if err := json.Unmarshal([]byte(analysis.String), a.ATSAnalysis); err != nil {
			return nil, fmt.Errorf("decoding ats analysis of application %s: %w", a.ID, err)
		}
	}
	a.ShortlistDate = timePtr(shortlist)
	return &a, nil
}

// normalizeEmail is the form emails are stored and compared in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateApplication stores a submission. A second application with the same
// email for the same job post fails with model.ErrAlreadyApplied.
func (s *Store) CreateApplication(ctx context.Context, in model.NewApplication) (*model.JobApplication, error) {
	id := uuid.NewString()
	_, err := s.exec(ctx, `INSERT INTO job_applications
		(id, created_at, job_post_id, candidate_name, candidate_email, candidate_phone, cv_text, cover_letter, linkedin_url, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now(), in.JobPostID, strings.TrimSpace(in.CandidateName), normalizeEmail(in.CandidateEmail),
		strings.TrimSpace(in.CandidatePhone), in.ResumeText, in.CoverLetter, in.LinkedInURL, string(model.AppSubmitted))
	if isUniqueViolation(err) {
		return nil, model.ErrAlreadyApplied
	}
	if err != nil {
		return nil, fmt.Errorf("creating application for job post %s: %w", in.JobPostID, err)
	}
	return s.GetApplication(ctx, id)
}

func (s *Store) GetApplication(ctx context.Context, id string) (*model.JobApplication, error) {
	a, err := scanApplication(s.queryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading application %s: %w", id, err)
	}
	return a, nil
}

// ApplicationExists reports whether email has already applied to the job post.
func (s *Store) ApplicationExists(ctx context.Context, jobPostID, email string) (bool, error) {
	var exists int
	err := s.queryRow(ctx, `SELECT 1 FROM job_applications WHERE job_post_id = ? AND candidate_email = ?`,
		jobPostID, normalizeEmail(email)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking application of %s for job post %s: %w", email, jobPostID, err)
	}
	return true, nil
}

// ListApplications returns the applications of a job post, best score first.
func (s *Store) ListApplications(ctx context.Context, jobPostID string) ([]*model.JobApplication, error) {
	rows, err := s.query(ctx, `SELECT `+applicationColumns+` FROM job_applications
		WHERE job_post_id = ?
		ORDER BY CASE WHEN ats_score IS NULL THEN 1 ELSE 0 END, ats_score DESC, created_at`, jobPostID)
	if err != nil {
		return nil, fmt.Errorf("listing applications of job post %s: %w", jobPostID, err)
	}
	defer rows.Close()

	var apps []*model.JobApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing applications of job post %s: %w", jobPostID, err)
	}
	return apps, nil
}

// RecordATSScore writes the score and analysis, and the shortlist flag when
// the score reaches threshold, in one statement. Only an unscored application
// is updated; won is false when a score was already present.
func (s *Store) RecordATSScore(ctx context.Context, id string, analysis model.ATSAnalysis, threshold int) (*model.JobApplication, bool, error) {
	encoded, err := json.Marshal(analysis)
	if err != nil {
		return nil, false, fmt.Errorf("encoding ats analysis: %w", err)
	}

	var res sql.Result
	if analysis.FinalScore >= threshold {
		res, err = s.exec(ctx, `UPDATE job_applications
			SET ats_score = ?, ats_analysis = ?, is_shortlisted = TRUE, status = ?,
				shortlist_date = COALESCE(shortlist_date, ?)
			WHERE id = ? AND ats_score IS NULL`,
			analysis.FinalScore, string(encoded), string(model.AppShortlisted), s.now(), id)
	} else {
		res, err = s.exec(ctx, `UPDATE job_applications
			SET ats_score = ?, ats_analysis = ?
			WHERE id = ? AND ats_score IS NULL`,
			analysis.FinalScore, string(encoded), id)
	}
	if err != nil {
		return nil, false, fmt.Errorf("recording ats score of application %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("recording ats score of application %s: %w", id, err)
	}

	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return app, n == 1, nil
}

// Shortlist marks an application shortlisted by hand. shortlist_date keeps
// its first value.
func (s *Store) Shortlist(ctx context.Context, id string) (*model.JobApplication, error) {
	res, err := s.exec(ctx, `UPDATE job_applications
		SET is_shortlisted = TRUE, status = ?, shortlist_date = COALESCE(shortlist_date, ?)
		WHERE id = ?`,
		string(model.AppShortlisted), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("shortlisting application %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("application %s: %w", id, model.ErrNotFound)
	}
	return s.GetApplication(ctx, id)
}
