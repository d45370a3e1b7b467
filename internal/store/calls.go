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

const callColumns = `id, created_at, job_post_id, job_application_id, user_id, organization_id,
	agent_id, agent_name, call_id, status, duration, started_at, ended_at, call_transcript,
	summary_report, candidate_responses, is_analysed, is_ended, is_viewed, notes`

func scanCall(row scanner) (*model.Call, error) {
	var (
		c          model.Call
		externalID sql.NullString
		started    sql.NullTime
		ended      sql.NullTime
		report     sql.NullString
		responses  sql.NullString
	)
	err := row.Scan(&c.ID, &c.CreatedAt, &c.JobPostID, &c.JobApplicationID, &c.UserID, &c.OrganizationID,
		&c.AgentID, &c.AgentName, &externalID, &c.Status, &c.Duration, &started, &ended, &c.Transcript,
		&report, &responses, &c.IsAnalysed, &c.IsEnded, &c.IsViewed, &c.Notes)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.ExternalCallID = externalID.String
	c.StartedAt = timePtr(started)
	c.EndedAt = timePtr(ended)
	if report.Valid {
		c.SummaryReport = new(model.SummaryReport)
		if err := json.Unmarshal([]byte(report.String), c.SummaryReport); err != nil {
			return nil, fmt.Errorf("decoding summary report of call %s: %w", c.ID, err)
		}
	}
	if responses.Valid {
		c.Responses = new(model.Responses)
		if err := json.Unmarshal([]byte(responses.String), c.Responses); err != nil {
			return nil, fmt.Errorf("decoding responses of call %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// CreateCall inserts a pending call row.
func (s *Store) CreateCall(ctx context.Context, in model.NewCall) (*model.Call, error) {
	id := uuid.NewString()
	_, err := s.exec(ctx, `INSERT INTO initial_calls
		(id, created_at, job_post_id, job_application_id, user_id, organization_id, agent_id, agent_name, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now(), in.JobPostID, in.JobApplicationID, in.UserID, in.OrganizationID,
		in.AgentID, in.AgentName, string(model.CallPending))
	if err != nil {
		return nil, fmt.Errorf("creating call for application %s: %w", in.JobApplicationID, err)
	}
	return s.GetCall(ctx, id)
}

// MarkDispatched records the provider call id and moves a pending call to
// in_progress. started_at is only ever set once.
func (s *Store) MarkDispatched(ctx context.Context, id, externalCallID string) (*model.Call, error) {
	res, err := s.exec(ctx, `UPDATE initial_calls
		SET call_id = ?, status = ?, started_at = COALESCE(started_at, ?)
		WHERE id = ? AND status = ?`,
		externalCallID, string(model.CallInProgress), s.now(), id, string(model.CallPending))
	if err != nil {
		return nil, fmt.Errorf("marking call %s dispatched: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("marking call %s dispatched: %w", id, err)
	} else if n == 0 {
		if _, err := s.GetCall(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("call %s is not pending: %w", id, model.ErrInvalidTransition)
	}
	return s.GetCall(ctx, id)
}

// CompleteWithAnalysis writes the transcript, report and responses together
// and sets is_analysed. The update only applies while is_analysed is false,
// so of two racing writers exactly one wins; the loser gets the winner's row.
func (s *Store) CompleteWithAnalysis(ctx context.Context, id string, c model.Completion) (*model.Call, bool, error) {
	report, err := json.Marshal(c.Report)
	if err != nil {
		return nil, false, fmt.Errorf("encoding summary report: %w", err)
	}
	responses, err := json.Marshal(c.Responses)
	if err != nil {
		return nil, false, fmt.Errorf("encoding responses: %w", err)
	}

	now := s.now()
	res, err := s.exec(ctx, `UPDATE initial_calls
		SET status = ?, call_id = COALESCE(call_id, ?), call_transcript = ?, summary_report = ?,
			candidate_responses = ?, duration = ?, is_analysed = TRUE, is_ended = TRUE,
			started_at = COALESCE(started_at, ?), ended_at = COALESCE(ended_at, ?)
		WHERE id = ? AND is_analysed = FALSE`,
		string(model.CallCompleted), nullString(c.ExternalCallID), c.Transcript, string(report),
		string(responses), c.Duration, now, now, id)
	if err != nil {
		return nil, false, fmt.Errorf("completing call %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("completing call %s: %w", id, err)
	}

	call, err := s.GetCall(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return call, n == 1, nil
}

// MarkEnded records that a call finished without an analysis. It never
// touches a call that has already been analysed.
func (s *Store) MarkEnded(ctx context.Context, id string) (*model.Call, error) {
	_, err := s.exec(ctx, `UPDATE initial_calls
		SET status = ?, is_ended = TRUE, ended_at = COALESCE(ended_at, ?)
		WHERE id = ? AND is_analysed = FALSE`,
		string(model.CallCompleted), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("marking call %s ended: %w", id, err)
	}
	return s.GetCall(ctx, id)
}

func (s *Store) GetCall(ctx context.Context, id string) (*model.Call, error) {
	c, err := scanCall(s.queryRow(ctx, `SELECT `+callColumns+` FROM initial_calls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("call %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading call %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) GetCallByExternalID(ctx context.Context, externalCallID string) (*model.Call, error) {
	c, err := scanCall(s.queryRow(ctx, `SELECT `+callColumns+` FROM initial_calls
		WHERE call_id = ? ORDER BY created_at DESC LIMIT 1`, externalCallID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("call with provider id %s: %w", externalCallID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading call by provider id %s: %w", externalCallID, err)
	}
	return c, nil
}

// ListCalls returns calls matching f, newest first.
func (s *Store) ListCalls(ctx context.Context, f model.CallFilter) ([]*model.Call, error) {
	var (
		where []string
		args  []any
	)
	if f.JobPostID != "" {
		where = append(where, "job_post_id = ?")
		args = append(args, f.JobPostID)
	}
	if f.ApplicationID != "" {
		where = append(where, "job_application_id = ?")
		args = append(args, f.ApplicationID)
	}
	if f.OrganizationID != "" {
		where = append(where, "organization_id = ?")
		args = append(args, f.OrganizationID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Unanalysed {
		where = append(where, "is_analysed = FALSE", "call_id IS NOT NULL")
	}

	q := `SELECT ` + callColumns + ` FROM initial_calls`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}
	defer rows.Close()

	var calls []*model.Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}
	return calls, nil
}

// UpdateCallReview sets the recruiter review fields. Nil arguments are left
// unchanged; lifecycle columns are never written here.
func (s *Store) UpdateCallReview(ctx context.Context, id string, viewed *bool, notes *string) (*model.Call, error) {
	var (
		set  []string
		args []any
	)
	if viewed != nil {
		set = append(set, "is_viewed = ?")
		args = append(args, *viewed)
	}
	if notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *notes)
	}
	if len(set) == 0 {
		return s.GetCall(ctx, id)
	}

	args = append(args, id)
	res, err := s.exec(ctx, `UPDATE initial_calls SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating review of call %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("call %s: %w", id, model.ErrNotFound)
	}
	return s.GetCall(ctx, id)
}
