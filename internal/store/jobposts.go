package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amishk599/hirecall/internal/model"
)

const jobPostColumns = `id, organization_id, user_id, title, description, requirements, responsibilities,
	location, is_active, application_count, created_at`

func scanJobPost(row scanner) (*model.JobPost, error) {
	var (
		p                      model.JobPost
		reqs, responsibilities string
	)
	err := row.Scan(&p.ID, &p.OrganizationID, &p.UserID, &p.Title, &p.Description, &reqs, &responsibilities,
		&p.Location, &p.IsActive, &p.ApplicationCount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	if err := json.Unmarshal([]byte(reqs), &p.Requirements); err != nil {
		return nil, fmt.Errorf("decoding requirements of job post %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(responsibilities), &p.Responsibilities); err != nil {
		return nil, fmt.Errorf("decoding responsibilities of job post %s: %w", p.ID, err)
	}
	return &p, nil
}

func (s *Store) GetJobPost(ctx context.Context, id string) (*model.JobPost, error) {
	p, err := scanJobPost(s.queryRow(ctx, `SELECT `+jobPostColumns+` FROM job_posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job post %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading job post %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListJobPosts(ctx context.Context) ([]*model.JobPost, error) {
	rows, err := s.query(ctx, `SELECT `+jobPostColumns+` FROM job_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing job posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.JobPost
	for rows.Next() {
		p, err := scanJobPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing job posts: %w", err)
	}
	return posts, nil
}

// UpsertJobPost inserts or replaces a job post. application_count and
// created_at are kept on update.
func (s *Store) UpsertJobPost(ctx context.Context, p model.JobPost) error {
	reqs, err := json.Marshal(nonNil(p.Requirements))
	if err != nil {
		return fmt.Errorf("encoding requirements: %w", err)
	}
	responsibilities, err := json.Marshal(nonNil(p.Responsibilities))
	if err != nil {
		return fmt.Errorf("encoding responsibilities: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO job_posts
		(id, organization_id, user_id, title, description, requirements, responsibilities, location, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			organization_id = excluded.organization_id,
			user_id = excluded.user_id,
			title = excluded.title,
			description = excluded.description,
			requirements = excluded.requirements,
			responsibilities = excluded.responsibilities,
			location = excluded.location,
			is_active = excluded.is_active`,
		p.ID, p.OrganizationID, p.UserID, p.Title, p.Description, string(reqs), string(responsibilities),
		p.Location, p.IsActive, s.now())
	if err != nil {
		return fmt.Errorf("upserting job post %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) IncrementApplicationCount(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `UPDATE job_posts SET application_count = application_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing application count of job post %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job post %s: %w", id, model.ErrNotFound)
	}
	return nil
}

const callConfigColumns = `id, job_post_id, user_id, organization_id, agent_id, agent_name, greeting_text,
	organization_name, job_title, from_number, call_script, is_active, updated_at`

func scanCallConfig(row scanner) (*model.CallConfig, error) {
	var (
		c      model.CallConfig
		script string
	)
	err := row.Scan(&c.ID, &c.JobPostID, &c.UserID, &c.OrganizationID, &c.AgentID, &c.AgentName, &c.GreetingText,
		&c.OrganizationName, &c.JobTitle, &c.FromNumber, &script, &c.IsActive, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	if err := json.Unmarshal([]byte(script), &c.Script); err != nil {
		return nil, fmt.Errorf("decoding call script of config %s: %w", c.ID, err)
	}
	return &c, nil
}

// GetActiveCallConfig returns the active call config of a job post.
func (s *Store) GetActiveCallConfig(ctx context.Context, jobPostID string) (*model.CallConfig, error) {
	c, err := scanCallConfig(s.queryRow(ctx, `SELECT `+callConfigColumns+` FROM call_configs
		WHERE job_post_id = ? AND is_active = TRUE`, jobPostID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("call config for job post %s: %w", jobPostID, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading call config for job post %s: %w", jobPostID, err)
	}
	return c, nil
}

// UpsertCallConfig stores the call config of a job post; there is at most one
// per job post.
func (s *Store) UpsertCallConfig(ctx context.Context, c model.CallConfig) (*model.CallConfig, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	script, err := json.Marshal(nonNil(c.Script))
	if err != nil {
		return nil, fmt.Errorf("encoding call script: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO call_configs
		(id, job_post_id, user_id, organization_id, agent_id, agent_name, greeting_text,
			organization_name, job_title, from_number, call_script, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_post_id) DO UPDATE SET
			user_id = excluded.user_id,
			organization_id = excluded.organization_id,
			agent_id = excluded.agent_id,
			agent_name = excluded.agent_name,
			greeting_text = excluded.greeting_text,
			organization_name = excluded.organization_name,
			job_title = excluded.job_title,
			from_number = excluded.from_number,
			call_script = excluded.call_script,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		c.ID, c.JobPostID, c.UserID, c.OrganizationID, c.AgentID, c.AgentName, c.GreetingText,
		c.OrganizationName, c.JobTitle, c.FromNumber, string(script), c.IsActive, s.now())
	if err != nil {
		return nil, fmt.Errorf("upserting call config for job post %s: %w", c.JobPostID, err)
	}

	stored, err := scanCallConfig(s.queryRow(ctx, `SELECT `+callConfigColumns+` FROM call_configs
		WHERE job_post_id = ?`, c.JobPostID))
	if err != nil {
		return nil, fmt.Errorf("loading call config for job post %s: %w", c.JobPostID, err)
	}
	return stored, nil
}

func (s *Store) GetAgent(ctx context.Context, id int64) (*model.CallAgent, error) {
	var a model.CallAgent
	err := s.queryRow(ctx, `SELECT id, organization_id, name, agent_id, is_active FROM call_agents WHERE id = ?`, id).
		Scan(&a.ID, &a.OrganizationID, &a.Name, &a.ExternalID, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %d: %w", id, model.ErrAgentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading agent %d: %w", id, err)
	}
	return &a, nil
}

func (s *Store) UpsertAgent(ctx context.Context, a model.CallAgent) error {
	_, err := s.exec(ctx, `INSERT INTO call_agents (id, organization_id, name, agent_id, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			organization_id = excluded.organization_id,
			name = excluded.name,
			agent_id = excluded.agent_id,
			is_active = excluded.is_active`,
		a.ID, a.OrganizationID, a.Name, a.ExternalID, a.IsActive)
	if err != nil {
		return fmt.Errorf("upserting agent %d: %w", a.ID, err)
	}
	return nil
}

// nonNil makes nil slices encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
