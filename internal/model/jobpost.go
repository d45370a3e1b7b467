package model

import (
	"context"
	"time"
)

// JobPost is the subset of a job posting the scoring and calling flows read.
type JobPost struct {
	ID               string    `json:"id" yaml:"id"`
	OrganizationID   string    `json:"organization_id" yaml:"organization_id"`
	UserID           string    `json:"user_id" yaml:"user_id"`
	Title            string    `json:"title" yaml:"title"`
	Description      string    `json:"description" yaml:"description"`
	Requirements     []string  `json:"requirements" yaml:"requirements"`
	Responsibilities []string  `json:"responsibilities" yaml:"responsibilities"`
	Location         string    `json:"location,omitempty" yaml:"location"`
	IsActive         bool      `json:"is_active" yaml:"is_active"`
	ApplicationCount int       `json:"application_count" yaml:"-"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
}

// CallAgent is a voice agent registered with the provider.
type CallAgent struct {
	ID             int64  `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	Name           string `json:"name" yaml:"name"`
	ExternalID     string `json:"agent_id" yaml:"agent_id"`
	IsActive       bool   `json:"is_active" yaml:"is_active"`
}

// CallConfig is the call setup chosen for a job post.
type CallConfig struct {
	ID               string     `json:"id" yaml:"id"`
	JobPostID        string     `json:"job_post_id" yaml:"job_post_id"`
	UserID           string     `json:"user_id" yaml:"user_id"`
	OrganizationID   string     `json:"organization_id" yaml:"organization_id"`
	AgentID          int64      `json:"agent_id" yaml:"agent_id"`
	AgentName        string     `json:"agent_name" yaml:"agent_name"`
	GreetingText     string     `json:"greeting_text" yaml:"greeting_text"`
	OrganizationName string     `json:"organization_name" yaml:"organization_name"`
	JobTitle         string     `json:"job_title" yaml:"job_title"`
	FromNumber       string     `json:"from_number" yaml:"from_number"`
	Script           []Question `json:"call_script" yaml:"call_script"`
	IsActive         bool       `json:"is_active" yaml:"is_active"`
	UpdatedAt        time.Time  `json:"updated_at" yaml:"-"`
}

// JobPostStore reads and seeds job posts, call configs and agents.
type JobPostStore interface {
	GetJobPost(ctx context.Context, id string) (*JobPost, error)
	ListJobPosts(ctx context.Context) ([]*JobPost, error)
	UpsertJobPost(ctx context.Context, p JobPost) error
	IncrementApplicationCount(ctx context.Context, id string) error
	GetActiveCallConfig(ctx context.Context, jobPostID string) (*CallConfig, error)
	UpsertCallConfig(ctx context.Context, c CallConfig) (*CallConfig, error)
	GetAgent(ctx context.Context, id int64) (*CallAgent, error)
	UpsertAgent(ctx context.Context, a CallAgent) error
}

// Validate checks a call config before it is stored.
func (c CallConfig) Validate() error {
	if c.JobPostID == "" {
		return Invalid("Missing required field (job_post_id)")
	}
	for i, q := range c.Script {
		if q.Question == "" {
			return Invalid("call_script[%d]: question is empty", i)
		}
		if !q.Category.Valid() {
			return Invalid("call_script[%d]: unknown category %q", i, q.Category)
		}
	}
	return nil
}
