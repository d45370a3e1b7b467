// Package calls runs initial screening calls: dispatching them through the
// voice provider, and analysing their transcripts once the provider reports
// them finished.
package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/prompt"
	"github.com/amishk599/hirecall/internal/task"
	"github.com/amishk599/hirecall/internal/voice"
)

// ErrNoCallsCreated is returned when a batch could not store a single call.
var ErrNoCallsCreated = errors.New("failed to create initial calls")

// Candidate is one application selected for a screening call.
type Candidate struct {
	ApplicationID string `json:"id"`
	Name          string `json:"candidate_name"`
	Phone         string `json:"candidate_phone"`
}

// Batch dispatches one call per candidate. Empty greeting, script, job title,
// organization name and caller id fall back to the job post's active call
// config.
type Batch struct {
	JobPostID        string
	UserID           string
	OrganizationID   string
	AgentID          int64
	AgentName        string
	FromNumber       string
	Greeting         string
	OrganizationName string
	JobTitle         string
	Questions        []model.Question
	Candidates       []Candidate
}

// WebCallRequest registers an in-browser call for an existing pending call.
type WebCallRequest struct {
	InitialCallID    string
	AgentID          int64
	CandidateName    string
	OrganizationName string
	JobTitle         string
	AgentName        string
}

// Options tune an Orchestrator.
type Options struct {
	// CountryCode prefixes candidate numbers written without a leading +.
	CountryCode string
	// BaseURL, when set, is used to link recruiter alerts to the call.
	BaseURL string
}

// Orchestrator owns the call lifecycle.
type Orchestrator struct {
	calls    model.CallStore
	apps     model.ApplicationStore
	jobs     model.JobPostStore
	voice    model.VoiceGateway
	client   ai.Client
	notifier model.Notifier
	tasks    *task.Runner
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

// New wires an Orchestrator. notifier may be nil.
func New(
	calls model.CallStore,
	apps model.ApplicationStore,
	jobs model.JobPostStore,
	gateway model.VoiceGateway,
	client ai.Client,
	notifier model.Notifier,
	tasks *task.Runner,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if opts.CountryCode == "" {
		opts.CountryCode = voice.DefaultCountryCode
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Orchestrator{
		calls:    calls,
		apps:     apps,
		jobs:     jobs,
		voice:    gateway,
		client:   client,
		notifier: notifier,
		tasks:    tasks,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateInitialCalls stores a pending call per candidate and dispatches it.
// A candidate whose dispatch fails keeps a pending row with no external id;
// the batch only fails when no row could be stored at all.
func (o *Orchestrator) CreateInitialCalls(ctx context.Context, b Batch) ([]*model.Call, error) {
	if b.JobPostID == "" || len(b.Candidates) == 0 {
		return nil, model.Invalid("Invalid request data")
	}
	b = o.withConfigDefaults(ctx, b)

	agent, err := o.jobs.GetAgent(ctx, b.AgentID)
	if err != nil {
		o.logger.Error("agent lookup failed, calls stay pending", "agent_id", b.AgentID, "error", err)
		agent = nil
	}

	created := make([]*model.Call, 0, len(b.Candidates))
	for _, c := range b.Candidates {
		call, err := o.calls.CreateCall(ctx, model.NewCall{
			JobPostID:        b.JobPostID,
			JobApplicationID: c.ApplicationID,
			UserID:           b.UserID,
			OrganizationID:   b.OrganizationID,
			AgentID:          b.AgentID,
			AgentName:        b.AgentName,
		})
		if err != nil {
			o.logger.Error("creating call record", "job_application_id", c.ApplicationID, "error", err)
			continue
		}
		if agent != nil {
			call = o.dispatch(ctx, call, agent, b, c)
		}
		created = append(created, call)
	}

	if len(created) == 0 {
		return nil, ErrNoCallsCreated
	}
	o.logger.Info("initial calls created", "job_post_id", b.JobPostID, "count", len(created))
	return created, nil
}

// dispatch places the outbound call. Failures are logged and the pending
// row is returned unchanged.
func (o *Orchestrator) dispatch(ctx context.Context, call *model.Call, agent *model.CallAgent, b Batch, c Candidate) *model.Call {
	phone, name := c.Phone, c.Name
	if phone == "" || name == "" {
		if app, err := o.apps.GetApplication(ctx, c.ApplicationID); err == nil {
			phone = firstNonEmpty(phone, app.CandidatePhone)
			name = firstNonEmpty(name, app.CandidateName)
		}
	}
	if strings.TrimSpace(phone) == "" {
		o.logger.Warn("candidate has no phone number, call stays pending", "initial_call_id", call.ID)
		return call
	}

	to := voice.NormalizePhone(phone, o.opts.CountryCode)
	ext, err := o.voice.CreatePhoneCall(ctx, model.PhoneCallRequest{
		AgentID:    agent.ExternalID,
		FromNumber: voice.FormatFromNumber(b.FromNumber),
		ToNumber:   to,
		DynamicVariables: prompt.DynamicVariables(prompt.CallContext{
			CandidateName:    name,
			OrganizationName: b.OrganizationName,
			JobTitle:         b.JobTitle,
			AgentName:        b.AgentName,
			Greeting:         b.Greeting,
			Questions:        b.Questions,
		}),
	})
	if err != nil {
		o.logger.Error("dispatching call", "initial_call_id", call.ID, "to", to, "error", err)
		return call
	}

	updated, err := o.calls.MarkDispatched(ctx, call.ID, ext)
	if err != nil {
		o.logger.Error("recording dispatched call", "initial_call_id", call.ID, "call_id", ext, "error", err)
		return call
	}
	o.logger.Info("call dispatched", "initial_call_id", call.ID, "call_id", ext)
	return updated
}

func (o *Orchestrator) withConfigDefaults(ctx context.Context, b Batch) Batch {
	cfg, err := o.jobs.GetActiveCallConfig(ctx, b.JobPostID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			o.logger.Warn("loading call config", "job_post_id", b.JobPostID, "error", err)
		}
		return b
	}
	if b.AgentID == 0 {
		b.AgentID, b.AgentName = cfg.AgentID, firstNonEmpty(b.AgentName, cfg.AgentName)
	}
	b.Greeting = firstNonEmpty(b.Greeting, cfg.GreetingText)
	b.OrganizationName = firstNonEmpty(b.OrganizationName, cfg.OrganizationName)
	b.JobTitle = firstNonEmpty(b.JobTitle, cfg.JobTitle)
	b.FromNumber = firstNonEmpty(b.FromNumber, cfg.FromNumber)
	b.UserID = firstNonEmpty(b.UserID, cfg.UserID)
	b.OrganizationID = firstNonEmpty(b.OrganizationID, cfg.OrganizationID)
	if len(b.Questions) == 0 {
		b.Questions = cfg.Script
	}
	return b
}

// RegisterWebCall registers an in-browser call for a pending call and moves
// it to in_progress.
func (o *Orchestrator) RegisterWebCall(ctx context.Context, req WebCallRequest) (*model.WebCall, error) {
	if req.InitialCallID == "" {
		return nil, model.Invalid("Missing required field (initial_call_id)")
	}
	call, err := o.calls.GetCall(ctx, req.InitialCallID)
	if err != nil {
		return nil, err
	}
	if call.Status != model.CallPending {
		return nil, fmt.Errorf("registering call %s in status %s: %w", call.ID, call.Status, model.ErrInvalidTransition)
	}
	agent, err := o.jobs.GetAgent(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}

	web, err := o.voice.CreateWebCall(ctx, model.WebCallRequest{
		AgentID: agent.ExternalID,
		DynamicVariables: map[string]string{
			"candidate_name":    req.CandidateName,
			"organization_name": req.OrganizationName,
			"job_title":         req.JobTitle,
			"agent_name":        req.AgentName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registering web call for %s: %w", call.ID, err)
	}
	if _, err := o.calls.MarkDispatched(ctx, call.ID, web.CallID); err != nil {
		return nil, err
	}
	o.logger.Info("web call registered", "initial_call_id", call.ID, "call_id", web.CallID)
	return web, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
