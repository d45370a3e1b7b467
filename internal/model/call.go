package model

import (
	"context"
	"time"
)

// CallStatus is the lifecycle state of an initial screening call.
type CallStatus string

const (
	CallPending    CallStatus = "pending"
	CallInProgress CallStatus = "in_progress"
	CallCompleted  CallStatus = "completed"
	CallFailed     CallStatus = "failed"
)

// QuestionCategory tags a screening question. The set is closed.
type QuestionCategory string

const (
	CategoryExperience   QuestionCategory = "experience"
	CategoryAvailability QuestionCategory = "availability"
	CategorySalary       QuestionCategory = "salary"
	CategoryRelocation   QuestionCategory = "relocation"
	CategoryGeneral      QuestionCategory = "general"
)

// Valid reports whether c is one of the known categories.
func (c QuestionCategory) Valid() bool {
	switch c {
	case CategoryExperience, CategoryAvailability, CategorySalary, CategoryRelocation, CategoryGeneral:
		return true
	}
	return false
}

// Recommendation is the model's verdict on a screened candidate.
type Recommendation string

const (
	RecommendYes   Recommendation = "yes"
	RecommendMaybe Recommendation = "maybe"
	RecommendNo    Recommendation = "no"
)

// OfficePreference is the candidate's stated working arrangement.
type OfficePreference string

const (
	OfficeFullRemote OfficePreference = "full_remote"
	OfficeThreeDays  OfficePreference = "3_days_week"
	OfficeFullOffice OfficePreference = "full_office"
)

// Question is one entry of a call script.
type Question struct {
	ID       string           `json:"id" yaml:"id"`
	Question string           `json:"question" yaml:"question"`
	Category QuestionCategory `json:"category" yaml:"category"`
	Order    int              `json:"order" yaml:"order"`
}

// Responses holds what the candidate said, one field per tracked dimension.
type Responses struct {
	Experience           string           `json:"experience"`
	Technologies         string           `json:"technologies"`
	BestTimeForInterview string           `json:"best_time_for_interview"`
	Availability         string           `json:"availability"`
	YearsOfExperience    string           `json:"years_of_experience"`
	CurrentSalary        string           `json:"current_salary"`
	LastWorkingDay       string           `json:"last_working_day"`
	OnNoticePeriod       bool             `json:"on_notice_period"`
	SalaryExpectations   string           `json:"salary_expectations"`
	WillingToRelocate    bool             `json:"willing_to_relocate"`
	RelocationTimeline   string           `json:"relocation_timeline"`
	OfficePreference     OfficePreference `json:"office_preference"`
}

// CallSummary is the evaluative half of a call analysis.
type CallSummary struct {
	ExperienceLevel      string         `json:"experience_level,omitempty"`
	Strengths            []string       `json:"strengths"`
	Concerns             []string       `json:"concerns"`
	FitScore             int            `json:"fit_score"`
	Recommendation       Recommendation `json:"recommendation"`
	RecommendationReason string         `json:"recommendation_reason,omitempty"`
}

// SummaryReport is the persisted result of analysing a call transcript.
type SummaryReport struct {
	CandidateName    string      `json:"candidate_name"`
	CandidateEmail   string      `json:"candidate_email"`
	JobTitle         string      `json:"job_title"`
	OrganizationName string      `json:"organization_name"`
	CallDuration     int         `json:"call_duration"`
	CallDate         string      `json:"call_date"`
	Responses        Responses   `json:"responses"`
	Summary          CallSummary `json:"summary"`
}

// Call is one outbound or web screening call attempt.
type Call struct {
	ID               string         `json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	JobPostID        string         `json:"job_post_id"`
	JobApplicationID string         `json:"job_application_id"`
	UserID           string         `json:"user_id"`
	OrganizationID   string         `json:"organization_id"`
	AgentID          int64          `json:"agent_id,omitempty"`
	AgentName        string         `json:"agent_name"`
	ExternalCallID   string         `json:"call_id,omitempty"`
	Status           CallStatus     `json:"status"`
	Duration         int            `json:"duration,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	Transcript       string         `json:"call_transcript,omitempty"`
	SummaryReport    *SummaryReport `json:"summary_report,omitempty"`
	Responses        *Responses     `json:"candidate_responses,omitempty"`
	IsAnalysed       bool           `json:"is_analysed"`
	IsEnded          bool           `json:"is_ended"`
	IsViewed         bool           `json:"is_viewed"`
	Notes            string         `json:"notes,omitempty"`
}

// Dispatched reports whether the provider has assigned an external call id.
func (c *Call) Dispatched() bool { return c.ExternalCallID != "" }

// NewCall is the input for creating a pending call row.
type NewCall struct {
	JobPostID        string
	JobApplicationID string
	UserID           string
	OrganizationID   string
	AgentID          int64
	AgentName        string
}

// Completion is everything the single terminal write persists.
type Completion struct {
	ExternalCallID string
	Transcript     string
	Report         SummaryReport
	Responses      Responses
	Duration       int
}

// CallFilter narrows ListCalls. Empty fields are ignored.
type CallFilter struct {
	JobPostID      string
	ApplicationID  string
	OrganizationID string
	Status         CallStatus
	Unanalysed     bool
	Limit          int
}

// CallStore persists calls through their lifecycle.
type CallStore interface {
	CreateCall(ctx context.Context, in NewCall) (*Call, error)
	// MarkDispatched moves a pending call to in_progress and records the provider id.
	MarkDispatched(ctx context.Context, id, externalCallID string) (*Call, error)
	// CompleteWithAnalysis is the only write that sets is_analysed. won is false
	// when another writer got there first; the stored row is returned either way.
	CompleteWithAnalysis(ctx context.Context, id string, c Completion) (call *Call, won bool, err error)
	// MarkEnded records completion without analysis.
	MarkEnded(ctx context.Context, id string) (*Call, error)
	GetCall(ctx context.Context, id string) (*Call, error)
	GetCallByExternalID(ctx context.Context, externalCallID string) (*Call, error)
	ListCalls(ctx context.Context, f CallFilter) ([]*Call, error)
	UpdateCallReview(ctx context.Context, id string, viewed *bool, notes *string) (*Call, error)
}

// ProviderCall is the voice provider's view of a call.
type ProviderCall struct {
	CallID         string
	Status         string
	Transcript     string
	StartTimestamp *int64 // unix millis
	EndTimestamp   *int64 // unix millis
}

// PhoneCallRequest is an outbound telephony dispatch.
type PhoneCallRequest struct {
	AgentID          string
	FromNumber       string
	ToNumber         string
	DynamicVariables map[string]string
}

// WebCallRequest registers an in-browser call.
type WebCallRequest struct {
	AgentID          string
	DynamicVariables map[string]string
}

// WebCall is the provider's answer to a web call registration.
type WebCall struct {
	CallID      string `json:"call_id"`
	AccessToken string `json:"access_token"`
}

// VoiceGateway wraps the voice provider.
type VoiceGateway interface {
	CreatePhoneCall(ctx context.Context, req PhoneCallRequest) (string, error)
	CreateWebCall(ctx context.Context, req WebCallRequest) (*WebCall, error)
	// RetrieveCall returns a call with an empty Transcript when it has not ended.
	RetrieveCall(ctx context.Context, callID string) (*ProviderCall, error)
}
