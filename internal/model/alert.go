package model

import "context"

// AlertKind says what happened to a candidate.
type AlertKind string

const (
	AlertShortlisted  AlertKind = "shortlisted"
	AlertCallAnalysed AlertKind = "call_analysed"
)

// Alert is a recruiter-facing notification about a candidate.
type Alert struct {
	Kind           AlertKind
	CandidateName  string
	CandidateEmail string
	JobTitle       string
	Score          int // ATS score for shortlists, fit score for calls
	Recommendation Recommendation
	Highlights     []string
	Link           string
}

// Notifier delivers recruiter alerts.
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}
