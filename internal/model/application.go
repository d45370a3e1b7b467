package model

import (
	"context"
	"time"
)

// ApplicationStatus is the recruiter-facing state of an application.
type ApplicationStatus string

const (
	AppSubmitted   ApplicationStatus = "submitted"
	AppShortlisted ApplicationStatus = "shortlisted"
	AppRejected    ApplicationStatus = "rejected"
	AppInterviewed ApplicationStatus = "interviewed"
)

// SkillsMatch is the skills sub-score of an ATS analysis.
type SkillsMatch struct {
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	MatchPercentage float64  `json:"match_percentage"`
}

// ExperienceFit is the experience sub-score.
type ExperienceFit struct {
	YearsOfExperience float64 `json:"years_of_experience"`
	ExperienceMatch   string  `json:"experience_match"` // below, meets, exceeds
}

// QualificationMatch is the education/certification sub-score.
type QualificationMatch struct {
	QualificationsFound []string `json:"qualifications_found"`
	MatchStatus         string   `json:"match_status"`
}

// KeywordRelevance is the keyword sub-score.
type KeywordRelevance struct {
	KeywordsMatched []string `json:"keywords_matched"`
	KeywordDensity  float64  `json:"keyword_density"`
}

// ATSAnalysis is the structured scoring of a résumé against a job post.
type ATSAnalysis struct {
	SkillsMatch        SkillsMatch        `json:"skills_match"`
	ExperienceFit      ExperienceFit      `json:"experience_fit"`
	QualificationMatch QualificationMatch `json:"qualification_match"`
	KeywordRelevance   KeywordRelevance   `json:"keyword_relevance"`
	OverallFit         string             `json:"overall_fit"`
	Strengths          []string           `json:"strengths"`
	Gaps               []string           `json:"gaps"`
	FinalScore         int                `json:"final_score"`
}

// CheckQualifications is the self-check variant of QualificationMatch.
type CheckQualifications struct {
	RelevantQualifications []string `json:"relevant_qualifications"`
	MissingQualifications  []string `json:"missing_qualifications"`
	MatchPercentage        float64  `json:"match_percentage"`
}

// CheckKeywords is the self-check variant of KeywordRelevance.
type CheckKeywords struct {
	JobSpecificKeywords []string `json:"job_specific_keywords"`
	MissingKeywords     []string `json:"missing_keywords"`
	RelevanceScore      float64  `json:"relevance_score"`
}

// ResumeCheck is the result of the applicant-facing self-check.
type ResumeCheck struct {
	Score              int                 `json:"score"`
	SkillsMatch        SkillsMatch         `json:"skills_match"`
	ExperienceFit      ExperienceFit       `json:"experience_fit"`
	QualificationMatch CheckQualifications `json:"qualification_match"`
	KeywordRelevance   CheckKeywords       `json:"keyword_relevance"`
	Strengths          []string            `json:"strengths"`
	Gaps               []string            `json:"gaps"`
	FinalScore         int                 `json:"final_score"`
}

// JobApplication is one candidate's submission to one job post.
type JobApplication struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	JobPostID      string            `json:"job_post_id"`
	CandidateName  string            `json:"candidate_name"`
	CandidateEmail string            `json:"candidate_email"`
	CandidatePhone string            `json:"candidate_phone,omitempty"`
	ResumeText     string            `json:"cv_text"`
	CoverLetter    string            `json:"cover_letter,omitempty"`
	LinkedInURL    string            `json:"linkedin_url,omitempty"`
	ATSScore       *int              `json:"ats_score"`
	ATSAnalysis    *ATSAnalysis      `json:"ats_analysis,omitempty"`
	Status         ApplicationStatus `json:"status"`
	ShortlistDate  *time.Time        `json:"shortlist_date,omitempty"`
	IsShortlisted  bool              `json:"is_shortlisted"`
}

// Scored reports whether an ATS score has been recorded.
func (a *JobApplication) Scored() bool { return a.ATSScore != nil }

// NewApplication is the input for CreateApplication.
type NewApplication struct {
	JobPostID      string
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	ResumeText     string
	CoverLetter    string
	LinkedInURL    string
}

// ApplicationStore persists job applications.
type ApplicationStore interface {
	// CreateApplication returns ErrAlreadyApplied when the email already applied to the job post.
	CreateApplication(ctx context.Context, in NewApplication) (*JobApplication, error)
	GetApplication(ctx context.Context, id string) (*JobApplication, error)
	ApplicationExists(ctx context.Context, jobPostID, email string) (bool, error)
	ListApplications(ctx context.Context, jobPostID string) ([]*JobApplication, error)
	// RecordATSScore writes score, analysis and the shortlist flag in one update.
	// It only applies to unscored applications; won reports whether this call wrote.
	RecordATSScore(ctx context.Context, id string, analysis ATSAnalysis, threshold int) (app *JobApplication, won bool, err error)
	Shortlist(ctx context.Context, id string) (*JobApplication, error)
}

// Email is an outgoing message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer sends transactional email and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, e Email) (string, error)
}
