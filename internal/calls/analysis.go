package calls

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/model"
)

// Analysis is the model's reading of a call transcript.
type Analysis struct {
	CandidateName string
	Responses     model.Responses
	Summary       model.CallSummary
}

type rawAnalysis struct {
	CandidateName string `json:"candidate_name"`
	Responses     *struct {
		Experience           ai.Text `json:"experience"`
		Technologies         ai.Text `json:"technologies"`
		BestTimeForInterview ai.Text `json:"best_time_for_interview"`
		Availability         ai.Text `json:"availability"`
		YearsOfExperience    ai.Text `json:"years_of_experience"`
		CurrentSalary        ai.Text `json:"current_salary"`
		LastWorkingDay       ai.Text `json:"last_working_day"`
		OnNoticePeriod       ai.Bool `json:"on_notice_period"`
		SalaryExpectations   ai.Text `json:"salary_expectations"`
		WillingToRelocate    ai.Bool `json:"willing_to_relocate"`
		RelocationTimeline   ai.Text `json:"relocation_timeline"`
		OfficePreference     ai.Text `json:"office_preference"`
	} `json:"responses"`
	Summary *struct {
		ExperienceLevel      string    `json:"experience_level"`
		Strengths            []string  `json:"strengths"`
		Concerns             []string  `json:"concerns"`
		FitScore             ai.Number `json:"fit_score"`
		Recommendation       string    `json:"recommendation"`
		RecommendationReason string    `json:"recommendation_reason"`
	} `json:"summary"`
}

// ParseAnalysis decodes a call analysis. fit_score is rounded and clamped to
// [0,10], an unrecognised recommendation becomes maybe and an unrecognised
// office preference is left empty. Lists are never nil.
func ParseAnalysis(raw string) (Analysis, error) {
	var r rawAnalysis
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Analysis{}, fmt.Errorf("parsing call analysis: %w", err)
	}

	a := Analysis{
		CandidateName: strings.TrimSpace(r.CandidateName),
		Summary: model.CallSummary{
			Strengths:      []string{},
			Concerns:       []string{},
			Recommendation: model.RecommendMaybe,
		},
	}
	if p := r.Responses; p != nil {
		a.Responses = model.Responses{
			Experience:           string(p.Experience),
			Technologies:         string(p.Technologies),
			BestTimeForInterview: string(p.BestTimeForInterview),
			Availability:         string(p.Availability),
			YearsOfExperience:    string(p.YearsOfExperience),
			CurrentSalary:        string(p.CurrentSalary),
			LastWorkingDay:       string(p.LastWorkingDay),
			OnNoticePeriod:       bool(p.OnNoticePeriod),
			SalaryExpectations:   string(p.SalaryExpectations),
			WillingToRelocate:    bool(p.WillingToRelocate),
			RelocationTimeline:   string(p.RelocationTimeline),
			OfficePreference:     officePreference(string(p.OfficePreference)),
		}
	}
	if s := r.Summary; s != nil {
		a.Summary.ExperienceLevel = s.ExperienceLevel
		a.Summary.RecommendationReason = s.RecommendationReason
		a.Summary.FitScore = clampFit(float64(s.FitScore))
		a.Summary.Recommendation = recommendation(s.Recommendation)
		if s.Strengths != nil {
			a.Summary.Strengths = s.Strengths
		}
		if s.Concerns != nil {
			a.Summary.Concerns = s.Concerns
		}
	}
	return a, nil
}

func clampFit(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Max(0, math.Min(10, math.Round(f))))
}

func recommendation(s string) model.Recommendation {
	switch r := model.Recommendation(strings.ToLower(strings.TrimSpace(s))); r {
	case model.RecommendYes, model.RecommendMaybe, model.RecommendNo:
		return r
	}
	return model.RecommendMaybe
}

func officePreference(s string) model.OfficePreference {
	switch p := model.OfficePreference(strings.ToLower(strings.TrimSpace(s))); p {
	case model.OfficeFullRemote, model.OfficeThreeDays, model.OfficeFullOffice:
		return p
	case "remote", "fully remote", "full remote", "fully_remote":
		return model.OfficeFullRemote
	}
	return ""
}
