package ats

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/model"
)

type rawATS struct {
	SkillsMatch *struct {
		MatchedSkills   []string  `json:"matched_skills"`
		MissingSkills   []string  `json:"missing_skills"`
		MatchPercentage ai.Number `json:"match_percentage"`
	} `json:"skills_match"`
	ExperienceFit *struct {
		YearsOfExperience ai.Number `json:"years_of_experience"`
		ExperienceMatch   string    `json:"experience_match"`
	} `json:"experience_fit"`
	QualificationMatch *struct {
		QualificationsFound    []string  `json:"qualifications_found"`
		MatchStatus            string    `json:"match_status"`
		RelevantQualifications []string  `json:"relevant_qualifications"`
		MissingQualifications  []string  `json:"missing_qualifications"`
		MatchPercentage        ai.Number `json:"match_percentage"`
	} `json:"qualification_match"`
	KeywordRelevance *struct {
		KeywordsMatched     []string  `json:"keywords_matched"`
		KeywordDensity      ai.Number `json:"keyword_density"`
		JobSpecificKeywords []string  `json:"job_specific_keywords"`
		MissingKeywords     []string  `json:"missing_keywords"`
		RelevanceScore      ai.Number `json:"relevance_score"`
	} `json:"keyword_relevance"`
	OverallFit string    `json:"overall_fit"`
	Strengths  []string  `json:"strengths"`
	Gaps       []string  `json:"gaps"`
	FinalScore ai.Number `json:"final_score"`
}

func decodeATS(raw string) (rawATS, error) {
	var r rawATS
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return r, fmt.Errorf("parsing ats analysis: %w", err)
	}
	return r, nil
}

// ParseATSAnalysis decodes the model's scoring of a résumé against a stored
// job post. Missing sub-scores become 0, missing lists become empty and an
// unstated experience match becomes "unknown". FinalScore is clamped.
func ParseATSAnalysis(raw string) (model.ATSAnalysis, error) {
	r, err := decodeATS(raw)
	if err != nil {
		return model.ATSAnalysis{}, err
	}
	a := model.ATSAnalysis{
		ExperienceFit: model.ExperienceFit{ExperienceMatch: "unknown"},
		OverallFit:    r.OverallFit,
		Strengths:     list(r.Strengths),
		Gaps:          list(r.Gaps),
		FinalScore:    ClampScore(float64(r.FinalScore)),
	}
	a.SkillsMatch = skills(r)
	if e := r.ExperienceFit; e != nil {
		a.ExperienceFit.YearsOfExperience = float64(e.YearsOfExperience)
		if e.ExperienceMatch != "" {
			a.ExperienceFit.ExperienceMatch = e.ExperienceMatch
		}
	}
	a.QualificationMatch.QualificationsFound = []string{}
	if q := r.QualificationMatch; q != nil {
		a.QualificationMatch.QualificationsFound = list(q.QualificationsFound)
		a.QualificationMatch.MatchStatus = q.MatchStatus
	}
	a.KeywordRelevance.KeywordsMatched = []string{}
	if k := r.KeywordRelevance; k != nil {
		a.KeywordRelevance.KeywordsMatched = list(k.KeywordsMatched)
		a.KeywordRelevance.KeywordDensity = float64(k.KeywordDensity)
	}
	return a, nil
}

// ParseResumeCheck decodes the self-check variant with the same defaults.
func ParseResumeCheck(raw string) (model.ResumeCheck, error) {
	r, err := decodeATS(raw)
	if err != nil {
		return model.ResumeCheck{}, err
	}
	score := ClampScore(float64(r.FinalScore))
	c := model.ResumeCheck{
		Score:         score,
		FinalScore:    score,
		SkillsMatch:   skills(r),
		ExperienceFit: model.ExperienceFit{ExperienceMatch: "unknown"},
		Strengths:     list(r.Strengths),
		Gaps:          list(r.Gaps),
	}
	if e := r.ExperienceFit; e != nil {
		c.ExperienceFit.YearsOfExperience = float64(e.YearsOfExperience)
		if e.ExperienceMatch != "" {
			c.ExperienceFit.ExperienceMatch = e.ExperienceMatch
		}
	}
	c.QualificationMatch = model.CheckQualifications{RelevantQualifications: []string{}, MissingQualifications: []string{}}
	if q := r.QualificationMatch; q != nil {
		c.QualificationMatch.RelevantQualifications = list(q.RelevantQualifications)
		c.QualificationMatch.MissingQualifications = list(q.MissingQualifications)
		c.QualificationMatch.MatchPercentage = float64(q.MatchPercentage)
	}
	c.KeywordRelevance = model.CheckKeywords{JobSpecificKeywords: []string{}, MissingKeywords: []string{}}
	if k := r.KeywordRelevance; k != nil {
		c.KeywordRelevance.JobSpecificKeywords = list(k.JobSpecificKeywords)
		c.KeywordRelevance.MissingKeywords = list(k.MissingKeywords)
		c.KeywordRelevance.RelevanceScore = float64(k.RelevanceScore)
	}
	return c, nil
}

func skills(r rawATS) model.SkillsMatch {
	if r.SkillsMatch == nil {
		return model.SkillsMatch{MatchedSkills: []string{}, MissingSkills: []string{}}
	}
	return model.SkillsMatch{
		MatchedSkills:   list(r.SkillsMatch.MatchedSkills),
		MissingSkills:   list(r.SkillsMatch.MissingSkills),
		MatchPercentage: float64(r.SkillsMatch.MatchPercentage),
	}
}

// ClampScore rounds half away from zero and clamps into [0,100].
func ClampScore(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	n := math.Round(f)
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return int(n)
}

func list(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
