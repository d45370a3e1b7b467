package prompt

import (
	"fmt"
	"strings"

	"github.com/amishk599/hirecall/internal/model"
)

const (
	DefaultGreeting     = "Hello {{candidate_name}}, this is a call from {{organization_name}} and my name is {{agent_name}}. Is it a great time to talk?"
	DefaultOrganization = "Your Organization"
	DefaultJobTitle     = "Job Position"
	DefaultAgentName    = "Recruiter"
	DefaultScreening    = "Ask about candidate experience, availability, and salary expectations"
)

// GreetingVars are the values substituted into a greeting template.
type GreetingVars struct {
	CandidateName    string
	AgentName        string
	OrganizationName string
	JobTitle         string
}

// RenderGreeting substitutes the four known placeholders verbatim.
// Anything else in double braces is left untouched.
func RenderGreeting(tmpl string, v GreetingVars) string {
	r := strings.NewReplacer(
		"{{candidate_name}}", v.CandidateName,
		"{{agent_name}}", v.AgentName,
		"{{organization_name}}", v.OrganizationName,
		"{{job_title}}", v.JobTitle,
	)
	return r.Replace(tmpl)
}

// ScreeningQuestions formats a script as numbered lines for the voice agent.
func ScreeningQuestions(qs []model.Question) string {
	if len(qs) == 0 {
		return DefaultScreening
	}
	lines := make([]string, 0, len(qs))
	for i, q := range ordered(qs) {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, q.Question))
	}
	return strings.Join(lines, "\n")
}

// CallContext is what the voice agent needs to run a screening call.
type CallContext struct {
	CandidateName    string
	OrganizationName string
	JobTitle         string
	AgentName        string
	Greeting         string
	Questions        []model.Question
}

// DynamicVariables builds the per-call variables handed to the voice agent,
// applying defaults for anything left empty.
func DynamicVariables(c CallContext) map[string]string {
	vars := GreetingVars{
		CandidateName:    c.CandidateName,
		OrganizationName: orDefault(c.OrganizationName, DefaultOrganization),
		JobTitle:         orDefault(c.JobTitle, DefaultJobTitle),
		AgentName:        orDefault(c.AgentName, DefaultAgentName),
	}
	return map[string]string{
		"candidate_name":      vars.CandidateName,
		"organization_name":   vars.OrganizationName,
		"job_title":           vars.JobTitle,
		"agent_name":          vars.AgentName,
		"greeting_text":       RenderGreeting(orDefault(c.Greeting, DefaultGreeting), vars),
		"screening_questions": ScreeningQuestions(c.Questions),
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
