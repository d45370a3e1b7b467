// Package prompt renders the instructions sent to the generative model.
// Every builder is a pure function of its input.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"github.com/amishk599/hirecall/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompts").ParseFS(templateFS, "templates/*.tmpl"))

// CallAnalysisSystem is the system message paired with CallAnalysis.
const CallAnalysisSystem = "You are an expert HR analyst skilled in evaluating candidate responses from screening calls. Provide comprehensive analysis in valid JSON format only."

// ATSInput is the job and résumé context for the application-linked score.
type ATSInput struct {
	JobTitle         string
	Description      string
	Requirements     []string
	Responsibilities []string
	Resume           string
}

// CallAnalysisInput is the context for analysing a call transcript.
type CallAnalysisInput struct {
	CandidateName string
	Transcript    string
	Questions     []model.Question
}

// ATSScore builds the full scoring prompt for a stored job post.
func ATSScore(in ATSInput) string {
	in.Description = PlainText(in.Description)
	return mustRender("ats_score.tmpl", in)
}

// ATSCheck builds the looser self-check prompt from a free-text job description.
func ATSCheck(jobDescription, resume string) string {
	return mustRender("ats_check.tmpl", struct {
		JobDescription string
		Resume         string
	}{jobDescription, resume})
}

// CallAnalysis builds the transcript analysis prompt. Questions are listed in script order.
func CallAnalysis(in CallAnalysisInput) string {
	if in.CandidateName == "" {
		in.CandidateName = "Candidate"
	}
	in.Questions = ordered(in.Questions)
	return mustRender("call_analysis.tmpl", in)
}

func mustRender(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are embedded and their inputs are plain structs.
		panic(fmt.Sprintf("render %s: %v", name, err))
	}
	return buf.String()
}

// ordered returns a copy of qs sorted by Order, keeping input order for ties.
func ordered(qs []model.Question) []model.Question {
	out := make([]model.Question, len(qs))
	copy(out, qs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
