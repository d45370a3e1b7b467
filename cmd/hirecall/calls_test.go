package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

type fakeSource struct {
	apps  []*model.JobApplication
	calls []*model.Call
}

func (f *fakeSource) ListApplications(context.Context, string) ([]*model.JobApplication, error) {
	return f.apps, nil
}

func (f *fakeSource) ListCalls(context.Context, model.CallFilter) ([]*model.Call, error) {
	return f.calls, nil
}

func intPtr(n int) *int { return &n }

func TestSelectCandidates(t *testing.T) {
	src := &fakeSource{
		apps: []*model.JobApplication{
			{ID: "a1", CandidateName: "Ana", CandidatePhone: " 9876543210 ", IsShortlisted: true, ATSScore: intPtr(91)},
			{ID: "a2", CandidateName: "Ben", CandidatePhone: "9876500000", IsShortlisted: false, ATSScore: intPtr(70)},
			{ID: "a3", CandidateName: "Cai", CandidatePhone: "9876511111", IsShortlisted: true, ATSScore: intPtr(88)},
			{ID: "a4", CandidateName: "Dee", CandidatePhone: "9876522222", IsShortlisted: true, ATSScore: intPtr(95)},
			{ID: "a5", CandidateName: "Eli", CandidatePhone: "", IsShortlisted: true, ATSScore: intPtr(99)},
		},
		calls: []*model.Call{
			{ID: "c1", JobApplicationID: "a3", Status: model.CallCompleted},
			{ID: "c2", JobApplicationID: "a4", Status: model.CallFailed},
		},
	}

	got, err := selectCandidates(context.Background(), src, "job-1", 0)
	if err != nil {
		t.Fatalf("selectCandidates: %v", err)
	}
	var ids []string
	for _, c := range got {
		ids = append(ids, c.ApplicationID)
	}
	if strings.Join(ids, ",") != "a1,a4" {
		t.Errorf("selected = %v, want [a1 a4]", ids)
	}
	if got[0].Phone != "9876543210" {
		t.Errorf("phone = %q, want trimmed", got[0].Phone)
	}

	got, err = selectCandidates(context.Background(), src, "job-1", 92)
	if err != nil {
		t.Fatalf("selectCandidates: %v", err)
	}
	if len(got) != 1 || got[0].ApplicationID != "a4" {
		t.Errorf("with min score 92 got %+v, want only a4", got)
	}
}

func TestPrintCalls(t *testing.T) {
	var buf bytes.Buffer
	printCalls(&buf, []*model.Call{
		{ID: "c1", JobApplicationID: "a1", Status: model.CallPending},
		{ID: "c2", JobApplicationID: "a2", Status: model.CallCompleted, IsViewed: true, SummaryReport: &model.SummaryReport{
			CandidateName: "Ben Ray",
			Summary:       model.CallSummary{FitScore: 8, Recommendation: model.RecommendYes},
		}},
	}, map[string]string{"a1": "Ana Diaz"})

	out := buf.String()
	for _, want := range []string{"Ana Diaz", "Ben Ray", "8/10", "yes", "Total: 2 calls"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
