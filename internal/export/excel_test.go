package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amishk599/hirecall/internal/model"
)

func sampleData() Data {
	score := 91
	return Data{
		Calls: []*model.Call{
			{
				ID:               "c1",
				JobApplicationID: "a1",
				Status:           model.CallCompleted,
				Duration:         60,
				IsViewed:         true,
				SummaryReport: &model.SummaryReport{
					CandidateName: "Ana Lima",
					Responses:     model.Responses{OfficePreference: model.OfficeThreeDays},
					Summary: model.CallSummary{
						Strengths:      []string{"Go", "Payments"},
						Concerns:       []string{"Notice period"},
						FitScore:       8,
						Recommendation: model.RecommendYes,
					},
				},
			},
			{ID: "c2", JobApplicationID: "a2", Status: model.CallPending},
		},
		Applications: []*model.JobApplication{
			{ID: "a1", CandidateName: "Ana Lima", CandidateEmail: "ana@example.com", ATSScore: &score,
				IsShortlisted: true, Status: model.AppShortlisted, CreatedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "a2", CandidateName: "Ben Ode", CandidateEmail: "ben@example.com", Status: model.AppSubmitted},
		},
	}
}

func TestWrite_Sheets(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleData()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	calls, err := f.GetRows(CallsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", CallsSheet, err)
	}
	if len(calls) != 3 {
		t.Fatalf("call rows = %d, want 3 (header + 2)", len(calls))
	}
	if calls[0][0] != "Candidate" || calls[0][4] != "Recommendation" {
		t.Errorf("header = %v", calls[0])
	}
	want := []string{"Ana Lima", "completed", "60", "8", "yes", "3_days_week", "Go; Payments", "Notice period", "yes"}
	for i, w := range want {
		if calls[1][i] != w {
			t.Errorf("call row col %d = %q, want %q", i, calls[1][i], w)
		}
	}
	// Unanalysed calls fall back to the application's candidate name.
	if calls[2][0] != "Ben Ode" || calls[2][1] != "pending" {
		t.Errorf("pending row = %v", calls[2])
	}

	scores, err := f.GetRows(ScoresSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", ScoresSheet, err)
	}
	if len(scores) != 3 {
		t.Fatalf("score rows = %d, want 3", len(scores))
	}
	if scores[1][2] != "91" || scores[1][3] != "yes" || scores[1][5] != "2026-09-01" {
		t.Errorf("scored row = %v", scores[1])
	}
	if scores[2][2] != "" || scores[2][3] != "no" {
		t.Errorf("unscored row = %v", scores[2])
	}
}

func TestWriteFile_AddsExtension(t *testing.T) {
	path, err := WriteFile(filepath.Join(t.TempDir(), "results"), Data{})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Errorf("path = %q, want .xlsx extension", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != CallsSheet || got[1] != ScoresSheet {
		t.Errorf("sheets = %v", got)
	}
}
