package filter

import (
	"testing"

	"github.com/amishk599/hirecall/internal/model"
)

func app(id string, score int, shortlisted bool, phone string) *model.JobApplication {
	a := &model.JobApplication{ID: id, IsShortlisted: shortlisted, CandidatePhone: phone}
	if score >= 0 {
		a.ATSScore = &score
	}
	return a
}

func TestApplicationFilter_Match(t *testing.T) {
	tests := []struct {
		name            string
		minScore        int
		shortlistedOnly bool
		called          []string
		app             *model.JobApplication
		wantMatch       bool
	}{
		{
			name:            "shortlisted with phone",
			shortlistedOnly: true,
			app:             app("a1", 90, true, "+15551234567"),
			wantMatch:       true,
		},
		{
			name:            "not shortlisted",
			shortlistedOnly: true,
			app:             app("a1", 90, false, "+15551234567"),
			wantMatch:       false,
		},
		{
			name:      "below min score",
			minScore:  80,
			app:       app("a1", 79, true, "+15551234567"),
			wantMatch: false,
		},
		{
			name:      "unscored with min score",
			minScore:  1,
			app:       app("a1", -1, true, "+15551234567"),
			wantMatch: false,
		},
		{
			name:      "no phone",
			app:       app("a1", 90, true, "  "),
			wantMatch: false,
		},
		{
			name:      "already called",
			called:    []string{"a1"},
			app:       app("a1", 90, true, "+15551234567"),
			wantMatch: false,
		},
		{
			name:      "no constraints",
			app:       app("a1", -1, false, "555"),
			wantMatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewApplicationFilter(tt.minScore, tt.shortlistedOnly, tt.called)
			got := f.Match(tt.app)
			if got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestApplicationFilter_SelectKeepsOrder(t *testing.T) {
	apps := []*model.JobApplication{
		app("a1", 95, true, "1"),
		app("a2", 70, true, "2"),
		app("a3", 88, true, "3"),
	}
	got := NewApplicationFilter(85, true, nil).Select(apps)
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" {
		t.Errorf("Select() = %v, want [a1 a3]", ids(got))
	}
}

func ids(apps []*model.JobApplication) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.ID
	}
	return out
}
