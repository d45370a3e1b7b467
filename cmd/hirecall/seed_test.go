package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/store"
)

const fixtureYAML = `
agents:
  - id: 7
    name: Riya
    agent_id: agent_abc
    is_active: true
job_posts:
  - id: job-1
    title: Backend Engineer
    description: Build APIs in Go.
    requirements: ["Go", "SQL"]
    is_active: true
call_configs:
  - job_post_id: job-1
    agent_id: 7
    agent_name: Riya
    organization_name: Acme
    from_number: "+14155550100"
    call_script:
      - id: q1
        question: How many years have you worked with Go?
        category: experience
        order: 1
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestSeed_LoadAndApply(t *testing.T) {
	f, err := loadFixtures(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatalf("loadFixtures: %v", err)
	}

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	// Applying twice must not fail or duplicate.
	for i := 0; i < 2; i++ {
		if err := applyFixtures(ctx, st, f, logger); err != nil {
			t.Fatalf("applyFixtures pass %d: %v", i, err)
		}
	}

	jobs, err := st.ListJobPosts(ctx)
	if err != nil {
		t.Fatalf("ListJobPosts: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Backend Engineer" {
		t.Fatalf("job posts = %+v, want one Backend Engineer", jobs)
	}

	agent, err := st.GetAgent(ctx, 7)
	if err != nil {
		t.Fatalf("GetAgent: %v", err)
	}
	if agent.ExternalID != "agent_abc" {
		t.Errorf("agent external id = %q, want agent_abc", agent.ExternalID)
	}

	cc, err := st.GetActiveCallConfig(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetActiveCallConfig: %v", err)
	}
	if len(cc.Script) != 1 || cc.Script[0].Category != model.CategoryExperience {
		t.Errorf("script = %+v", cc.Script)
	}
	if cc.FromNumber != "+14155550100" {
		t.Errorf("from number = %q", cc.FromNumber)
	}
}

func TestSeed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "job post without id",
			content: "job_posts:\n  - title: SRE\n",
			wantErr: "job_posts[0]",
		},
		{
			name:    "agent without provider id",
			content: "agents:\n  - id: 3\n    name: Sam\n",
			wantErr: "agents[0]",
		},
		{
			name: "unknown question category",
			content: `call_configs:
  - job_post_id: job-1
    call_script:
      - question: Favourite colour?
        category: trivia
`,
			wantErr: "unknown category",
		},
		{
			name:    "malformed yaml",
			content: "job_posts: [",
			wantErr: "parsing fixtures",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFixtures(writeFixture(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("loadFixtures error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
