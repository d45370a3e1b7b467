package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"

	"github.com/amishk599/hirecall/internal/model"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "Here you go:\n```\n{\"a\":1}\n```\nthanks", `{"a":1}`},
		{"fence wins over outer braces", "{x} ```json {\"a\":1} ``` {y}", `{"a":1}`},
		{"embedded in prose", `The result is {"a":1} as requested.`, `{"a":1}`},
		{"greedy braces", `pre {"a":{"b":2}} mid {"c":3} post`, `{"a":{"b":2}} mid {"c":3}`},
		{"neither", "no json here", "no json here"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSON_NeitherFailsDecode(t *testing.T) {
	var v map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON("sorry, I cannot help")), &v); err == nil {
		t.Fatal("expected decode error for text without JSON")
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten([]model.Message{System("sys"), User("user"), {Role: "user"}})
	if got != "sys\n\nuser" {
		t.Errorf("Flatten = %q, want %q", got, "sys\n\nuser")
	}
}

type fakeGenerator struct {
	gotParts []genai.Part
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.gotParts = parts
	return f.resp, f.err
}

func TestVertexComplete_FlattensAndJoinsParts(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
		}},
	}}
	p := &VertexProvider{model: gen}

	got, err := p.Complete(context.Background(), testMessages)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("Complete = %q, want %q", got, `{"a":1}`)
	}
	if len(gen.gotParts) != 1 || gen.gotParts[0] != genai.Text("be precise\n\nscore this") {
		t.Errorf("parts = %v, want one flattened text part", gen.gotParts)
	}
}

func TestVertexComplete_NoCandidates(t *testing.T) {
	p := &VertexProvider{model: &fakeGenerator{resp: &genai.GenerateContentResponse{}}}
	if _, err := p.Complete(context.Background(), testMessages); err == nil {
		t.Fatal("expected error when no candidates are returned")
	}
}

func TestVertexComplete_PropagatesError(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := &VertexProvider{model: &fakeGenerator{err: boom}}
	_, err := p.Complete(context.Background(), testMessages)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
