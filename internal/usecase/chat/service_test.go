package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

type fakeRetriever struct {
	matches []domain.Match
	err     error
	queries []string
	topKs   []int
}

func (f *fakeRetriever) Query(ctx context.Context, text string, topK int) ([]domain.Match, error) {
	f.queries = append(f.queries, text)
	f.topKs = append(f.topKs, topK)
	return f.matches, f.err
}

type fakeGenerator struct {
	reply    string
	err      error
	requests []domain.GenerationRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestChat_GroundedTurn(t *testing.T) {
	retriever := &fakeRetriever{matches: []domain.Match{
		{Text: "Box breathing slows the stress response.", Source: "breathing-guide", Score: 0.91},
		{Text: "Name five things you can see.", Source: "grounding-guide", Score: 0.84},
	}}
	generator := &fakeGenerator{reply: "Let's try a breathing exercise together."}
	svc := New(retriever, generator, nil)

	answer, err := svc.Chat(context.Background(), "I feel panicky", []string{"hi", "hello"}, "companion")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if answer.Response != generator.reply {
		t.Errorf("Response = %q, want %q", answer.Response, generator.reply)
	}
	if answer.Persona != domain.PersonaCompanion {
		t.Errorf("Persona = %v, want companion", answer.Persona)
	}
	if len(answer.Sources) != 2 || answer.Sources[0] != "breathing-guide" {
		t.Errorf("Sources = %v, want both guides in retrieval order", answer.Sources)
	}

	if len(generator.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(generator.requests))
	}
	req := generator.requests[0]
	if !strings.HasPrefix(req.SystemPrompt, domain.PersonaCompanion.Prompt()) {
		t.Error("system prompt does not start with the persona prompt")
	}
	if !strings.Contains(req.SystemPrompt, "[1] (breathing-guide) Box breathing") {
		t.Errorf("system prompt missing numbered passage: %q", req.SystemPrompt)
	}
	if !strings.Contains(req.SystemPrompt, "[2] (grounding-guide)") {
		t.Error("system prompt missing second passage")
	}
	if len(req.History) != 2 {
		t.Errorf("history length = %d, want 2", len(req.History))
	}
	if req.Message != "I feel panicky" {
		t.Errorf("message = %q", req.Message)
	}
}

func TestChat_NoMatchesUngrounded(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{reply: "ok"}
	svc := New(retriever, generator, nil)

	answer, err := svc.Chat(context.Background(), "hello there", nil, "professional")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if answer.Sources != nil {
		t.Errorf("Sources = %v, want nil", answer.Sources)
	}
	if got := generator.requests[0].SystemPrompt; got != domain.PersonaProfessional.Prompt() {
		t.Errorf("system prompt = %q, want bare persona prompt", got)
	}
}

func TestChat_RetrievalFailureDegrades(t *testing.T) {
	retriever := &fakeRetriever{err: domain.ErrCollectionNotFound}
	generator := &fakeGenerator{reply: "still here for you"}
	svc := New(retriever, generator, nil)

	answer, err := svc.Chat(context.Background(), "rough day", nil, "yap")
	if err != nil {
		t.Fatalf("Chat() error = %v, want degraded success", err)
	}
	if answer.Response != "still here for you" {
		t.Errorf("Response = %q", answer.Response)
	}
	if answer.Sources != nil {
		t.Errorf("Sources = %v, want nil", answer.Sources)
	}
}

func TestChat_UnknownPersonaFallsBack(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{reply: "ok"}
	svc := New(retriever, generator, nil)

	answer, err := svc.Chat(context.Background(), "hi", nil, "wizard")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer.Persona != domain.PersonaProfessional {
		t.Errorf("Persona = %v, want professional fallback", answer.Persona)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := New(&fakeRetriever{}, &fakeGenerator{}, nil)

	_, err := svc.Chat(context.Background(), "   ", nil, "professional")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("Chat() error = %v, want ErrInvalidRequest", err)
	}
}

func TestChat_GenerationFailurePropagates(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{err: domain.ErrGenerationFailed}
	svc := New(retriever, generator, nil)

	_, err := svc.Chat(context.Background(), "hi", nil, "professional")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("Chat() error = %v, want ErrGenerationFailed", err)
	}
}

func TestChat_TopKOverride(t *testing.T) {
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{reply: "ok"}
	svc := New(retriever, generator, nil).WithTopK(2)

	if _, err := svc.Chat(context.Background(), "hi", nil, "professional"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got := retriever.topKs[0]; got != 2 {
		t.Errorf("topK = %d, want 2", got)
	}
}

func TestDistinctSources(t *testing.T) {
	matches := []domain.Match{
		{Source: "a"}, {Source: "b"}, {Source: "a"}, {Source: "c"},
	}
	got := distinctSources(matches)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("distinctSources = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("distinctSources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
