// Package chat implements grounded conversation turns: retrieve supporting
// passages, assemble a persona system prompt, generate a reply.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// DefaultTopK is the number of passages retrieved per turn.
const DefaultTopK = 5

// groundingPreamble introduces the retrieved passages inside the system
// prompt. The model decides relevance; passages are support, not script.
const groundingPreamble = "Use the following background material when it is relevant to the user's message. " +
	"Draw on it naturally without quoting it verbatim or citing passage numbers. " +
	"If none of it applies, answer from your general knowledge instead."

// Answer is the outcome of one conversation turn.
type Answer struct {
	Response string
	Persona  domain.Persona
	// Sources lists the distinct provenance identifiers of the passages
	// that grounded the reply, in retrieval order. Empty for ungrounded
	// turns.
	Sources []string
}

// Service orchestrates one chat turn.
type Service struct {
	retriever Retriever
	generator Generator
	topK      int
	logger    *zap.Logger
}

// New creates the chat service.
func New(retriever Retriever, generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever: retriever,
		generator: generator,
		topK:      DefaultTopK,
		logger:    logger,
	}
}

// WithTopK overrides how many passages are retrieved per turn.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Chat runs one conversation turn. Unknown persona identifiers fall back to
// the professional persona. Retrieval failures degrade the turn to an
// ungrounded reply rather than failing it; generation failures propagate.
func (s *Service) Chat(ctx context.Context, message string, history []string, persona string) (Answer, error) {
	if strings.TrimSpace(message) == "" {
		return Answer{}, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}

	p, ok := domain.ParsePersona(persona)
	if !ok && persona != "" {
		s.logger.Warn("unknown persona, using fallback",
			zap.String("persona", persona),
			zap.String("fallback", p.String()),
		)
	}

	matches, err := s.retriever.Query(ctx, message, s.topK)
	if err != nil {
		s.logger.Warn("retrieval failed, answering ungrounded", zap.Error(err))
		matches = nil
	}

	req := domain.GenerationRequest{
		SystemPrompt: buildSystemPrompt(p, matches),
		History:      history,
		Message:      message,
	}

	response, err := s.generator.Generate(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("generate reply: %w", err)
	}

	return Answer{
		Response: response,
		Persona:  p,
		Sources:  distinctSources(matches),
	}, nil
}

// buildSystemPrompt appends the numbered grounding block to the persona
// prompt. With no matches the persona prompt stands alone.
func buildSystemPrompt(p domain.Persona, matches []domain.Match) string {
	if len(matches) == 0 {
		return p.Prompt()
	}

	var b strings.Builder
	b.WriteString(p.Prompt())
	b.WriteString("\n\n")
	b.WriteString(groundingPreamble)
	b.WriteString("\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "\n[%d] (%s) %s", i+1, m.Source, m.Text)
	}
	return b.String()
}

func distinctSources(matches []domain.Match) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var sources []string
	for _, m := range matches {
		if _, dup := seen[m.Source]; dup {
			continue
		}
		seen[m.Source] = struct{}{}
		sources = append(sources, m.Source)
	}
	return sources
}
