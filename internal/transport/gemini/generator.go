// Package gemini adapts the Gemini API to the chat generator contract.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/mindwell-ai/mindwell/internal/domain"
)

// DefaultModel is used when the config does not name one.
const DefaultModel = "gemini-2.5-flash"

// Generator produces replies through the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New creates a Gemini-backed generator.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Generator{client: client, model: model, logger: logger}, nil
}

// Generate sends the persona prompt as system instruction, the flattened
// history as prior user turns, and the message as the final turn. An empty
// model reply is an error, not a silent empty string.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	contents := buildContents(req)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty model reply", domain.ErrGenerationFailed)
	}

	g.logger.Debug("generation complete",
		zap.String("model", g.model),
		zap.Int("history_turns", len(req.History)),
		zap.Int("reply_chars", len(text)),
	)
	return text, nil
}

// buildContents flattens the history into prior user turns followed by the
// current message. Blank history entries are dropped.
func buildContents(req domain.GenerationRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		if strings.TrimSpace(turn) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(turn, genai.RoleUser))
	}
	return append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))
}
