package domain

// GenerationRequest is one grounded generation call: the assembled system
// prompt, the flattened prior turns, and the current user message.
type GenerationRequest struct {
	SystemPrompt string
	History      []string
	Message      string
}
