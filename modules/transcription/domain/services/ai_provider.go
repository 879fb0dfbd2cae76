package services

import "context"

// SummaryRequest is the wire shape of the AI summary RPC (spec §6).
type SummaryRequest struct {
	TranscriptionText string `json:"transcription_text"`
	SessionID         string `json:"session_id"`
	TemplateContent   string `json:"template_content,omitempty"`
}

// TitleRequest is the wire shape of the AI title RPC (spec §6).
type TitleRequest struct {
	TranscriptionText string `json:"transcription_text"`
	SummaryText       string `json:"summary_text,omitempty"`
}

// TokenUsage reports best-effort token accounting; fields default to zero
// when a provider does not report them.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// GenerateResult is the common response shape across AI providers.
type GenerateResult struct {
	Text             string      `json:"text"`
	KeyPoints        []string    `json:"key_points,omitempty"`
	ModelUsed        string      `json:"model_used"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	TokenUsage       *TokenUsage `json:"token_usage,omitempty"`
}

// AIProvider is one backend in the ordered provider chain described in
// spec §9 ("Dynamic dispatch across providers"): a single generate contract,
// no inheritance. Each of Summarize/Title independently may fail; the chain
// tries the next provider.
type AIProvider interface {
	Name() string
	Summarize(ctx context.Context, req SummaryRequest) (*GenerateResult, error)
	Title(ctx context.Context, req TitleRequest) (*GenerateResult, error)
}
