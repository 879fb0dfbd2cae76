package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sessioncore/server/modules/transcription/domain/services"
)

// OllamaProvider is an AIProvider backed by a local Ollama instance's
// /api/chat endpoint.
type OllamaProvider struct {
	baseURL string
	model   string
	http    *http.Client
	timeout time.Duration
}

// NewOllamaProvider constructs an OllamaProvider.
func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{baseURL: baseURL, model: model, http: &http.Client{}, timeout: timeout}
}

func (p *OllamaProvider) Name() string { return "ollama:" + p.model }

func (p *OllamaProvider) Summarize(ctx context.Context, req services.SummaryRequest) (*services.GenerateResult, error) {
	system := "You summarize conversation transcripts. Respond in structured Markdown: a one or two sentence topic, key points, decisions, and next steps."
	if req.TemplateContent != "" {
		system = req.TemplateContent
	}
	user := "Transcript:\n\n" + req.TranscriptionText
	return p.chat(ctx, system, user)
}

func (p *OllamaProvider) Title(ctx context.Context, req services.TitleRequest) (*services.GenerateResult, error) {
	system := "You generate a short, descriptive title (under ten words) for a conversation transcript. Respond with only the title."
	user := req.TranscriptionText
	if req.SummaryText != "" {
		user = req.SummaryText
	}
	return p.chat(ctx, system, user)
}

func (p *OllamaProvider) chat(ctx context.Context, system, user string) (*services.GenerateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	healthReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build health check: %w", err)
	}
	healthResp, err := p.http.Do(healthReq)
	if err != nil {
		return nil, fmt.Errorf("ollama not reachable at %s: %w", p.baseURL, err)
	}
	healthResp.Body.Close()

	start := time.Now()
	body, err := json.Marshal(map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"stream":  false,
		"options": map[string]interface{}{"temperature": 0.3},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat RPC: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}

	return &services.GenerateResult{
		Text:             out.Message.Content,
		ModelUsed:        p.model,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

var _ services.AIProvider = (*OllamaProvider)(nil)

// RuleBasedProvider is the always-available fallback AIProvider: it never
// calls out to a model, producing a deterministic statistical summary
// instead.
type RuleBasedProvider struct{}

// NewRuleBasedProvider constructs a RuleBasedProvider.
func NewRuleBasedProvider() *RuleBasedProvider { return &RuleBasedProvider{} }

func (p *RuleBasedProvider) Name() string { return "rule-based-fallback" }

func (p *RuleBasedProvider) Summarize(ctx context.Context, req services.SummaryRequest) (*services.GenerateResult, error) {
	lines := strings.Split(req.TranscriptionText, "\n")
	var totalWords, speakerLines int
	speakers := map[string]bool{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ":"); idx > 0 && idx < 40 {
			speakers[line[:idx]] = true
			speakerLines++
		}
		totalWords += len(strings.Fields(line))
	}
	text := fmt.Sprintf(
		"Recording statistics:\n- Speakers detected: %d\n- Spoken lines: %d\n- Total words: %d\n\nA full summary requires a language model provider to be reachable.",
		len(speakers), speakerLines, totalWords)
	return &services.GenerateResult{Text: text, ModelUsed: p.Name()}, nil
}

func (p *RuleBasedProvider) Title(ctx context.Context, req services.TitleRequest) (*services.GenerateResult, error) {
	source := req.TranscriptionText
	words := strings.Fields(source)
	limit := 8
	if len(words) < limit {
		limit = len(words)
	}
	title := strings.Join(words[:limit], " ")
	if title == "" {
		title = "Untitled session"
	}
	return &services.GenerateResult{Text: title, ModelUsed: p.Name()}, nil
}

var _ services.AIProvider = (*RuleBasedProvider)(nil)

// ProviderChain dispatches Summarize/Title across an ordered list of
// AIProviders (spec §9: "dynamic dispatch across providers... a single
// generate contract, no inheritance"). Each call tries providers in order
// and returns the first success; it fails only if every provider does.
type ProviderChain struct {
	providers []services.AIProvider
}

// NewProviderChain constructs a ProviderChain trying providers in the given
// order.
func NewProviderChain(providers ...services.AIProvider) *ProviderChain {
	return &ProviderChain{providers: providers}
}

func (c *ProviderChain) Name() string { return "chain" }

func (c *ProviderChain) Summarize(ctx context.Context, req services.SummaryRequest) (*services.GenerateResult, error) {
	var lastErr error
	for _, p := range c.providers {
		result, err := p.Summarize(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
	}
	return nil, lastErr
}

func (c *ProviderChain) Title(ctx context.Context, req services.TitleRequest) (*services.GenerateResult, error) {
	var lastErr error
	for _, p := range c.providers {
		result, err := p.Title(ctx, req)
		if err == nil {
			return result, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
	}
	return nil, lastErr
}

var _ services.AIProvider = (*ProviderChain)(nil)
