package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sessioncore/server/modules/transcription/domain/services"
)

// DiarizationHTTPClient is a synchronous HTTP RPC client for the
// diarization service (spec §6, POST /diarize).
type DiarizationHTTPClient struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewDiarizationHTTPClient constructs a DiarizationHTTPClient.
func NewDiarizationHTTPClient(endpoint string, timeout time.Duration) *DiarizationHTTPClient {
	return &DiarizationHTTPClient{endpoint: endpoint, timeout: timeout, http: &http.Client{}}
}

func (c *DiarizationHTTPClient) Diarize(ctx context.Context, req services.DiarizeRequest) (*services.DiarizeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal diarize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build diarize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarize RPC: %w", err)
	}
	defer resp.Body.Close()

	var out services.DiarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode diarize response: %w", err)
	}
	return &out, nil
}

var _ services.DiarizationClient = (*DiarizationHTTPClient)(nil)

// NormalizeSpeakerLabel returns "Speaker {ordinal}" when raw is empty or
// "speaker_unknown"; any other provider tag is returned unchanged.
func NormalizeSpeakerLabel(raw string, ordinal int) string {
	if raw == "" || raw == "speaker_unknown" {
		return fmt.Sprintf("Speaker %d", ordinal)
	}
	return raw
}
