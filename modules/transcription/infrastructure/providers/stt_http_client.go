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

// STTHTTPClient is a synchronous HTTP RPC client for the STT service
// (spec §6, POST /transcribe). Unlike a polling-based hosted batch API, the
// STT collaborator here is a single-call RPC with a fixed timeout, so the
// client is just one http.Client.Do per Transcribe — no session map, no
// poll loop.
type STTHTTPClient struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

// NewSTTHTTPClient constructs an STTHTTPClient.
func NewSTTHTTPClient(endpoint string, timeout time.Duration) *STTHTTPClient {
	return &STTHTTPClient{endpoint: endpoint, timeout: timeout, http: &http.Client{}}
}

func (c *STTHTTPClient) Transcribe(ctx context.Context, req services.TranscribeRequest) (*services.TranscribeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal transcribe request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transcribe request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcribe RPC: %w", err)
	}
	defer resp.Body.Close()

	var out services.TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode transcribe response: %w", err)
	}
	return &out, nil
}

var _ services.STTClient = (*STTHTTPClient)(nil)
