package services

import "context"

// TranscribeRequest is the wire shape of the STT RPC (spec §6, POST /transcribe).
type TranscribeRequest struct {
	AudioData struct {
		SampleRate      int       `json:"sample_rate"`
		AudioArray      []float32 `json:"audio_array"`
		Format          string    `json:"format"`
		DurationSeconds float64   `json:"duration_seconds"`
	} `json:"audio_data"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

// TranscribeResponse is the STT RPC response.
type TranscribeResponse struct {
	Success          bool    `json:"success"`
	Text             string  `json:"text"`
	ConfidenceScore  float64 `json:"confidence_score"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	ErrorMessage     string  `json:"error_message,omitempty"`
}

// STTClient is the opaque speech-to-text inference collaborator. Model
// internals are out of scope; this is a thin synchronous RPC contract with
// a fixed per-call timeout.
type STTClient interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error)
}
