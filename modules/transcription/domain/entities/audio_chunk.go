package entities

import "time"

// AudioChunk is an ephemeral, never-persisted unit of decoded PCM audio
// produced by the Realtime Ingest Adapter (4.C) and consumed exclusively by
// the Finalization Pipeline (4.D) via the Ephemeral Store.
type AudioChunk struct {
	PCM          []int16   `json:"pcm"`
	SampleRateHz int       `json:"sample_rate_hz"`
	Timestamp    time.Time `json:"timestamp"`
	DurationS    float64   `json:"duration_s"`
}

// SpeakerSegment is one diarization-produced speaker interval. It is never
// persisted directly; the retranscription pipeline (4.E) consumes it to
// produce TranscriptionSegments.
type SpeakerSegment struct {
	StartS    float64 `json:"start_s"`
	EndS      float64 `json:"end_s"`
	Label     string  `json:"label"`
	DurationS float64 `json:"duration_s"`
}

// Duration returns end_s - start_s.
func (s SpeakerSegment) Duration() float64 {
	return s.EndS - s.StartS
}
