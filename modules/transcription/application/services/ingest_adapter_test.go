package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncore/server/modules/transcription/domain/services"
)

type fakeSTT struct {
	mu    sync.Mutex
	calls int
	text  string
}

func (f *fakeSTT) Transcribe(ctx context.Context, req services.TranscribeRequest) (*services.TranscribeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &services.TranscribeResponse{Success: true, Text: f.text, ConfidenceScore: 0.8}, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakePublisher) Publish(roomName, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, string(payload))
	return nil
}

func TestRoomSessionID_ExtractsUUIDSuffix(t *testing.T) {
	id, err := RoomSessionID("session_abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestRoomSessionID_RejectsMissingSeparator(t *testing.T) {
	_, err := RoomSessionID("nouuidhere")
	assert.Error(t, err)
}

func TestResample_PreservesSampleCountAtTargetRate(t *testing.T) {
	pcm := make([]int16, 16000)
	for i := range pcm {
		pcm[i] = int16(i % 100)
	}
	out := resample(pcm, 16000, 24000)
	assert.InDelta(t, 24000, len(out), 2)
}

func TestResample_NoOpWhenRatesMatch(t *testing.T) {
	pcm := []int16{1, 2, 3, 4}
	out := resample(pcm, 16000, 16000)
	assert.Equal(t, pcm, out)
}

func TestIngestAdapter_FlushesAtThreshold(t *testing.T) {
	store := newFakeStore()
	stt := &fakeSTT{text: "hello world"}
	pub := &fakePublisher{}

	adapter := NewIngestAdapter("session-1", "session_session-1", TargetSampleRateHz, store, stt, pub)

	frame := make([]int16, FlushThresholdBytes/2)
	adapter.ingest(context.Background(), frame, TargetSampleRateHz)

	assert.Equal(t, 1, stt.calls)
	segments, err := store.ListTranscriptions(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "hello world", segments[0].Text)
	assert.Len(t, pub.messages, 1)
}

func TestIngestAdapter_BelowThresholdDoesNotFlush(t *testing.T) {
	store := newFakeStore()
	stt := &fakeSTT{text: "too early"}

	adapter := NewIngestAdapter("session-2", "session_session-2", TargetSampleRateHz, store, stt, nil)

	frame := make([]int16, 100)
	adapter.ingest(context.Background(), frame, TargetSampleRateHz)

	assert.Equal(t, 0, stt.calls)
}

func TestIngestAdapter_FlushResidualBelowMinimumIsDropped(t *testing.T) {
	store := newFakeStore()
	stt := &fakeSTT{text: "residual"}

	adapter := NewIngestAdapter("session-3", "session_session-3", TargetSampleRateHz, store, stt, nil)
	adapter.buf = make([]int16, 10) // far below the 0.1s minimum at 24kHz

	adapter.flushResidual(context.Background())
	assert.Equal(t, 0, stt.calls)
}

func TestIngestAdapter_FlushResidualAboveMinimumFlushes(t *testing.T) {
	store := newFakeStore()
	stt := &fakeSTT{text: "residual"}

	adapter := NewIngestAdapter("session-4", "session_session-4", TargetSampleRateHz, store, stt, nil)
	adapter.buf = make([]int16, int(0.2*float64(TargetSampleRateHz)))

	adapter.flushResidual(context.Background())
	assert.Equal(t, 1, stt.calls)
}
