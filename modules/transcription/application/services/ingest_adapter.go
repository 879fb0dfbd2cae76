package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/modules/transcription/domain/services"
)

const (
	// TargetSampleRateHz is the canonical resample target (spec §4.C).
	TargetSampleRateHz = 24000
	// FlushThresholdBytes is ~2 seconds of int16 mono audio at TargetSampleRateHz.
	FlushThresholdBytes = 2 * TargetSampleRateHz * 2
	transcriptionTopic  = "transcription"
)

// RoomSessionID extracts the session id from a media room name of form
// PREFIX_{uuid} (spec §4.C). A non-matching name is a fatal configuration
// error the adapter's caller must treat as a clean exit.
func RoomSessionID(roomName string) (string, error) {
	idx := strings.LastIndex(roomName, "_")
	if idx < 0 || idx == len(roomName)-1 {
		return "", fmt.Errorf("room name %q does not match PREFIX_{uuid}", roomName)
	}
	return roomName[idx+1:], nil
}

// IngestAdapter is the Realtime Ingest Adapter (spec §4.C): one instance
// per session, consuming decoded PCM from the media router, buffering to a
// fixed byte threshold, and driving synchronous STT on each flush.
//
// Flushes within one instance are strictly serialized by flushMu — segment
// indices and start_s monotonicity depend on this (spec §5).
type IngestAdapter struct {
	sessionID  string
	sampleRate int
	store      services.EphemeralStore
	stt        services.STTClient
	publisher  services.MediaPublisher
	roomName   string

	bufMu sync.Mutex
	buf   []int16

	flushMu       sync.Mutex
	nextIndex     int
	elapsedS      float64
}

// NewIngestAdapter constructs an IngestAdapter for one media session.
func NewIngestAdapter(sessionID, roomName string, sampleRate int, store services.EphemeralStore, stt services.STTClient, publisher services.MediaPublisher) *IngestAdapter {
	return &IngestAdapter{
		sessionID:  sessionID,
		roomName:   roomName,
		sampleRate: sampleRate,
		store:      store,
		stt:        stt,
		publisher:  publisher,
	}
}

// Consume drains frames until the channel closes, flushing on cancellation
// exactly once for any residual buffer of at least 0.1s (spec §4.C).
func (a *IngestAdapter) Consume(ctx context.Context, frames <-chan services.MediaFrame) {
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				a.flushResidual(context.Background())
				return
			}
			a.ingest(ctx, frame.PCM, frame.SampleRateHz)
		case <-ctx.Done():
			a.flushResidual(context.Background())
			return
		}
	}
}

func (a *IngestAdapter) ingest(ctx context.Context, pcm []int16, sourceRate int) {
	resampled := resample(pcm, sourceRate, TargetSampleRateHz)

	a.bufMu.Lock()
	a.buf = append(a.buf, resampled...)
	shouldFlush := len(a.buf)*2 >= FlushThresholdBytes
	var toFlush []int16
	if shouldFlush {
		toFlush = a.buf
		a.buf = nil
	}
	a.bufMu.Unlock()

	if shouldFlush {
		a.flush(ctx, toFlush)
	}
}

// flushResidual flushes whatever remains buffered on session termination,
// provided it amounts to at least 0.1s (spec §4.C).
func (a *IngestAdapter) flushResidual(ctx context.Context) {
	a.bufMu.Lock()
	residual := a.buf
	a.buf = nil
	a.bufMu.Unlock()

	minSamples := int(0.1 * float64(TargetSampleRateHz))
	if len(residual) < minSamples {
		return
	}
	a.flush(ctx, residual)
}

// flush runs the per-chunk pipeline from spec §4.C steps 2-4, serialized
// against any other flush on this instance.
func (a *IngestAdapter) flush(ctx context.Context, samples []int16) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	durationS := float64(len(samples)) / float64(TargetSampleRateHz)
	startS := a.elapsedS

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		chunk := entities.AudioChunk{
			PCM:          samples,
			SampleRateHz: TargetSampleRateHz,
			Timestamp:    time.Now(),
			DurationS:    durationS,
		}
		if err := a.store.AppendAudio(ctx, a.sessionID, chunk); err != nil {
			log.Printf("ingest[%s]: append audio to store failed: %v", a.sessionID, err)
		}
	}()

	req := services.TranscribeRequest{SessionID: a.sessionID}
	req.AudioData.SampleRate = TargetSampleRateHz
	req.AudioData.Format = "float32_24000hz"
	req.AudioData.DurationSeconds = durationS
	req.AudioData.AudioArray = int16ToFloat32(samples)

	resp, err := a.stt.Transcribe(ctx, req)

	wg.Wait()
	a.elapsedS += durationS

	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		log.Printf("ingest[%s]: STT RPC failed, dropping chunk: %v", a.sessionID, err)
		return
	}
	if resp == nil || !resp.Success || strings.TrimSpace(resp.Text) == "" {
		return
	}

	index := a.nextIndex
	a.nextIndex++
	segment := entities.NewTranscriptionSegment(index, "Speaker 1", startS, startS+durationS, resp.Text, resp.ConfidenceScore, true)

	if a.publisher != nil {
		payload := fmt.Sprintf(`{"index":%d,"speaker":%q,"start_s":%f,"end_s":%f,"text":%q,"confidence":%f,"is_final":true}`,
			segment.Index, segment.Speaker, segment.StartS, segment.EndS, segment.Text, segment.Confidence)
		if err := a.publisher.Publish(a.roomName, transcriptionTopic, []byte(payload)); err != nil {
			log.Printf("ingest[%s]: publish segment failed: %v", a.sessionID, err)
		}
	}
	if err := a.store.AppendTranscription(ctx, a.sessionID, segment); err != nil {
		log.Printf("ingest[%s]: append transcription to store failed: %v", a.sessionID, err)
	}
}

// resample performs linear resampling from sourceRate to targetRate,
// preserving total duration within one sample (spec §4.C step 1).
func resample(pcm []int16, sourceRate, targetRate int) []int16 {
	if sourceRate == targetRate || len(pcm) == 0 {
		out := make([]int16, len(pcm))
		copy(out, pcm)
		return out
	}
	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(float64(len(pcm)) * ratio)
	out := make([]int16, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		lo := int(srcPos)
		hi := lo + 1
		frac := srcPos - float64(lo)
		if hi >= len(pcm) {
			out[i] = pcm[len(pcm)-1]
			continue
		}
		out[i] = int16(float64(pcm[lo])*(1-frac) + float64(pcm[hi])*frac)
	}
	return out
}

func int16ToFloat32(pcm []int16) []float32 {
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = float32(s) / 32768.0
	}
	return out
}
