package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	sessionEntities "sessioncore/server/modules/session/domain/entities"
	sessionRepos "sessioncore/server/modules/session/domain/repositories"
	taskServices "sessioncore/server/modules/task/application/services"
	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/modules/transcription/domain/repositories"
	txServices "sessioncore/server/modules/transcription/domain/services"
	"sessioncore/server/seedwork/domain"
)

var metaTokenPattern = regexp.MustCompile(`<\|[^|]*\|>`)

const (
	coalesceShortSegmentS = 5.0
	coalesceTrailingS     = 2.0
	coalesceDropS         = 1.0
	silenceRMSThreshold   = 0.01
	segmentFanOut         = 4
)

// RetranscriptionResult is what Tracker.Succeed publishes (spec §4.E step 6).
type RetranscriptionResult struct {
	TranscriptionID string  `json:"transcription_id"`
	DurationS       float64 `json:"duration_s"`
	TotalSegments   int     `json:"total_segments"`
	SpeakerCount    int     `json:"speaker_count"`
}

// RetranscriptionService is the reprocessing half of 4.E: authorize, locate
// and download prior media, run diarization with a single-segment fallback,
// coalesce segments, transcribe each, and replace the session's transcript.
type RetranscriptionService struct {
	sessions    sessionOwnerGetter
	audio       repositories.AudioFileRepository
	transcripts repositories.TranscriptRepository
	objects     txServices.ObjectStore
	diarizer    txServices.DiarizationClient
	stt         txServices.STTClient
	codec       txServices.AudioCodec
	tracker     *taskServices.Tracker
}

// sessionOwnerGetter is the slice of SessionRepository the retranscription
// service needs for its authorize step.
type sessionOwnerGetter interface {
	GetByID(ctx context.Context, id string, owner sessionRepos.OwnerFilter) (*sessionEntities.Session, error)
}

// NewRetranscriptionService wires the Retranscription Service.
func NewRetranscriptionService(
	sessions sessionOwnerGetter,
	audio repositories.AudioFileRepository,
	transcripts repositories.TranscriptRepository,
	objects txServices.ObjectStore,
	diarizer txServices.DiarizationClient,
	stt txServices.STTClient,
	codec txServices.AudioCodec,
	tracker *taskServices.Tracker,
) *RetranscriptionService {
	return &RetranscriptionService{
		sessions:    sessions,
		audio:       audio,
		transcripts: transcripts,
		objects:     objects,
		diarizer:    diarizer,
		stt:         stt,
		codec:       codec,
		tracker:     tracker,
	}
}

// Run executes the retranscription pipeline for an already-allocated task
// (spec §4.E). It is meant to be spawned by the caller after Retranscribe
// allocates the task and returns the task_id to the client.
func (s *RetranscriptionService) Run(ctx context.Context, taskID, sessionID, ownerID, language string) {
	if err := s.tracker.Start(ctx, taskID); err != nil {
		return
	}

	result, err := s.process(ctx, taskID, sessionID, ownerID, language)
	if err != nil {
		if kind, ok := domain.KindOf(err); ok && kind == domain.ErrCancelled {
			return
		}
		s.tracker.Fail(ctx, taskID, err.Error())
		return
	}
	s.tracker.Succeed(ctx, taskID, result)
}

func (s *RetranscriptionService) process(ctx context.Context, taskID, sessionID, ownerID, language string) (*RetranscriptionResult, error) {
	// Step 1: authorize.
	s.tracker.Progress(ctx, taskID, "initializing", 0)
	if _, err := s.sessions.GetByID(ctx, sessionID, sessionRepos.ForOwner(ownerID)); err != nil {
		return nil, err
	}

	// Step 2: locate media.
	s.tracker.Progress(ctx, taskID, "finding_audio", 15)
	audioFile, err := s.audio.FindCompletedBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cancelled, _ := s.tracker.IsCancelled(ctx, taskID); cancelled {
		return nil, domain.NewDomainError("TASK_CANCELLED", domain.ErrCancelled, "cancelled before download", nil)
	}

	// Step 3: download.
	s.tracker.Progress(ctx, taskID, "downloading_audio", 25)
	raw, err := s.objects.Download(ctx, audioFile.StoragePath)
	if err != nil {
		return nil, domain.NewDomainError("DOWNLOAD_FAILED", domain.ErrExternalUnavailable, "failed to download media", err)
	}

	if cancelled, _ := s.tracker.IsCancelled(ctx, taskID); cancelled {
		return nil, domain.NewDomainError("TASK_CANCELLED", domain.ErrCancelled, "cancelled before cleanup", nil)
	}

	// Step 4: delete prior transcripts.
	s.tracker.Progress(ctx, taskID, "cleaning_old_data", 35)
	if err := s.transcripts.DeleteBySessionID(ctx, sessionID); err != nil {
		return nil, err
	}

	if cancelled, _ := s.tracker.IsCancelled(ctx, taskID); cancelled {
		return nil, domain.NewDomainError("TASK_CANCELLED", domain.ErrCancelled, "cancelled before processing", nil)
	}

	// Step 5: processing core.
	s.tracker.Progress(ctx, taskID, "processing_audio", 50)
	content, segments, speakerCount, durationS, err := s.processingCore(ctx, taskID, sessionID, raw, string(audioFile.Format), language)
	if err != nil {
		return nil, err
	}

	transcript := entities.NewTranscript(sessionID, content, language, "agent_microservice", segments)
	if err := s.transcripts.Create(ctx, &transcript); err != nil {
		return nil, err
	}

	s.tracker.Progress(ctx, taskID, "completed", 100)
	return &RetranscriptionResult{
		TranscriptionID: transcript.GetID(),
		DurationS:       durationS,
		TotalSegments:   len(segments),
		SpeakerCount:    speakerCount,
	}, nil
}

// processingCore implements spec §4.E "Processing core (speaker-aware
// transcription)".
func (s *RetranscriptionService) processingCore(ctx context.Context, taskID, sessionID string, raw []byte, format, language string) (string, []entities.TranscriptionSegment, int, float64, error) {
	wavBytes := raw
	if format != "wav" {
		converted, err := s.codec.ToWAV(ctx, raw, format)
		if err != nil {
			return "", nil, 0, 0, err
		}
		wavBytes = converted
	}

	samples, sampleRate, err := decodeWAV(wavBytes)
	if err != nil {
		return "", nil, 0, 0, domain.NewDomainError("CODEC_FAILURE", domain.ErrCodecFailure, "failed to parse wav", err)
	}
	durationS := float64(len(samples)) / float64(sampleRate)

	speakerSegments := s.diarize(ctx, raw, format, sessionID, durationS)
	coalesced := coalesceSegments(speakerSegments)

	final := s.transcribeSegments(ctx, taskID, coalesced, samples, sampleRate, language)

	var parts []string
	for _, seg := range final {
		parts = append(parts, seg.Text)
	}
	speakers := map[string]bool{}
	for _, seg := range final {
		speakers[seg.Speaker] = true
	}

	return strings.Join(parts, " "), final, len(speakers), durationS, nil
}

// diarize invokes the diarization RPC, falling back to a single whole-audio
// segment on failure or an empty result (spec §4.E step 3).
func (s *RetranscriptionService) diarize(ctx context.Context, raw []byte, format, sessionID string, durationS float64) []entities.SpeakerSegment {
	resp, err := s.diarizer.Diarize(ctx, txServices.DiarizeRequest{
		AudioData:  hex.EncodeToString(raw),
		FileFormat: format,
		SessionID:  sessionID,
	})
	if err != nil || resp == nil || !resp.Success || len(resp.Segments) == 0 {
		return []entities.SpeakerSegment{{StartS: 0, EndS: durationS, Label: "Speaker 1", DurationS: durationS}}
	}

	out := make([]entities.SpeakerSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		out = append(out, entities.SpeakerSegment{
			StartS:    seg.StartTime,
			EndS:      seg.EndTime,
			Label:     seg.SpeakerLabel,
			DurationS: seg.Duration,
		})
	}
	return out
}

// coalesceSegments applies spec §4.E step 4's three passes in order.
func coalesceSegments(segments []entities.SpeakerSegment) []entities.SpeakerSegment {
	if len(segments) == 0 {
		return nil
	}

	// Pass a: merge consecutive segments sharing a label when both are
	// shorter than 5s.
	merged := []entities.SpeakerSegment{segments[0]}
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if last.Label == seg.Label && last.Duration() < coalesceShortSegmentS && seg.Duration() < coalesceShortSegmentS {
			last.EndS = seg.EndS
			last.DurationS = last.EndS - last.StartS
			continue
		}
		merged = append(merged, seg)
	}

	// Pass b: any segment shorter than 2s merges into its chronological
	// successor (successor's label wins); the trailing segment, if short,
	// merges into its predecessor instead.
	for {
		mergedAny := false
		var next []entities.SpeakerSegment
		for i := 0; i < len(merged); i++ {
			seg := merged[i]
			if seg.Duration() < coalesceTrailingS {
				if i == len(merged)-1 {
					if len(next) > 0 {
						prev := &next[len(next)-1]
						prev.EndS = seg.EndS
						prev.DurationS = prev.EndS - prev.StartS
						mergedAny = true
						continue
					}
				} else {
					successor := merged[i+1]
					next = append(next, entities.SpeakerSegment{
						StartS:    seg.StartS,
						EndS:      successor.EndS,
						Label:     successor.Label,
						DurationS: successor.EndS - seg.StartS,
					})
					i++ // consume the successor, it has been absorbed
					mergedAny = true
					continue
				}
			}
			next = append(next, seg)
		}
		merged = next
		if !mergedAny {
			break
		}
	}

	// Pass c: drop any segment whose final duration is below 1s.
	var final []entities.SpeakerSegment
	for _, seg := range merged {
		if seg.Duration() >= coalesceDropS {
			final = append(final, seg)
		}
	}
	return final
}

// transcribeSegments implements spec §4.E step 5: per-segment STT with
// bounded fan-out, re-sorted by start_s before publication.
func (s *RetranscriptionService) transcribeSegments(ctx context.Context, taskID string, speakerSegments []entities.SpeakerSegment, samples []int16, sampleRate int, language string) []entities.TranscriptionSegment {
	type indexed struct {
		order int
		seg   *entities.TranscriptionSegment
	}

	results := make([]indexed, 0, len(speakerSegments))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, segmentFanOut)

	for i, sp := range speakerSegments {
		if cancelled, _ := s.tracker.IsCancelled(ctx, taskID); cancelled {
			break
		}

		slice := sliceSamples(samples, sampleRate, sp.StartS, sp.EndS)
		if rms(slice) < silenceRMSThreshold {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(order int, sp entities.SpeakerSegment, slice []int16) {
			defer wg.Done()
			defer func() { <-sem }()

			resampled := resample(slice, sampleRate, TargetSampleRateHz)
			req := txServices.TranscribeRequest{Language: language}
			req.AudioData.SampleRate = TargetSampleRateHz
			req.AudioData.Format = "float32_24000hz"
			req.AudioData.DurationSeconds = sp.Duration()
			req.AudioData.AudioArray = int16ToFloat32(resampled)

			resp, err := s.stt.Transcribe(ctx, req)
			if err != nil || resp == nil || !resp.Success {
				return
			}

			cleaned := strings.TrimSpace(metaTokenPattern.ReplaceAllString(resp.Text, ""))
			if cleaned == "" || isPunctuationOnly(cleaned) {
				return
			}

			seg := entities.NewTranscriptionSegment(0, sp.Label, sp.StartS, sp.EndS, cleaned, resp.ConfidenceScore, true)
			mu.Lock()
			results = append(results, indexed{order: order, seg: &seg})
			mu.Unlock()
		}(i, sp, slice)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].seg.StartS < results[j].seg.StartS })

	final := make([]entities.TranscriptionSegment, len(results))
	for i, r := range results {
		r.seg.Index = i
		final[i] = *r.seg
	}
	return final
}

func isPunctuationOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func sliceSamples(samples []int16, sampleRate int, startS, endS float64) []int16 {
	start := int(startS * float64(sampleRate))
	end := int(endS * float64(sampleRate))
	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	if start >= end {
		return nil
	}
	return samples[start:end]
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func decodeWAV(wavBytes []byte) ([]int16, int, error) {
	if len(wavBytes) < 44 {
		return nil, 0, fmt.Errorf("wav payload too short: %d bytes", len(wavBytes))
	}
	if string(wavBytes[0:4]) != "RIFF" || string(wavBytes[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("missing RIFF/WAVE header")
	}
	sampleRate := int(uint32(wavBytes[24]) | uint32(wavBytes[25])<<8 | uint32(wavBytes[26])<<16 | uint32(wavBytes[27])<<24)
	data := wavBytes[44:]
	count := len(data) / 2
	samples := make([]int16, count)
	for i := 0; i < count; i++ {
		samples[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	return samples, sampleRate, nil
}

