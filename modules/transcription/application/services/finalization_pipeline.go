package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"strings"
	"time"

	sessionEntities "sessioncore/server/modules/session/domain/entities"
	sessionRepos "sessioncore/server/modules/session/domain/repositories"
	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/modules/transcription/domain/repositories"
	"sessioncore/server/modules/transcription/domain/services"
	"sessioncore/server/seedwork/domain"
)

// FinalizationResult is the outcome of one Finalize call. Only Load
// (step 1), the transition to processing that follows it, and the session
// status update (step 5) can fail the whole pipeline; every other step
// failure is downgraded to a warning (spec §4.D "Failure semantics").
type FinalizationResult struct {
	Session    *sessionEntities.Session
	Transcript *entities.Transcript
	AudioFile  *entities.AudioFile
	Warnings   []string
}

// sessionTransitioner is the slice of RegistryService the pipeline needs;
// kept as an interface so the pipeline doesn't import the concrete type and
// can be tested against a fake.
type sessionTransitioner interface {
	GetByID(ctx context.Context, id string, owner sessionRepos.OwnerFilter) (*sessionEntities.Session, error)
	TransitionTo(ctx context.Context, id string, owner sessionRepos.OwnerFilter, newStatus sessionEntities.SessionStatus, viaFinalization bool) (*sessionEntities.Session, error)
	Update(ctx context.Context, id string, owner sessionRepos.OwnerFilter, mutate func(*sessionEntities.Session) error) (*sessionEntities.Session, error)
}

// FinalizationPipeline is the Finalization Pipeline (spec §4.D): the hard
// part of this system. On session termination it drains the ephemeral
// store, assembles and persists the audio and transcript, and always moves
// the session to a terminal state.
type FinalizationPipeline struct {
	sessions    sessionTransitioner
	store       services.EphemeralStore
	audio       repositories.AudioFileRepository
	transcripts repositories.TranscriptRepository
	codec       services.AudioCodec
	objects     services.ObjectStore
}

// NewFinalizationPipeline wires the Finalization Pipeline.
func NewFinalizationPipeline(
	sessions sessionTransitioner,
	store services.EphemeralStore,
	audio repositories.AudioFileRepository,
	transcripts repositories.TranscriptRepository,
	codec services.AudioCodec,
	objects services.ObjectStore,
) *FinalizationPipeline {
	return &FinalizationPipeline{
		sessions:    sessions,
		store:       store,
		audio:       audio,
		transcripts: transcripts,
		codec:       codec,
		objects:     objects,
	}
}

// Finalize runs the pipeline for sessionID on behalf of callerID.
func (p *FinalizationPipeline) Finalize(ctx context.Context, sessionID, callerID string) (*FinalizationResult, error) {
	owner := sessionRepos.ForOwner(callerID)

	// Step 1: load session (terminal on failure).
	session, err := p.sessions.GetByID(ctx, sessionID, owner)
	if err != nil {
		return nil, err
	}

	// Idempotence: a second finalize on a completed session short-circuits
	// steps 3-5 (spec §4.D "Idempotence").
	if session.Status == sessionEntities.SessionCompleted {
		result := &FinalizationResult{Session: session}
		p.clearStore(ctx, sessionID, result)
		return result, nil
	}

	if _, err := p.sessions.TransitionTo(ctx, sessionID, owner, sessionEntities.SessionProcessing, true); err != nil {
		return nil, err
	}

	result := &FinalizationResult{Session: session}

	// Step 2: drain store.
	segments, segErr := p.store.ListTranscriptions(ctx, sessionID)
	if segErr != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("drain transcription list: %v", segErr))
	}
	chunks, chunkErr := p.store.ListAudio(ctx, sessionID)
	if chunkErr != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("drain audio list: %v", chunkErr))
	}

	// Step 3: audio assembly, only if non-empty.
	var durationS float64
	var audioSucceeded bool
	if len(chunks) > 0 {
		audioFile, dur, warn := p.assembleAudio(ctx, session, chunks)
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		} else {
			result.AudioFile = audioFile
			durationS = dur
			audioSucceeded = true
		}
	}

	// Step 4: transcript assembly, only if non-empty.
	if len(segments) > 0 {
		transcript, warn := p.assembleTranscript(ctx, session, segments)
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		} else {
			result.Transcript = transcript
		}
	}

	// Step 5: session status update (terminal on failure). Must succeed
	// even when steps 3/4 were skipped or partially failed.
	updated, err := p.sessions.Update(ctx, sessionID, owner, func(s *sessionEntities.Session) error {
		if !sessionEntities.CanTransition(s.Status, sessionEntities.SessionCompleted, true) {
			return domain.NewDomainError("INVALID_STATE_TRANSITION", domain.ErrInvalidStateTransition,
				"cannot reach completed from "+string(s.Status), nil)
		}
		s.Status = sessionEntities.SessionCompleted
		if audioSucceeded {
			s.DurationS = int(durationS)
			now := time.Now()
			s.EndedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Session = updated

	// Step 6: clear store, always safe to repeat.
	p.clearStore(ctx, sessionID, result)

	return result, nil
}

func (p *FinalizationPipeline) clearStore(ctx context.Context, sessionID string, result *FinalizationResult) {
	if err := p.store.ClearTranscriptions(ctx, sessionID); err != nil {
		log.Printf("finalize[%s]: clear transcription store failed: %v", sessionID, err)
	}
	if err := p.store.ClearAudio(ctx, sessionID); err != nil {
		log.Printf("finalize[%s]: clear audio store failed: %v", sessionID, err)
	}
	_ = result
}

// assembleAudio implements spec §4.D step 3: concatenate, write WAV,
// transcode to MP3, upload, insert the AudioFile row. A codec failure
// downgrades the whole step to a warning; transcript persistence still
// proceeds (spec: "the entire audio step is considered failed but
// transcript persistence still proceeds").
func (p *FinalizationPipeline) assembleAudio(ctx context.Context, session *sessionEntities.Session, chunks []entities.AudioChunk) (*entities.AudioFile, float64, string) {
	var samples []int16
	sampleRate := chunks[0].SampleRateHz
	for _, c := range chunks {
		samples = append(samples, c.PCM...)
	}

	wavBytes := encodeWAVBytes(samples, sampleRate)

	mp3Bytes, err := p.codec.EncodeMP3(ctx, wavBytes)
	if err != nil {
		return nil, 0, fmt.Sprintf("audio codec failed: %v", err)
	}

	path := fmt.Sprintf("raw/%s/%s_%d.mp3", session.OwnerID, session.GetID(), time.Now().Unix())
	upload, err := p.objects.Upload(ctx, path, mp3Bytes, "audio/mpeg")
	if err != nil {
		return nil, 0, fmt.Sprintf("audio upload failed: %v", err)
	}

	durationS := float64(len(samples)) / float64(sampleRate)
	audioFile := entities.NewAudioFile(session.GetID(), session.OwnerID, upload.Path, upload.PublicURL, int64(len(mp3Bytes)), durationS, entities.AudioFormatMP3, sampleRate)
	if err := p.audio.Create(ctx, &audioFile); err != nil {
		return nil, 0, fmt.Sprintf("audio file insert failed: %v", err)
	}
	return &audioFile, durationS, ""
}

// assembleTranscript implements spec §4.D step 4.
func (p *FinalizationPipeline) assembleTranscript(ctx context.Context, session *sessionEntities.Session, segments []entities.TranscriptionSegment) (*entities.Transcript, string) {
	var parts []string
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		parts = append(parts, seg.Text)
	}
	content := strings.Join(parts, " ")

	transcript := entities.NewTranscript(session.GetID(), content, session.Language, "agent_microservice", segments)
	if err := p.transcripts.Create(ctx, &transcript); err != nil {
		return nil, fmt.Sprintf("transcript insert failed: %v", err)
	}
	return &transcript, ""
}

// encodeWAVBytes writes mono 16-bit PCM samples into a WAV byte buffer with
// the canonical 44-byte RIFF/WAVE header.
func encodeWAVBytes(samples []int16, sampleRateHz int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRateHz * bitsPerSample / 8
	blockAlign := bitsPerSample / 8
	dataSize := uint32(len(samples) * bitsPerSample / 8)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRateHz))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}
