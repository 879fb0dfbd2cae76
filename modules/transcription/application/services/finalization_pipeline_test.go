package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionEntities "sessioncore/server/modules/session/domain/entities"
	sessionRepos "sessioncore/server/modules/session/domain/repositories"
	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/modules/transcription/domain/services"
)

type fakeSessions struct {
	session *sessionEntities.Session
}

func (f *fakeSessions) GetByID(ctx context.Context, id string, owner sessionRepos.OwnerFilter) (*sessionEntities.Session, error) {
	return f.session, nil
}

func (f *fakeSessions) TransitionTo(ctx context.Context, id string, owner sessionRepos.OwnerFilter, newStatus sessionEntities.SessionStatus, viaFinalization bool) (*sessionEntities.Session, error) {
	f.session.Status = newStatus
	return f.session, nil
}

func (f *fakeSessions) Update(ctx context.Context, id string, owner sessionRepos.OwnerFilter, mutate func(*sessionEntities.Session) error) (*sessionEntities.Session, error) {
	if err := mutate(f.session); err != nil {
		return nil, err
	}
	return f.session, nil
}

type fakeStore struct {
	segments map[string][]entities.TranscriptionSegment
	chunks   map[string][]entities.AudioChunk
	cleared  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{segments: map[string][]entities.TranscriptionSegment{}, chunks: map[string][]entities.AudioChunk{}}
}

func (s *fakeStore) AppendTranscription(ctx context.Context, sessionID string, segment entities.TranscriptionSegment) error {
	s.segments[sessionID] = append(s.segments[sessionID], segment)
	return nil
}
func (s *fakeStore) ListTranscriptions(ctx context.Context, sessionID string) ([]entities.TranscriptionSegment, error) {
	return s.segments[sessionID], nil
}
func (s *fakeStore) ClearTranscriptions(ctx context.Context, sessionID string) error {
	delete(s.segments, sessionID)
	s.cleared = true
	return nil
}
func (s *fakeStore) AppendAudio(ctx context.Context, sessionID string, chunk entities.AudioChunk) error {
	s.chunks[sessionID] = append(s.chunks[sessionID], chunk)
	return nil
}
func (s *fakeStore) ListAudio(ctx context.Context, sessionID string) ([]entities.AudioChunk, error) {
	return s.chunks[sessionID], nil
}
func (s *fakeStore) ClearAudio(ctx context.Context, sessionID string) error {
	delete(s.chunks, sessionID)
	return nil
}
func (s *fakeStore) SetState(ctx context.Context, sessionID string, kv map[string]string) error { return nil }
func (s *fakeStore) GetState(ctx context.Context, sessionID string) (map[string]string, error) {
	return nil, nil
}
func (s *fakeStore) CacheSet(ctx context.Context, key, value string, ttlSeconds int) error { return nil }
func (s *fakeStore) CacheGet(ctx context.Context, key string) (string, bool, error)        { return "", false, nil }
func (s *fakeStore) CacheDelete(ctx context.Context, key string) error                     { return nil }

var _ services.EphemeralStore = (*fakeStore)(nil)

type fakeAudioRepo struct{ created []entities.AudioFile }

func (r *fakeAudioRepo) Create(ctx context.Context, file *entities.AudioFile) error {
	r.created = append(r.created, *file)
	return nil
}
func (r *fakeAudioRepo) FindBySessionID(ctx context.Context, sessionID string) ([]entities.AudioFile, error) {
	return r.created, nil
}
func (r *fakeAudioRepo) FindCompletedBySessionID(ctx context.Context, sessionID string) (*entities.AudioFile, error) {
	if len(r.created) == 0 {
		return nil, nil
	}
	return &r.created[0], nil
}

type fakeTranscriptRepo struct{ created []entities.Transcript }

func (r *fakeTranscriptRepo) Create(ctx context.Context, t *entities.Transcript) error {
	r.created = append(r.created, *t)
	return nil
}
func (r *fakeTranscriptRepo) FindBySessionID(ctx context.Context, sessionID string) (*entities.Transcript, error) {
	if len(r.created) == 0 {
		return nil, nil
	}
	return &r.created[0], nil
}
func (r *fakeTranscriptRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	r.created = nil
	return nil
}

type fakeCodec struct{ fail bool }

func (c *fakeCodec) EncodeMP3(ctx context.Context, wavBytes []byte) ([]byte, error) {
	if c.fail {
		return nil, assert.AnError
	}
	return []byte("mp3-bytes"), nil
}
func (c *fakeCodec) ToWAV(ctx context.Context, data []byte, sourceFormat string) ([]byte, error) {
	return data, nil
}

type fakeObjects struct{}

func (fakeObjects) Upload(ctx context.Context, path string, data []byte, contentType string) (*services.UploadResult, error) {
	return &services.UploadResult{Path: path, PublicURL: "https://example.test/" + path}, nil
}
func (fakeObjects) UploadStream(ctx context.Context, path string, r io.Reader, contentType string) (*services.UploadResult, error) {
	return nil, nil
}
func (fakeObjects) Download(ctx context.Context, path string) ([]byte, error) { return nil, nil }
func (fakeObjects) Delete(ctx context.Context, paths []string) []services.DeleteResult {
	return nil
}

func newTestSession(status sessionEntities.SessionStatus) *sessionEntities.Session {
	s := sessionEntities.NewSession("owner-1", "standup", "en")
	s.Status = status
	return &s
}

func TestFinalizationPipeline_HappyPath(t *testing.T) {
	session := newTestSession(sessionEntities.SessionRecording)
	store := newFakeStore()
	store.chunks[session.GetID()] = []entities.AudioChunk{
		{PCM: make([]int16, 16000), SampleRateHz: 16000, Timestamp: time.Now(), DurationS: 1},
	}
	store.segments[session.GetID()] = []entities.TranscriptionSegment{
		entities.NewTranscriptionSegment(0, "Speaker 1", 0, 1, "hello there", 0.9, true),
	}
	audioRepo := &fakeAudioRepo{}
	transcriptRepo := &fakeTranscriptRepo{}

	pipeline := NewFinalizationPipeline(&fakeSessions{session: session}, store, audioRepo, transcriptRepo, &fakeCodec{}, fakeObjects{})

	result, err := pipeline.Finalize(context.Background(), session.GetID(), session.OwnerID)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, sessionEntities.SessionCompleted, result.Session.Status)
	require.NotNil(t, result.AudioFile)
	require.NotNil(t, result.Transcript)
	assert.Equal(t, "hello there", result.Transcript.Content)
	assert.True(t, store.cleared)
}

func TestFinalizationPipeline_IdempotentOnAlreadyCompleted(t *testing.T) {
	session := newTestSession(sessionEntities.SessionCompleted)
	store := newFakeStore()
	pipeline := NewFinalizationPipeline(&fakeSessions{session: session}, store, &fakeAudioRepo{}, &fakeTranscriptRepo{}, &fakeCodec{}, fakeObjects{})

	result, err := pipeline.Finalize(context.Background(), session.GetID(), session.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, sessionEntities.SessionCompleted, result.Session.Status)
	assert.Nil(t, result.AudioFile)
	assert.Nil(t, result.Transcript)
}

func TestFinalizationPipeline_AudioCodecFailureDowngradesToWarning(t *testing.T) {
	session := newTestSession(sessionEntities.SessionRecording)
	store := newFakeStore()
	store.chunks[session.GetID()] = []entities.AudioChunk{
		{PCM: make([]int16, 16000), SampleRateHz: 16000, Timestamp: time.Now(), DurationS: 1},
	}
	store.segments[session.GetID()] = []entities.TranscriptionSegment{
		entities.NewTranscriptionSegment(0, "Speaker 1", 0, 1, "still transcribed", 0.9, true),
	}

	pipeline := NewFinalizationPipeline(&fakeSessions{session: session}, store, &fakeAudioRepo{}, &fakeTranscriptRepo{}, &fakeCodec{fail: true}, fakeObjects{})

	result, err := pipeline.Finalize(context.Background(), session.GetID(), session.OwnerID)
	require.NoError(t, err)
	assert.Nil(t, result.AudioFile)
	require.NotNil(t, result.Transcript)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, sessionEntities.SessionCompleted, result.Session.Status)
}

func TestFinalizationPipeline_EmptyStoreSkipsAssembly(t *testing.T) {
	session := newTestSession(sessionEntities.SessionRecording)
	store := newFakeStore()

	pipeline := NewFinalizationPipeline(&fakeSessions{session: session}, store, &fakeAudioRepo{}, &fakeTranscriptRepo{}, &fakeCodec{}, fakeObjects{})

	result, err := pipeline.Finalize(context.Background(), session.GetID(), session.OwnerID)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Nil(t, result.AudioFile)
	assert.Nil(t, result.Transcript)
	assert.Equal(t, sessionEntities.SessionCompleted, result.Session.Status)
}
