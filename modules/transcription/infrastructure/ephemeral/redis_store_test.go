package ephemeral

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncore/server/modules/transcription/domain/entities"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, 24*time.Hour)
}

func TestAppendTranscriptionPreservesChronologicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sessionID := "sess-1"

	segs := []entities.TranscriptionSegment{
		entities.NewTranscriptionSegment(0, "Speaker 1", 0, 2, "a", 0.9, true),
		entities.NewTranscriptionSegment(1, "Speaker 1", 2, 4, "b", 0.9, true),
		entities.NewTranscriptionSegment(2, "Speaker 1", 4, 6, "c", 0.9, true),
	}

	for _, seg := range segs {
		require.NoError(t, store.AppendTranscription(ctx, sessionID, seg))
	}

	out, err := store.ListTranscriptions(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, "b", out[1].Text)
	assert.Equal(t, "c", out[2].Text)
}

func TestClearTranscriptionsIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ClearTranscriptions(ctx, "sess-2"))
	require.NoError(t, store.ClearTranscriptions(ctx, "sess-2"))

	out, err := store.ListTranscriptions(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAudioAppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sessionID := "sess-3"

	chunk1 := entities.AudioChunk{PCM: []int16{1, 2, 3}, SampleRateHz: 24000, DurationS: 2}
	chunk2 := entities.AudioChunk{PCM: []int16{4, 5, 6}, SampleRateHz: 24000, DurationS: 2}

	require.NoError(t, store.AppendAudio(ctx, sessionID, chunk1))
	require.NoError(t, store.AppendAudio(ctx, sessionID, chunk2))

	out, err := store.ListAudio(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []int16{1, 2, 3}, out[0].PCM)
	assert.Equal(t, []int16{4, 5, 6}, out[1].PCM)
}

func TestCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CacheSet(ctx, "k", "v", 60))
	val, ok, err := store.CacheGet(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, store.CacheDelete(ctx, "k"))
	_, ok, err = store.CacheGet(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetStateAndGetState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetState(ctx, "sess-4", map[string]string{"phase": "recording"}))
	state, err := store.GetState(ctx, "sess-4")
	require.NoError(t, err)
	assert.Equal(t, "recording", state["phase"])
}
