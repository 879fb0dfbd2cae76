package services

import (
	"context"

	"sessioncore/server/modules/transcription/domain/entities"
)

// EphemeralStore is the TTL-scoped scratch space shared by the Realtime
// Ingest Adapter (4.C) and the Finalization Pipeline (4.D). It carries no
// durability guarantee: every writer must assume an entry can disappear
// after its TTL, and every append refreshes the TTL.
type EphemeralStore interface {
	AppendTranscription(ctx context.Context, sessionID string, segment entities.TranscriptionSegment) error
	ListTranscriptions(ctx context.Context, sessionID string) ([]entities.TranscriptionSegment, error)
	ClearTranscriptions(ctx context.Context, sessionID string) error

	AppendAudio(ctx context.Context, sessionID string, chunk entities.AudioChunk) error
	ListAudio(ctx context.Context, sessionID string) ([]entities.AudioChunk, error)
	ClearAudio(ctx context.Context, sessionID string) error

	SetState(ctx context.Context, sessionID string, kv map[string]string) error
	GetState(ctx context.Context, sessionID string) (map[string]string, error)

	CacheSet(ctx context.Context, key string, value string, ttlSeconds int) error
	CacheGet(ctx context.Context, key string) (string, bool, error)
	CacheDelete(ctx context.Context, key string) error
}
