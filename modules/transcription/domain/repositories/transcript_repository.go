package repositories

import (
	"context"

	"sessioncore/server/modules/transcription/domain/entities"
)

// TranscriptRepository persists Transcript aggregates. Create replaces any
// existing transcript for the session atomically — there is always at most
// one current transcript per session (spec §3: "E replaces the current
// transcript atomically; D creates the initial one").
type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entities.Transcript) error
	FindBySessionID(ctx context.Context, sessionID string) (*entities.Transcript, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// AudioFileRepository persists AudioFile rows.
type AudioFileRepository interface {
	Create(ctx context.Context, file *entities.AudioFile) error
	FindBySessionID(ctx context.Context, sessionID string) ([]entities.AudioFile, error)
	FindCompletedBySessionID(ctx context.Context, sessionID string) (*entities.AudioFile, error)
}
