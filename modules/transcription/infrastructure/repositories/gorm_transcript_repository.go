package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/seedwork/domain"
)

// GormTranscriptRepository is the Postgres-backed TranscriptRepository.
type GormTranscriptRepository struct {
	db *gorm.DB
}

// NewGormTranscriptRepository constructs a GormTranscriptRepository.
func NewGormTranscriptRepository(db *gorm.DB) *GormTranscriptRepository {
	return &GormTranscriptRepository{db: db}
}

// Create replaces any existing transcript for the session, atomically, with
// the one given (spec §3: "E replaces the current transcript atomically;
// D creates the initial one"). The delete-then-insert pair runs inside a
// single transaction so a crash between the two never leaves the session
// with two transcripts or none.
func (r *GormTranscriptRepository) Create(ctx context.Context, transcript *entities.Transcript) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transcript_id IN (?)",
			tx.Model(&entities.Transcript{}).Select("id").Where("session_id = ?", transcript.SessionID),
		).Delete(&entities.TranscriptionSegment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", transcript.SessionID).Delete(&entities.Transcript{}).Error; err != nil {
			return err
		}
		return tx.Create(transcript).Error
	})
}

func (r *GormTranscriptRepository) FindBySessionID(ctx context.Context, sessionID string) (*entities.Transcript, error) {
	var transcript entities.Transcript
	err := r.db.WithContext(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB { return db.Order("segment_index asc") }).
		Where("session_id = ?", sessionID).
		First(&transcript).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDomainError("TRANSCRIPT_NOT_FOUND", domain.ErrNotFound, "transcript not found", err)
		}
		return nil, err
	}
	return &transcript, nil
}

func (r *GormTranscriptRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transcript_id IN (?)",
			tx.Model(&entities.Transcript{}).Select("id").Where("session_id = ?", sessionID),
		).Delete(&entities.TranscriptionSegment{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).Delete(&entities.Transcript{}).Error
	})
}
