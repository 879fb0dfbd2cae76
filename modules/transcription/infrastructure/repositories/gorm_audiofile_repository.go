package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sessioncore/server/modules/transcription/domain/entities"
	"sessioncore/server/seedwork/domain"
)

// GormAudioFileRepository is the Postgres-backed AudioFileRepository.
type GormAudioFileRepository struct {
	db *gorm.DB
}

// NewGormAudioFileRepository constructs a GormAudioFileRepository.
func NewGormAudioFileRepository(db *gorm.DB) *GormAudioFileRepository {
	return &GormAudioFileRepository{db: db}
}

func (r *GormAudioFileRepository) Create(ctx context.Context, file *entities.AudioFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *GormAudioFileRepository) FindBySessionID(ctx context.Context, sessionID string) ([]entities.AudioFile, error) {
	var files []entities.AudioFile
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at asc").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FindCompletedBySessionID returns the first AudioFile row for sessionID
// with upload_status = completed (spec §4.E step 2).
func (r *GormAudioFileRepository) FindCompletedBySessionID(ctx context.Context, sessionID string) (*entities.AudioFile, error) {
	var file entities.AudioFile
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND upload_status = ?", sessionID, entities.UploadStatusCompleted).
		Order("created_at asc").
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDomainError("AUDIO_NOT_FOUND", domain.ErrNotFound, "no completed audio file for session", err)
		}
		return nil, err
	}
	return &file, nil
}
