package entities

import (
	"sessioncore/server/seedwork/domain"
)

// AudioFormat enumerates the persisted audio container formats.
type AudioFormat string

const (
	AudioFormatWAV AudioFormat = "wav"
	AudioFormatMP3 AudioFormat = "mp3"
)

// UploadStatus tracks the object-store upload lifecycle of an AudioFile.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusFailed    UploadStatus = "failed"
)

// AudioFile is the persisted record of a session's assembled media object.
// Created only by the finalization pipeline (4.D) or retranscription (4.E);
// never mutated after a successful upload.
type AudioFile struct {
	domain.BaseEntity
	SessionID        string       `json:"session_id" gorm:"column:session_id;not null;index"`
	OwnerID          string       `json:"owner_id" gorm:"column:owner_id;not null;index"`
	StoragePath      string       `json:"storage_path" gorm:"column:storage_path;not null"`
	PublicURL        string       `json:"public_url" gorm:"column:public_url"`
	SizeBytes        int64        `json:"size_bytes" gorm:"column:size_bytes"`
	DurationS        float64      `json:"duration_s" gorm:"column:duration_s"`
	Format           AudioFormat  `json:"format" gorm:"column:format;not null"`
	SampleRateHz     int          `json:"sample_rate_hz" gorm:"column:sample_rate_hz"`
	UploadStatus     UploadStatus `json:"upload_status" gorm:"column:upload_status;not null"`
	ProcessingStatus string       `json:"processing_status" gorm:"column:processing_status"`
}

// NewAudioFile builds an AudioFile row for a completed upload.
func NewAudioFile(sessionID, ownerID, storagePath, publicURL string, sizeBytes int64, durationS float64, format AudioFormat, sampleRateHz int) AudioFile {
	f := AudioFile{
		SessionID:        sessionID,
		OwnerID:          ownerID,
		StoragePath:      storagePath,
		PublicURL:        publicURL,
		SizeBytes:        sizeBytes,
		DurationS:        durationS,
		Format:           format,
		SampleRateHz:     sampleRateHz,
		UploadStatus:     UploadStatusCompleted,
		ProcessingStatus: "completed",
	}
	f.SetID(domain.GenerateID())
	return f
}

// TableName sets the table name for GORM.
func (AudioFile) TableName() string {
	return "audio_files"
}
