package entities

import (
	"sessioncore/server/seedwork/domain"
)

// TranscriptStatus is the lifecycle status of a persisted Transcript.
type TranscriptStatus string

const (
	TranscriptCompleted TranscriptStatus = "completed"
)

// Transcript is the persisted transcript for a session. Finalization (4.D)
// creates the initial row; retranscription (4.E) replaces it atomically.
type Transcript struct {
	domain.BaseEntity
	SessionID string               `json:"session_id" gorm:"column:session_id;not null;index"`
	Content   string               `json:"content" gorm:"column:content;type:text"`
	Language  string               `json:"language" gorm:"column:language"`
	WordCount int                  `json:"word_count" gorm:"column:word_count"`
	ModelID   string               `json:"model_id" gorm:"column:model_id"`
	Status    TranscriptStatus     `json:"status" gorm:"column:status;not null"`
	Segments  []TranscriptionSegment `json:"segments" gorm:"foreignKey:TranscriptID"`
}

// NewTranscript builds a completed Transcript row from already-assembled
// content and segments. Both finalize (4.D) and retranscribe (4.E) build a
// transcript in one shot, there is no intermediate pending state the way
// the teacher's Transcription entity has.
func NewTranscript(sessionID, content, language, modelID string, segments []TranscriptionSegment) Transcript {
	t := Transcript{
		SessionID: sessionID,
		Content:   content,
		Language:  language,
		ModelID:   modelID,
		Status:    TranscriptCompleted,
		Segments:  segments,
		WordCount: wordCount(content),
	}
	t.SetID(domain.GenerateID())
	return t
}

// TableName sets the table name for GORM.
func (Transcript) TableName() string {
	return "transcripts"
}

// wordCount counts words delimited by spaces, tabs and newlines without
// allocating a slice.
func wordCount(text string) int {
	if text == "" {
		return 0
	}
	count := 0
	inWord := false
	for _, char := range text {
		if char == ' ' || char == '\t' || char == '\n' {
			inWord = false
		} else if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

// TranscriptionSegment is one time-stamped, speaker-attributed slice of a
// Transcript.
type TranscriptionSegment struct {
	domain.BaseEntity
	TranscriptID string  `json:"transcript_id" gorm:"column:transcript_id;index"`
	Index        int     `json:"index" gorm:"column:segment_index;not null"`
	Speaker      string  `json:"speaker" gorm:"column:speaker"`
	StartS       float64 `json:"start_s" gorm:"column:start_s;not null"`
	EndS         float64 `json:"end_s" gorm:"column:end_s;not null"`
	Text         string  `json:"text" gorm:"column:text;type:text;not null"`
	Confidence   float64 `json:"confidence" gorm:"column:confidence"`
	IsFinal      bool    `json:"is_final" gorm:"column:is_final"`
}

// NewTranscriptionSegment constructs a segment, validating the end_s >
// start_s invariant from the data model.
func NewTranscriptionSegment(index int, speaker string, startS, endS float64, text string, confidence float64, isFinal bool) TranscriptionSegment {
	seg := TranscriptionSegment{
		Index:      index,
		Speaker:    speaker,
		StartS:     startS,
		EndS:       endS,
		Text:       text,
		Confidence: confidence,
		IsFinal:    isFinal,
	}
	seg.SetID(domain.GenerateID())
	return seg
}

// Duration returns end_s - start_s.
func (s TranscriptionSegment) Duration() float64 {
	return s.EndS - s.StartS
}

// TableName sets the table name for GORM.
func (TranscriptionSegment) TableName() string {
	return "transcript_segments"
}
