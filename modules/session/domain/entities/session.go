package entities

import (
	"time"

	"sessioncore/server/seedwork/domain"
)

// SessionStatus is the lifecycle status of a Session (spec §3).
type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionRecording  SessionStatus = "recording"
	SessionPaused     SessionStatus = "paused"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
	SessionArchived   SessionStatus = "archived"
)

// Session is a bounded interval of audio capture associated with a single
// owner (spec GLOSSARY).
type Session struct {
	domain.BaseEntity
	OwnerID    string                 `json:"owner_id" gorm:"column:owner_id;not null;index"`
	Title      string                 `json:"title" gorm:"column:title"`
	Language   string                 `json:"language" gorm:"column:language"`
	Status     SessionStatus          `json:"status" gorm:"column:status;not null"`
	TemplateID string                 `json:"template_id,omitempty" gorm:"column:template_id"`
	EndedAt    *time.Time             `json:"ended_at,omitempty" gorm:"column:ended_at"`
	DurationS  int                    `json:"duration_s" gorm:"column:duration_s"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb"`
}

// NewSession creates a new Session in the `created` status.
func NewSession(ownerID, title, language string) Session {
	s := Session{
		OwnerID:  ownerID,
		Title:    title,
		Language: language,
		Status:   SessionCreated,
		Metadata: make(map[string]interface{}),
	}
	s.SetID(domain.GenerateID())
	return s
}

// TableName sets the table name for GORM.
func (Session) TableName() string {
	return "sessions"
}

// IsOwnedBy reports whether ownerID may mutate this session.
func (s *Session) IsOwnedBy(ownerID string) bool {
	return s.OwnerID == ownerID
}

// legalTransitions encodes the partial order from spec §3:
// created → recording ⇌ paused → processing → completed;
// cancelled and archived are absorbing (no outgoing edges).
var legalTransitions = map[SessionStatus]map[SessionStatus]bool{
	SessionCreated: {
		SessionRecording: true,
		SessionCancelled: true,
		SessionArchived:  true,
	},
	SessionRecording: {
		SessionPaused:     true,
		SessionProcessing: true,
		SessionCancelled:  true,
		SessionArchived:   true,
	},
	SessionPaused: {
		SessionRecording:  true,
		SessionProcessing: true,
		SessionCancelled:  true,
		SessionArchived:   true,
	},
	SessionProcessing: {
		SessionCompleted: true,
		SessionCancelled: true,
		SessionArchived:  true,
	},
	SessionCompleted: {
		SessionArchived: true,
	},
	SessionCancelled: {},
	SessionArchived:  {},
}

// CanTransition reports whether moving from `from` to `to` is legal. Every
// edge into `processing` (from recording or paused) is only legal when
// viaFinalization is true (spec §4.B: "recording → processing is permitted
// only from the finalization path").
func CanTransition(from, to SessionStatus, viaFinalization bool) bool {
	if from == SessionProcessing && to == SessionCompleted {
		return true // permitted from both the finalization happy path and its error handler
	}
	if to == SessionProcessing && !viaFinalization {
		return false
	}
	allowed, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
