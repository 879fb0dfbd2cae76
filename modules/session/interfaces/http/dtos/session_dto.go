package dtos

import (
	"time"

	"sessioncore/server/modules/session/domain/entities"
)

// CreateSessionRequest is the request body for POST /sessions.
type CreateSessionRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// UpdateSessionRequest is the request body for PATCH /sessions/{id}.
type UpdateSessionRequest struct {
	Title    *string                `json:"title,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SessionResponse is the JSON representation of a Session.
type SessionResponse struct {
	ID         string                 `json:"id"`
	OwnerID    string                 `json:"owner_id"`
	Title      string                 `json:"title"`
	Language   string                 `json:"language"`
	Status     entities.SessionStatus `json:"status"`
	TemplateID string                 `json:"template_id,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	EndedAt    *time.Time             `json:"ended_at,omitempty"`
	DurationS  int                    `json:"duration_s"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ToSessionResponse converts a Session entity to its response DTO.
func ToSessionResponse(s *entities.Session) SessionResponse {
	return SessionResponse{
		ID:         s.GetID(),
		OwnerID:    s.OwnerID,
		Title:      s.Title,
		Language:   s.Language,
		Status:     s.Status,
		TemplateID: s.TemplateID,
		CreatedAt:  s.GetCreatedAt(),
		UpdatedAt:  s.GetUpdatedAt(),
		EndedAt:    s.EndedAt,
		DurationS:  s.DurationS,
		Metadata:   s.Metadata,
	}
}

// SessionsListResponse wraps a page of sessions.
type SessionsListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int                `json:"total"`
}

// ToSessionsListResponse converts a slice of Session entities.
func ToSessionsListResponse(sessions []entities.Session) SessionsListResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, ToSessionResponse(&sessions[i]))
	}
	return SessionsListResponse{Sessions: out, Total: len(out)}
}
