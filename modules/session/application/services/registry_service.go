package services

import (
	"context"
	"log"

	sessionEntities "sessioncore/server/modules/session/domain/entities"
	"sessioncore/server/modules/session/domain/repositories"
	audioRepos "sessioncore/server/modules/transcription/domain/repositories"
	"sessioncore/server/modules/transcription/domain/services"
	"sessioncore/server/seedwork/domain"
)

// RegistryService is the Session Registry (spec §4.B): authoritative
// per-session metadata, ownership mediation and the status state machine.
type RegistryService struct {
	sessions  repositories.SessionRepository
	audio     audioRepos.AudioFileRepository
	objects   services.ObjectStore
}

// NewRegistryService wires the Session Registry. audio/objects back the
// best-effort media cascade on Delete; either may be nil in deployments
// that don't need it (e.g. tests focused purely on session CRUD).
func NewRegistryService(sessions repositories.SessionRepository, audio audioRepos.AudioFileRepository, objects services.ObjectStore) *RegistryService {
	return &RegistryService{sessions: sessions, audio: audio, objects: objects}
}

// Create registers a new session owned by ownerID.
func (s *RegistryService) Create(ctx context.Context, ownerID, title, language string) (*sessionEntities.Session, error) {
	session := sessionEntities.NewSession(ownerID, title, language)
	if err := s.sessions.Create(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByID fetches a session, scoped by owner.
func (s *RegistryService) GetByID(ctx context.Context, id string, owner repositories.OwnerFilter) (*sessionEntities.Session, error) {
	return s.sessions.GetByID(ctx, id, owner)
}

// ListByOwner lists sessions for owner.
func (s *RegistryService) ListByOwner(ctx context.Context, owner repositories.OwnerFilter, limit, offset int) ([]sessionEntities.Session, error) {
	return s.sessions.ListByOwner(ctx, owner, limit, offset)
}

// TransitionTo moves session id to newStatus, enforcing the state machine
// from spec §3/§4.B. viaFinalization must be true only when called from the
// finalization pipeline (4.D), the only caller allowed to drive
// recording/paused → processing.
func (s *RegistryService) TransitionTo(ctx context.Context, id string, owner repositories.OwnerFilter, newStatus sessionEntities.SessionStatus, viaFinalization bool) (*sessionEntities.Session, error) {
	return s.sessions.Update(ctx, id, owner, func(session *sessionEntities.Session) error {
		if !sessionEntities.CanTransition(session.Status, newStatus, viaFinalization) {
			return domain.NewDomainError("INVALID_STATE_TRANSITION", domain.ErrInvalidStateTransition,
				"illegal session status transition from "+string(session.Status)+" to "+string(newStatus), nil)
		}
		session.Status = newStatus
		return nil
	})
}

// Update applies an arbitrary field mutation (title/metadata/etc.) without
// touching status.
func (s *RegistryService) Update(ctx context.Context, id string, owner repositories.OwnerFilter, mutate func(*sessionEntities.Session) error) (*sessionEntities.Session, error) {
	return s.sessions.Update(ctx, id, owner, mutate)
}

// UpdateTemplate rebinds a session's template_id.
func (s *RegistryService) UpdateTemplate(ctx context.Context, id, templateID string, owner repositories.OwnerFilter) error {
	return s.sessions.UpdateTemplate(ctx, id, templateID, owner)
}

// Delete removes the session row and performs a best-effort cascade delete
// of its referenced media objects from the object store. Media deletion
// failures are logged but never fail the session delete (spec §4.B).
func (s *RegistryService) Delete(ctx context.Context, id string, owner repositories.OwnerFilter) error {
	var paths []string
	if s.audio != nil {
		if files, err := s.audio.FindBySessionID(ctx, id); err == nil {
			for _, f := range files {
				paths = append(paths, f.StoragePath)
			}
		} else {
			log.Printf("session delete: failed to list audio files for cascade: %v", err)
		}
	}

	if err := s.sessions.Delete(ctx, id, owner); err != nil {
		return err
	}

	if s.objects != nil && len(paths) > 0 {
		for _, res := range s.objects.Delete(ctx, paths) {
			if res.Err != nil {
				log.Printf("session delete: failed to delete media object %s: %v", res.Path, res.Err)
			}
		}
	}
	return nil
}
