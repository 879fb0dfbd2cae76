package repositories

import (
	"context"

	"sessioncore/server/modules/session/domain/entities"
)

// OwnerFilter is an explicit type for the owner-scoping argument on registry
// operations, replacing the spec's "owner argument of 'none'" sentinel
// string with a Go type: ForOwner(id) scopes to a single owner, Internal()
// skips the ownership filter entirely for an internal-service caller.
type OwnerFilter struct {
	ownerID  string
	internal bool
}

// ForOwner scopes an operation to a specific owner.
func ForOwner(ownerID string) OwnerFilter {
	return OwnerFilter{ownerID: ownerID}
}

// Internal marks an operation as made by an internal-service caller,
// bypassing ownership checks.
func Internal() OwnerFilter {
	return OwnerFilter{internal: true}
}

// IsInternal reports whether this filter bypasses ownership checks.
func (f OwnerFilter) IsInternal() bool { return f.internal }

// OwnerID returns the scoped owner id; only meaningful when !IsInternal().
func (f OwnerFilter) OwnerID() string { return f.ownerID }

// Allows reports whether this filter permits acting on a resource owned by
// ownerID.
func (f OwnerFilter) Allows(ownerID string) bool {
	return f.internal || f.ownerID == ownerID
}

// SessionRepository is the Session Registry's persistence contract
// (spec §4.B). Update loads the session, applies mutate under the
// repository's serialization guarantee, and persists the result; mutate is
// responsible for state-machine validation (see session/application
// /services.RegistryService).
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string, owner OwnerFilter) (*entities.Session, error)
	ListByOwner(ctx context.Context, owner OwnerFilter, limit, offset int) ([]entities.Session, error)
	Update(ctx context.Context, id string, owner OwnerFilter, mutate func(*entities.Session) error) (*entities.Session, error)
	Delete(ctx context.Context, id string, owner OwnerFilter) error
	UpdateTemplate(ctx context.Context, id, templateID string, owner OwnerFilter) error
}
