package repositories

import (
	"context"

	"sessioncore/server/modules/task/domain/entities"
)

// TaskRepository persists Task records. Update enforces the terminal-state
// immutability invariant (spec §8) itself so every caller gets it for free:
// once a task is success/failed/cancelled, Update returns an
// invalid_state_transition domain error instead of applying mutate.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	FindByID(ctx context.Context, id string) (*entities.Task, error)
	Update(ctx context.Context, id string, mutate func(*entities.Task) error) (*entities.Task, error)
}
