package services

import (
	"context"
	"encoding/json"

	"sessioncore/server/modules/task/domain/entities"
	"sessioncore/server/modules/task/domain/repositories"
	"sessioncore/server/seedwork/domain"
)

// Tracker is the Task Tracker half of 4.E: allocation, progress publication
// and terminal-state finalization of long-running retranscription work.
type Tracker struct {
	tasks repositories.TaskRepository
}

// NewTracker constructs a Tracker.
func NewTracker(tasks repositories.TaskRepository) *Tracker {
	return &Tracker{tasks: tasks}
}

// Allocate creates a fresh task in `pending` for sessionID, owned by ownerID.
func (t *Tracker) Allocate(ctx context.Context, sessionID, ownerID string) (*entities.Task, error) {
	task := entities.NewTask(sessionID, ownerID)
	if err := t.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Get returns the task record, for the status-polling API (spec §6).
func (t *Tracker) Get(ctx context.Context, id string) (*entities.Task, error) {
	return t.tasks.FindByID(ctx, id)
}

// Start transitions a task from pending to started.
func (t *Tracker) Start(ctx context.Context, id string) error {
	_, err := t.tasks.Update(ctx, id, func(task *entities.Task) error {
		task.Status = entities.TaskStarted
		return nil
	})
	return err
}

// Progress replaces the task's progress marker (spec §4.E: "each update
// replaces the previous state").
func (t *Tracker) Progress(ctx context.Context, id, step string, percent int) error {
	_, err := t.tasks.Update(ctx, id, func(task *entities.Task) error {
		task.Step = step
		task.Percent = percent
		return nil
	})
	return err
}

// Succeed finalizes a task as success with a JSON-encodable result payload.
func (t *Tracker) Succeed(ctx context.Context, id string, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = t.tasks.Update(ctx, id, func(task *entities.Task) error {
		task.Status = entities.TaskSuccess
		task.Step = "completed"
		task.Percent = 100
		task.Result = string(payload)
		return nil
	})
	return err
}

// Fail finalizes a task as failed with an error message.
func (t *Tracker) Fail(ctx context.Context, id, message string) error {
	_, err := t.tasks.Update(ctx, id, func(task *entities.Task) error {
		task.Status = entities.TaskFailed
		task.Error = message
		return nil
	})
	return err
}

// Cancel marks a pending or started task cancelled on behalf of ownerID.
// The executing pipeline discovers this by polling Get/IsCancelled between
// suspension points (spec §4.E).
func (t *Tracker) Cancel(ctx context.Context, id, ownerID string) error {
	task, err := t.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task.OwnerID != ownerID {
		return domain.NewDomainError("TASK_FORBIDDEN", domain.ErrForbidden, "task is not owned by caller", nil)
	}
	_, err = t.tasks.Update(ctx, id, func(task *entities.Task) error {
		task.Status = entities.TaskCancelled
		return nil
	})
	return err
}

// IsCancelled reports whether the task has moved to cancelled since it was
// started; the executor calls this at each suspension point in 4.E.
func (t *Tracker) IsCancelled(ctx context.Context, id string) (bool, error) {
	task, err := t.tasks.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return task.Status == entities.TaskCancelled, nil
}
