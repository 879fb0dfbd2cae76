package commands

import (
	"context"

	taskEntities "sessioncore/server/modules/task/domain/entities"
	appServices "sessioncore/server/modules/transcription/application/services"
	"sessioncore/server/seedwork/infrastructure/events"
)

// RetranscribeSessionCommand carries the Retranscription Service entry
// point (spec §4.E "retranscribe(session_id, caller_id, language)").
type RetranscribeSessionCommand struct {
	SessionID string
	CallerID  string
	Language  string
}

type taskAllocator interface {
	Allocate(ctx context.Context, sessionID, ownerID string) (*taskEntities.Task, error)
}

// RetranscribeSessionHandler allocates a task and hands the reprocessing
// pipeline off to a background goroutine, returning the task id
// immediately (spec §4.E: "returns immediately with a freshly allocated
// task_id; processing continues asynchronously").
type RetranscribeSessionHandler struct {
	tasks    taskAllocator
	service  *appServices.RetranscriptionService
	eventBus events.EventBus
}

// NewRetranscribeSessionHandler constructs a RetranscribeSessionHandler.
func NewRetranscribeSessionHandler(tasks taskAllocator, service *appServices.RetranscriptionService, eventBus events.EventBus) *RetranscribeSessionHandler {
	return &RetranscribeSessionHandler{tasks: tasks, service: service, eventBus: eventBus}
}

// Handle allocates the task record and spawns the pipeline.
func (h *RetranscribeSessionHandler) Handle(ctx context.Context, cmd RetranscribeSessionCommand) (*taskEntities.Task, error) {
	task, err := h.tasks.Allocate(ctx, cmd.SessionID, cmd.CallerID)
	if err != nil {
		return nil, err
	}

	h.eventBus.Publish("session.retranscribe_started", RetranscribeStartedEvent{
		TaskID:    task.GetID(),
		SessionID: cmd.SessionID,
	})

	// The spawned task gets its own background context: the HTTP request
	// that triggered this returns before processing finishes, so it must
	// not be cancelled when that request's context is.
	go h.service.Run(context.Background(), task.GetID(), cmd.SessionID, cmd.CallerID, cmd.Language)

	return task, nil
}

// RetranscribeStartedEvent is published once the task record is allocated.
type RetranscribeStartedEvent struct {
	TaskID    string `json:"task_id"`
	SessionID string `json:"session_id"`
}
