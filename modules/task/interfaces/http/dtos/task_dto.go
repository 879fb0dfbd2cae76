package dtos

import (
	"time"

	"sessioncore/server/modules/task/domain/entities"
)

// TaskResponse is the JSON shape of the Task status API (spec §6).
type TaskResponse struct {
	TaskID    string             `json:"task_id"`
	Status    entities.TaskStatus `json:"status"`
	Progress  entities.Progress   `json:"progress"`
	Result    string              `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ToTaskResponse converts a Task entity to its response DTO.
func ToTaskResponse(t *entities.Task) TaskResponse {
	return TaskResponse{
		TaskID:    t.GetID(),
		Status:    t.Status,
		Progress:  t.Progress(),
		Result:    t.Result,
		Error:     t.Error,
		UpdatedAt: t.GetUpdatedAt(),
	}
}
