package routes

import (
	"github.com/gin-gonic/gin"

	"sessioncore/server/modules/task/interfaces/http/handlers"
)

// TaskRoutes wires the Task status API (spec §6).
type TaskRoutes struct {
	handlers *handlers.TaskHandlers
}

// NewTaskRoutes constructs TaskRoutes.
func NewTaskRoutes(handlers *handlers.TaskHandlers) *TaskRoutes {
	return &TaskRoutes{handlers: handlers}
}

// Setup registers task routes on group.
func (r *TaskRoutes) Setup(group *gin.RouterGroup) {
	tasks := group.Group("/tasks")
	{
		tasks.GET("/:task_id", r.handlers.GetTask)
		tasks.POST("/:task_id/cancel", r.handlers.CancelTask)
	}
}
