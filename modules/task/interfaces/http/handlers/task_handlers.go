package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sessioncore/server/modules/task/application/services"
	"sessioncore/server/modules/task/interfaces/http/dtos"
	"sessioncore/server/seedwork/application/httputil"
)

// TaskHandlers exposes the Task Tracker's polling API over HTTP.
type TaskHandlers struct {
	tracker *services.Tracker
}

// NewTaskHandlers constructs TaskHandlers.
func NewTaskHandlers(tracker *services.Tracker) *TaskHandlers {
	return &TaskHandlers{tracker: tracker}
}

// GetTask handles GET /tasks/{task_id}.
func (h *TaskHandlers) GetTask(c *gin.Context) {
	id := c.Param("task_id")
	task, err := h.tracker.Get(c.Request.Context(), id)
	if err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ToTaskResponse(task))
}

// CancelTask handles POST /tasks/{task_id}/cancel.
func (h *TaskHandlers) CancelTask(c *gin.Context) {
	id := c.Param("task_id")
	owner := httputil.OwnerFilterFromContext(c)
	if err := h.tracker.Cancel(c.Request.Context(), id, owner.OwnerID()); err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
