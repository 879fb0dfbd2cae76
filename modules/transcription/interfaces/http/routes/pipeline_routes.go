package routes

import (
	"github.com/gin-gonic/gin"

	"sessioncore/server/modules/transcription/interfaces/http/handlers"
)

// PipelineRoutes wires the finalize/retranscribe trigger endpoints onto the
// sessions resource (spec §4.D, §4.E).
type PipelineRoutes struct {
	handlers *handlers.PipelineHandlers
}

// NewPipelineRoutes constructs PipelineRoutes.
func NewPipelineRoutes(handlers *handlers.PipelineHandlers) *PipelineRoutes {
	return &PipelineRoutes{handlers: handlers}
}

// Setup registers pipeline routes under a "/sessions" subgroup of group,
// mirroring session.SessionRoutes so both land on the same resource path.
func (r *PipelineRoutes) Setup(group *gin.RouterGroup) {
	sessions := group.Group("/sessions")
	{
		sessions.POST("/:id/finalize", r.handlers.Finalize)
		sessions.POST("/:id/retranscribe", r.handlers.Retranscribe)
	}
}
