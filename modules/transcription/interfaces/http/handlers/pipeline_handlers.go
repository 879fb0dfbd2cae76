package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sessioncore/server/modules/transcription/application/commands"
	"sessioncore/server/modules/transcription/interfaces/http/dtos"
	"sessioncore/server/seedwork/application/httputil"
)

// PipelineHandlers exposes the finalize and retranscribe trigger endpoints
// (spec §4.D, §4.E). The owner is read from the request context, set by the
// (out-of-scope) upstream auth middleware via OwnerFilterFromContext.
type PipelineHandlers struct {
	finalize     *commands.FinalizeSessionHandler
	retranscribe *commands.RetranscribeSessionHandler
}

// NewPipelineHandlers constructs PipelineHandlers.
func NewPipelineHandlers(finalize *commands.FinalizeSessionHandler, retranscribe *commands.RetranscribeSessionHandler) *PipelineHandlers {
	return &PipelineHandlers{finalize: finalize, retranscribe: retranscribe}
}

// Finalize handles POST /sessions/:id/finalize.
func (h *PipelineHandlers) Finalize(c *gin.Context) {
	sessionID := c.Param("id")
	owner := httputil.OwnerFilterFromContext(c)

	result, err := h.finalize.Handle(c.Request.Context(), commands.FinalizeSessionCommand{
		SessionID: sessionID,
		CallerID:  owner.OwnerID(),
	})
	if err != nil {
		httputil.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dtos.FinalizeSessionResponse{
		SessionID: sessionID,
		Status:    string(result.Session.Status),
		Warnings:  result.Warnings,
	})
}

// Retranscribe handles POST /sessions/:id/retranscribe.
func (h *PipelineHandlers) Retranscribe(c *gin.Context) {
	sessionID := c.Param("id")
	owner := httputil.OwnerFilterFromContext(c)

	var req dtos.RetranscribeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.retranscribe.Handle(c.Request.Context(), commands.RetranscribeSessionCommand{
		SessionID: sessionID,
		CallerID:  owner.OwnerID(),
		Language:  req.Language,
	})
	if err != nil {
		httputil.WriteError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dtos.RetranscribeSessionResponse{TaskID: task.GetID()})
}
