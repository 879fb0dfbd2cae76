package commands

import (
	"context"

	appServices "sessioncore/server/modules/transcription/application/services"
	"sessioncore/server/seedwork/infrastructure/events"
)

// FinalizeSessionCommand carries the Finalization Pipeline entry point
// (spec §4.D "finalize(session_id, caller_id)").
type FinalizeSessionCommand struct {
	SessionID string
	CallerID  string
}

// FinalizeSessionHandler dispatches finalize commands to the Finalization
// Pipeline and publishes a domain event on completion.
type FinalizeSessionHandler struct {
	pipeline *appServices.FinalizationPipeline
	eventBus events.EventBus
}

// NewFinalizeSessionHandler constructs a FinalizeSessionHandler.
func NewFinalizeSessionHandler(pipeline *appServices.FinalizationPipeline, eventBus events.EventBus) *FinalizeSessionHandler {
	return &FinalizeSessionHandler{pipeline: pipeline, eventBus: eventBus}
}

// Handle executes the finalize command.
func (h *FinalizeSessionHandler) Handle(ctx context.Context, cmd FinalizeSessionCommand) (*appServices.FinalizationResult, error) {
	result, err := h.pipeline.Finalize(ctx, cmd.SessionID, cmd.CallerID)
	if err != nil {
		return nil, err
	}

	h.eventBus.Publish("session.finalized", SessionFinalizedEvent{
		SessionID: cmd.SessionID,
		Warnings:  result.Warnings,
	})

	return result, nil
}

// SessionFinalizedEvent is published once finalization reaches a terminal
// session state, warnings included.
type SessionFinalizedEvent struct {
	SessionID string   `json:"session_id"`
	Warnings  []string `json:"warnings,omitempty"`
}
