package routes

import (
	"github.com/gin-gonic/gin"

	"sessioncore/server/modules/session/interfaces/http/handlers"
)

// SessionRoutes wires the Session Registry HTTP surface. Authentication
// itself is out of scope (spec §1); routes are registered under whatever
// group the caller has already attached its auth middleware to.
type SessionRoutes struct {
	handlers *handlers.SessionHandlers
}

// NewSessionRoutes constructs SessionRoutes.
func NewSessionRoutes(handlers *handlers.SessionHandlers) *SessionRoutes {
	return &SessionRoutes{handlers: handlers}
}

// Setup registers session routes on group.
func (r *SessionRoutes) Setup(group *gin.RouterGroup) {
	sessions := group.Group("/sessions")
	{
		sessions.POST("", r.handlers.CreateSession)
		sessions.GET("", r.handlers.ListSessions)
		sessions.GET("/:id", r.handlers.GetSession)
		sessions.PATCH("/:id", r.handlers.UpdateSession)
		sessions.DELETE("/:id", r.handlers.DeleteSession)
		sessions.PUT("/:id/template", r.handlers.UpdateTemplate)
	}
}
