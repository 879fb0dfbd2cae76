package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	sessionServices "sessioncore/server/modules/session/application/services"
	sessionEntities "sessioncore/server/modules/session/domain/entities"
	"sessioncore/server/modules/session/interfaces/http/dtos"
	"sessioncore/server/seedwork/application/httputil"
)

// SessionHandlers exposes the Session Registry over HTTP.
type SessionHandlers struct {
	registry *sessionServices.RegistryService
}

// NewSessionHandlers constructs SessionHandlers.
func NewSessionHandlers(registry *sessionServices.RegistryService) *SessionHandlers {
	return &SessionHandlers{registry: registry}
}

// CreateSession handles POST /sessions.
func (h *SessionHandlers) CreateSession(c *gin.Context) {
	var req dtos.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := httputil.OwnerFilterFromContext(c)
	session, err := h.registry.Create(c.Request.Context(), owner.OwnerID(), req.Title, req.Language)
	if err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dtos.ToSessionResponse(session))
}

// GetSession handles GET /sessions/{id}.
func (h *SessionHandlers) GetSession(c *gin.Context) {
	id := c.Param("id")
	owner := httputil.OwnerFilterFromContext(c)

	session, err := h.registry.GetByID(c.Request.Context(), id, owner)
	if err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ToSessionResponse(session))
}

// ListSessions handles GET /sessions.
func (h *SessionHandlers) ListSessions(c *gin.Context) {
	owner := httputil.OwnerFilterFromContext(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	sessions, err := h.registry.ListByOwner(c.Request.Context(), owner, limit, offset)
	if err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ToSessionsListResponse(sessions))
}

// UpdateSession handles PATCH /sessions/{id}.
func (h *SessionHandlers) UpdateSession(c *gin.Context) {
	id := c.Param("id")
	var req dtos.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := httputil.OwnerFilterFromContext(c)
	session, err := h.registry.Update(c.Request.Context(), id, owner, func(s *sessionEntities.Session) error {
		if req.Title != nil {
			s.Title = *req.Title
		}
		if req.Metadata != nil {
			s.Metadata = req.Metadata
		}
		return nil
	})
	if err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.ToSessionResponse(session))
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *SessionHandlers) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	owner := httputil.OwnerFilterFromContext(c)

	if err := h.registry.Delete(c.Request.Context(), id, owner); err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateTemplate handles PUT /sessions/{id}/template.
func (h *SessionHandlers) UpdateTemplate(c *gin.Context) {
	id := c.Param("id")
	var body struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := httputil.OwnerFilterFromContext(c)
	if err := h.registry.UpdateTemplate(c.Request.Context(), id, body.TemplateID, owner); err != nil {
		httputil.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
