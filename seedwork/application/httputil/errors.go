package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sessionRepos "sessioncore/server/modules/session/domain/repositories"
	"sessioncore/server/seedwork/domain"
)

// WriteError maps a domain error kind to its HTTP status equivalent
// (spec §7) and writes the JSON body. Unrecognized errors surface as 500.
func WriteError(c *gin.Context, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case domain.ErrNotFound:
		status = http.StatusNotFound
	case domain.ErrForbidden:
		status = http.StatusForbidden
	case domain.ErrInvalidInput:
		status = http.StatusBadRequest
	case domain.ErrInvalidStateTransition:
		status = http.StatusConflict
	case domain.ErrTransientStore, domain.ErrExternalUnavailable, domain.ErrTimeout, domain.ErrCodecFailure:
		status = http.StatusServiceUnavailable
	case domain.ErrCancelled:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// OwnerFilterFromContext builds the OwnerFilter for the current request:
// internal-service callers (flagged by InternalServiceAuth) bypass
// ownership; everyone else is scoped to the owner id attached to the
// context by the (out-of-scope) upstream auth middleware.
func OwnerFilterFromContext(c *gin.Context) sessionRepos.OwnerFilter {
	if internal, _ := c.Get("is_internal"); internal == true {
		return sessionRepos.Internal()
	}
	ownerID := c.GetString("owner_id")
	return sessionRepos.ForOwner(ownerID)
}
