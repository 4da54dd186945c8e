package v1

import (
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// requestOrigin captures the mutation origin from the request for the audit
// trail
func requestOrigin(c *gin.Context) *audit.RequestOrigin {
	origin := &audit.RequestOrigin{
		IPAddress: lo.ToPtr(c.ClientIP()),
	}
	if actorID := types.GetActorID(c.Request.Context()); actorID != "" {
		origin.ActorID = lo.ToPtr(actorID)
	}
	if userAgent := c.Request.UserAgent(); userAgent != "" {
		origin.UserAgent = lo.ToPtr(userAgent)
	}
	return origin
}
