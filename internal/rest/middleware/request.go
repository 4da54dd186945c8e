package middleware

import (
	"github.com/condoflow/condoflow/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware assigns every request an ID, honoring one supplied by
// the caller
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = types.SetRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// ContextMiddleware threads the caller's organization and actor identity into
// the request context. Identity is always passed explicitly at this boundary;
// nothing downstream resolves an actor from global state.
func ContextMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	orgID := c.GetHeader(types.HeaderOrgID)
	if orgID == "" {
		orgID = types.DefaultOrgID
	}
	ctx = types.SetOrgID(ctx, orgID)

	if actorID := c.GetHeader(types.HeaderActorID); actorID != "" {
		ctx = types.SetActorID(ctx, actorID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
