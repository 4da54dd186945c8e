package testutil

import (
	"context"

	"github.com/condoflow/condoflow/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxOrgID, types.DefaultOrgID)
	ctx = context.WithValue(ctx, types.CtxActorID, "actor_test")
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
