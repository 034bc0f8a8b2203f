package engine

import (
	"context"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// Engine is the external reconciliation engine seam: it turns a
// declared graph into live infrastructure. Plan/apply/rollback
// semantics, state tracking and retries all live behind it; the
// composition side only hands over a dependency-ordered plan.
type Engine interface {
	ResolveNetwork(ctx context.Context, externalID string) (models.NetworkID, error)
	Apply(ctx context.Context, g models.Graph, plan models.Plan) (models.Applied, error)
}
