package topology

import (
	"context"
	"fmt"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// NetworkResolver looks an existing network up by its external
// identifier. Implemented by the provisioning engine.
type NetworkResolver interface {
	ResolveNetwork(ctx context.Context, externalID string) (models.NetworkID, error)
}

// Resolve adopts an externally supplied network instead of building
// one. No structural changes and no validation beyond existence are
// performed: the caller guarantees the network already satisfies the
// two-segment layout. A failed lookup is fatal to the provisioning run.
func Resolve(ctx context.Context, resolver NetworkResolver, env models.Environment, externalID string) (models.Network, error) {
	id, err := resolver.ResolveNetwork(ctx, externalID)
	if err != nil {
		return models.Network{}, fmt.Errorf("failed to resolve existing network %s: %w", externalID, err)
	}
	return models.Network{
		Name:       fmt.Sprintf("websocketapi-%s", env),
		External:   true,
		ExternalID: string(id),
	}, nil
}
