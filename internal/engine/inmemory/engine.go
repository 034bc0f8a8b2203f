package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/websocket-infra/internal/engine"
	"github.com/Sh00ty/websocket-infra/internal/models"
)

var _ engine.Engine = (*Engine)(nil)

// Engine is the in-process reference engine used by tests and dev
// runs. It creates nothing real: it checks that the plan is applied in
// a dependency-respecting order and hands back deterministic external
// identifiers, which is exactly the contract the composition side
// needs to be tested against.
type Engine struct {
	guard    sync.Mutex
	networks map[string]models.NetworkID
	applied  map[models.ResourceID]string
}

func New() *Engine {
	return &Engine{
		networks: make(map[string]models.NetworkID),
		applied:  make(map[models.ResourceID]string),
	}
}

// RegisterNetwork seeds an adoptable network, as if provisioned by an
// earlier run.
func (e *Engine) RegisterNetwork(externalID string, id models.NetworkID) {
	e.guard.Lock()
	defer e.guard.Unlock()
	e.networks[externalID] = id
}

func (e *Engine) ResolveNetwork(ctx context.Context, externalID string) (models.NetworkID, error) {
	e.guard.Lock()
	defer e.guard.Unlock()
	id, ok := e.networks[externalID]
	if !ok {
		return "", fmt.Errorf("network %s not found", externalID)
	}
	return id, nil
}

func (e *Engine) Apply(ctx context.Context, g models.Graph, plan models.Plan) (models.Applied, error) {
	e.guard.Lock()
	defer e.guard.Unlock()

	applied := models.Applied{
		IDs:       make(map[models.ResourceID]string, len(plan.Steps)),
		Addresses: make(map[models.ResourceID]string),
	}
	for position, step := range plan.Steps {
		res, ok := g.Resource(step.Resource)
		if !ok {
			return models.Applied{}, fmt.Errorf("plan step %s not present in graph", step.Resource)
		}
		for _, dep := range res.DependsOn {
			if _, done := applied.IDs[dep]; !done {
				return models.Applied{}, fmt.Errorf(
					"resource %s applied before its dependency %s", res.ID, dep)
			}
		}
		externalID := fmt.Sprintf("%s-%06d", res.Kind, position)
		if network, isNetwork := res.Spec.(models.Network); isNetwork && network.External {
			externalID = network.ExternalID
		}
		applied.IDs[res.ID] = externalID
		e.applied[res.ID] = externalID

		if res.Kind == models.KindEntryPoint {
			if spec, isEntry := res.Spec.(models.EntryPointSpec); isEntry {
				applied.Addresses[res.ID] = fmt.Sprintf("%s.lb.internal", spec.Name)
			}
		}
		log.Debug().Msgf("applied %s as %s", res.ID, externalID)
	}
	return applied, nil
}
