package graph

import (
	"fmt"
	"sort"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// BuildPlan orders the graph into an explicit dependency-ordered build
// plan. The order is derived from declared references only, never from
// declaration order, and ties break lexicographically so the plan is
// reproducible independent of the provisioning engine's own inference.
func BuildPlan(g models.Graph) (models.Plan, error) {
	if err := g.Validate(); err != nil {
		return models.Plan{}, err
	}

	resources := make(map[models.ResourceID]models.Resource, len(g.Resources))
	inDegree := make(map[models.ResourceID]int, len(g.Resources))
	dependents := make(map[models.ResourceID][]models.ResourceID, len(g.Resources))
	for _, res := range g.Resources {
		resources[res.ID] = res
		inDegree[res.ID] = len(res.DependsOn)
		for _, dep := range res.DependsOn {
			dependents[dep] = append(dependents[dep], res.ID)
		}
	}

	ready := make([]models.ResourceID, 0, len(resources))
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}
	sortIDs(ready)

	steps := make([]models.PlanStep, 0, len(resources))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		steps = append(steps, models.PlanStep{
			Resource: id,
			Kind:     resources[id].Kind,
		})
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
				sortIDs(ready)
			}
		}
	}

	if len(steps) != len(resources) {
		return models.Plan{}, fmt.Errorf("resource graph contains a cycle")
	}
	return models.Plan{
		Environment: g.Environment,
		Steps:       steps,
	}, nil
}

func sortIDs(ids []models.ResourceID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
