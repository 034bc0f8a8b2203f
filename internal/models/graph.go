package models

import "fmt"

type ResourceID string

type ResourceKind string

const (
	KindNetwork         ResourceKind = "network"
	KindSegment         ResourceKind = "segment"
	KindEgressGateway   ResourceKind = "egress-gateway"
	KindPermissionGroup ResourceKind = "permission-group"
	KindArtifactStore   ResourceKind = "artifact-store"
	KindIdentity        ResourceKind = "identity"
	KindCompute         ResourceKind = "compute"
	KindEntryPoint      ResourceKind = "entry-point"
	KindBinding         ResourceKind = "binding"
)

// Resource is one node of the declared graph. DependsOn is explicit:
// the build plan is derived from it, never from declaration order.
type Resource struct {
	ID        ResourceID
	Kind      ResourceKind
	DependsOn []ResourceID
	Spec      any
}

type Graph struct {
	Environment Environment
	Resources   []Resource
}

func (g Graph) Resource(id ResourceID) (Resource, bool) {
	for _, res := range g.Resources {
		if res.ID == id {
			return res, true
		}
	}
	return Resource{}, false
}

func (g Graph) Validate() error {
	seen := make(map[ResourceID]struct{}, len(g.Resources))
	for _, res := range g.Resources {
		if _, dup := seen[res.ID]; dup {
			return fmt.Errorf("duplicate resource id %s", res.ID)
		}
		seen[res.ID] = struct{}{}
	}
	for _, res := range g.Resources {
		for _, dep := range res.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("resource %s depends on unknown resource %s", res.ID, dep)
			}
		}
	}
	return nil
}

// PlanStep is one create operation of the dependency-ordered build
// plan.
type PlanStep struct {
	Resource ResourceID
	Kind     ResourceKind
}

type Plan struct {
	Environment Environment
	Steps       []PlanStep
}

// Applied is the reconciliation engine's answer to a plan: the
// external identifier of every created resource, plus a reachable
// address for the ones that have one.
type Applied struct {
	IDs       map[ResourceID]string
	Addresses map[ResourceID]string
}

// Output names are the stable contract with the external deployment
// pipeline; nothing else is assumed stable across re-provisioning.
const (
	OutputEntryPointAddress = "entry_point_address"
	OutputWebSocketURL      = "websocket_url"
	OutputHealthCheckURL    = "health_check_url"
	OutputArtifactStoreID   = "artifact_store_id"
	OutputComputeInstanceID = "compute_instance_id"
	OutputDiscoveryTag      = "discovery_tag"
	OutputNetworkID         = "network_id"
)

type OutputSet struct {
	EntryPointAddress string
	WebSocketURL      string
	HealthCheckURL    string
	ArtifactStoreID   string
	ComputeInstanceID string
	DiscoveryTag      string
	NetworkID         string
}

func (o OutputSet) Named() map[string]string {
	return map[string]string{
		OutputEntryPointAddress: o.EntryPointAddress,
		OutputWebSocketURL:      o.WebSocketURL,
		OutputHealthCheckURL:    o.HealthCheckURL,
		OutputArtifactStoreID:   o.ArtifactStoreID,
		OutputComputeInstanceID: o.ComputeInstanceID,
		OutputDiscoveryTag:      o.DiscoveryTag,
		OutputNetworkID:         o.NetworkID,
	}
}

func (o OutputSet) Validate() error {
	for name, value := range o.Named() {
		if value == "" {
			return fmt.Errorf("output %s is empty", name)
		}
	}
	return nil
}
