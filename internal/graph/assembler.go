package graph

import (
	"context"
	"fmt"

	"github.com/Sh00ty/websocket-infra/internal/admission"
	"github.com/Sh00ty/websocket-infra/internal/bootstrap"
	"github.com/Sh00ty/websocket-infra/internal/models"
	"github.com/Sh00ty/websocket-infra/internal/topology"
)

// DiscoveryTagKey/value form the fixed label the external deployment
// pipeline uses to locate the compute instance without tracking its
// identifier.
const DiscoveryTagKey = "deploy-target"

func discoveryTagValue(env models.Environment) string {
	return fmt.Sprintf("websocketapi-%s", env)
}

type Options struct {
	// ExistingNetworkID adopts an already provisioned network instead
	// of declaring one. The supplied network must already satisfy the
	// public/private segment layout; only existence is checked.
	ExistingNetworkID string
}

// Compose is the single composition point: it evaluates the whole
// resource graph for one environment. It is deterministic and
// side-effect-free apart from the optional external-network lookup;
// evaluating it twice with the same inputs yields an identical graph.
func Compose(ctx context.Context, env models.Environment, opts Options, resolver topology.NetworkResolver) (models.Graph, error) {
	params := models.ParamsFor(env)

	var (
		network models.Network
		err     error
	)
	if opts.ExistingNetworkID != "" {
		network, err = topology.Resolve(ctx, resolver, env, opts.ExistingNetworkID)
	} else {
		network, err = topology.Build(env, params.AddressSpace)
	}
	if err != nil {
		return models.Graph{}, err
	}

	entryGroup, serviceGroup := topology.PermissionGroups(env, admission.ProxyPort)

	storeSpec := models.ArtifactStoreSpec{
		Name:              fmt.Sprintf("websocketapi-artifacts-%s", env),
		Versioned:         true,
		PublicReadBlocked: true,
		ReaderIdentity:    fmt.Sprintf("websocketapi-%s-host", env),
		WriterIdentity:    fmt.Sprintf("websocketapi-%s-pipeline", env),
	}

	// Exactly two grants, least-privilege: remote sessions and store
	// reads. No write, delete or broader-service access. A monitoring
	// agent grant may join here if the ops tooling ever needs it.
	identity := models.Identity{
		Name: storeSpec.ReaderIdentity,
		Grants: []models.Grant{
			{Kind: models.GrantRemoteSession, Resource: "host"},
			{Kind: models.GrantStoreRead, Resource: storeSpec.Name},
		},
	}

	script, err := bootstrap.NewGenerator().Script(env)
	if err != nil {
		return models.Graph{}, err
	}

	privateSegments, publicSegments := segmentIDs(env, network)

	compute := models.ComputeSpec{
		Name:            fmt.Sprintf("websocketapi-%s", env),
		Segment:         privateSegments[0],
		InstanceClass:   params.InstanceClass,
		MachineImage:    params.MachineImage,
		PermissionGroup: serviceGroup.Name,
		Identity:        identity,
		DiscoveryTag: models.Tag{
			Key:   DiscoveryTagKey,
			Value: discoveryTagValue(env),
		},
		UserData: script,
	}
	if err := compute.Validate(); err != nil {
		return models.Graph{}, err
	}

	entry, err := admission.BuildEntryPoint(env, publicSegments, entryGroup.Name)
	if err != nil {
		return models.Graph{}, err
	}
	entry.Binding.Target = compute.Name

	g := models.Graph{Environment: env}
	assembleResources(&g, network, entryGroup, serviceGroup, storeSpec, identity, compute, entry)
	if err := g.Validate(); err != nil {
		return models.Graph{}, fmt.Errorf("failed to assemble graph: %w", err)
	}
	return g, nil
}

// segmentIDs names the private and public segments the compute and
// entry resources attach to. For an adopted external network the names
// are conventional: the caller guaranteed the layout exists.
func segmentIDs(env models.Environment, network models.Network) (private, public []models.SegmentID) {
	if !network.External {
		for _, seg := range network.Segments {
			if seg.Kind == models.SegmentPrivate {
				private = append(private, seg.ID)
			} else {
				public = append(public, seg.ID)
			}
		}
		return private, public
	}
	name := fmt.Sprintf("websocketapi-%s", env)
	for _, domain := range []string{"a", "b"} {
		private = append(private, models.SegmentID(fmt.Sprintf("%s-private-%s", name, domain)))
		public = append(public, models.SegmentID(fmt.Sprintf("%s-public-%s", name, domain)))
	}
	return private, public
}

func assembleResources(
	g *models.Graph,
	network models.Network,
	entryGroup, serviceGroup models.PermissionGroup,
	store models.ArtifactStoreSpec,
	identity models.Identity,
	compute models.ComputeSpec,
	entry models.EntryPointSpec,
) {
	networkID := resourceID(models.KindNetwork, network.Name)
	add := func(res models.Resource) { g.Resources = append(g.Resources, res) }

	add(models.Resource{ID: networkID, Kind: models.KindNetwork, Spec: network})

	segmentRefs := make(map[models.SegmentID]models.ResourceID)
	if !network.External {
		for _, seg := range network.Segments {
			id := resourceID(models.KindSegment, string(seg.ID))
			segmentRefs[seg.ID] = id
			add(models.Resource{
				ID:        id,
				Kind:      models.KindSegment,
				DependsOn: []models.ResourceID{networkID},
				Spec:      seg,
			})
		}
		for _, gw := range network.Gateways {
			add(models.Resource{
				ID:        resourceID(models.KindEgressGateway, gw.Name),
				Kind:      models.KindEgressGateway,
				DependsOn: []models.ResourceID{networkID, segmentRefs[gw.PublicSegment]},
				Spec:      gw,
			})
		}
	}

	entryGroupID := resourceID(models.KindPermissionGroup, entryGroup.Name)
	add(models.Resource{
		ID:        entryGroupID,
		Kind:      models.KindPermissionGroup,
		DependsOn: []models.ResourceID{networkID},
		Spec:      entryGroup,
	})
	serviceGroupID := resourceID(models.KindPermissionGroup, serviceGroup.Name)
	add(models.Resource{
		ID:   serviceGroupID,
		Kind: models.KindPermissionGroup,
		// The service group's single inbound edge names the entry
		// group as its source identity.
		DependsOn: []models.ResourceID{networkID, entryGroupID},
		Spec:      serviceGroup,
	})

	storeID := resourceID(models.KindArtifactStore, store.Name)
	add(models.Resource{ID: storeID, Kind: models.KindArtifactStore, Spec: store})

	identityID := resourceID(models.KindIdentity, identity.Name)
	add(models.Resource{
		ID:        identityID,
		Kind:      models.KindIdentity,
		DependsOn: []models.ResourceID{storeID},
		Spec:      identity,
	})

	computeID := resourceID(models.KindCompute, compute.Name)
	computeDeps := []models.ResourceID{networkID, serviceGroupID, identityID}
	if ref, ok := segmentRefs[compute.Segment]; ok {
		computeDeps = append(computeDeps, ref)
	}
	add(models.Resource{
		ID:        computeID,
		Kind:      models.KindCompute,
		DependsOn: computeDeps,
		Spec:      compute,
	})

	entryID := resourceID(models.KindEntryPoint, entry.Name)
	entryDeps := []models.ResourceID{networkID, entryGroupID}
	for _, seg := range entry.Segments {
		if ref, ok := segmentRefs[seg]; ok {
			entryDeps = append(entryDeps, ref)
		}
	}
	add(models.Resource{
		ID:        entryID,
		Kind:      models.KindEntryPoint,
		DependsOn: entryDeps,
		Spec:      entry,
	})

	// The binding cannot exist before both of its ends do.
	add(models.Resource{
		ID:        resourceID(models.KindBinding, entry.Binding.Name),
		Kind:      models.KindBinding,
		DependsOn: []models.ResourceID{entryID, computeID},
		Spec:      entry.Binding,
	})
}

func resourceID(kind models.ResourceKind, name string) models.ResourceID {
	return models.ResourceID(fmt.Sprintf("%s/%s", kind, name))
}

// Outputs assembles the published output set from the applied graph.
// These named values are the sole downstream contract.
func Outputs(g models.Graph, applied models.Applied) (models.OutputSet, error) {
	var (
		networkRef models.ResourceID
		storeRef   models.ResourceID
		computeRef models.ResourceID
		entryRef   models.ResourceID
		tagValue   string
	)
	for _, res := range g.Resources {
		switch res.Kind {
		case models.KindNetwork:
			networkRef = res.ID
		case models.KindArtifactStore:
			storeRef = res.ID
		case models.KindCompute:
			computeRef = res.ID
			if spec, ok := res.Spec.(models.ComputeSpec); ok {
				tagValue = spec.DiscoveryTag.Value
			}
		case models.KindEntryPoint:
			entryRef = res.ID
		}
	}

	entryAddr, ok := applied.Addresses[entryRef]
	if !ok {
		return models.OutputSet{}, fmt.Errorf("entry point %s has no applied address", entryRef)
	}
	outputs := models.OutputSet{
		EntryPointAddress: entryAddr,
		WebSocketURL:      fmt.Sprintf("ws://%s/ws", entryAddr),
		HealthCheckURL:    fmt.Sprintf("http://%s/health", entryAddr),
		ArtifactStoreID:   applied.IDs[storeRef],
		ComputeInstanceID: applied.IDs[computeRef],
		DiscoveryTag:      tagValue,
		NetworkID:         applied.IDs[networkRef],
	}
	if err := outputs.Validate(); err != nil {
		return models.OutputSet{}, fmt.Errorf("failed to assemble output set: %w", err)
	}
	return outputs, nil
}
