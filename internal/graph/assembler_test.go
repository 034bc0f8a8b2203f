package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/Sh00ty/websocket-infra/internal/engine/inmemory"
	"github.com/Sh00ty/websocket-infra/internal/models"
)

func composeDev(t *testing.T) models.Graph {
	t.Helper()
	g, err := Compose(context.Background(), models.EnvDev, Options{}, inmemory.New())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	return g
}

func findByKind(g models.Graph, kind models.ResourceKind) []models.Resource {
	var result []models.Resource
	for _, res := range g.Resources {
		if res.Kind == kind {
			result = append(result, res)
		}
	}
	return result
}

func TestComposeDeterministic(t *testing.T) {
	for _, env := range []models.Environment{models.EnvDev, models.EnvProd} {
		compose := func() string {
			g, err := Compose(context.Background(), env, Options{}, inmemory.New())
			if err != nil {
				t.Fatalf("Compose failed: %v", err)
			}
			fp, err := Fingerprint(g)
			if err != nil {
				t.Fatalf("Fingerprint failed: %v", err)
			}
			return fp
		}
		if first, second := compose(), compose(); first != second {
			t.Fatalf("%s fingerprints differ across identical composes: %s vs %s", env, first, second)
		}
	}
}

func TestComposeResourceSet(t *testing.T) {
	g := composeDev(t)
	counts := map[models.ResourceKind]int{}
	for _, res := range g.Resources {
		counts[res.Kind]++
	}
	want := map[models.ResourceKind]int{
		models.KindNetwork:         1,
		models.KindSegment:         4,
		models.KindEgressGateway:   2,
		models.KindPermissionGroup: 2,
		models.KindArtifactStore:   1,
		models.KindIdentity:        1,
		models.KindCompute:         1,
		models.KindEntryPoint:      1,
		models.KindBinding:         1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("graph has %d %s resources, want %d", counts[kind], kind, n)
		}
	}
}

func TestComposeIdentityGrants(t *testing.T) {
	g := composeDev(t)
	identities := findByKind(g, models.KindIdentity)
	if len(identities) != 1 {
		t.Fatalf("got %d identities, want 1", len(identities))
	}
	identity, ok := identities[0].Spec.(models.Identity)
	if !ok {
		t.Fatalf("identity spec has type %T", identities[0].Spec)
	}
	if len(identity.Grants) != 2 {
		t.Fatalf("identity carries %d grants, want exactly 2", len(identity.Grants))
	}
	kinds := map[models.GrantKind]bool{}
	for _, grant := range identity.Grants {
		kinds[grant.Kind] = true
	}
	if !kinds[models.GrantRemoteSession] || !kinds[models.GrantStoreRead] {
		t.Errorf("got grant kinds %v, want remote-session and store read only", kinds)
	}
}

func TestComposeComputePlacement(t *testing.T) {
	g := composeDev(t)
	computes := findByKind(g, models.KindCompute)
	if len(computes) != 1 {
		t.Fatalf("got %d compute resources, want 1", len(computes))
	}
	spec, ok := computes[0].Spec.(models.ComputeSpec)
	if !ok {
		t.Fatalf("compute spec has type %T", computes[0].Spec)
	}
	if !strings.Contains(string(spec.Segment), "private") {
		t.Errorf("compute placed in %s, must live in a private segment", spec.Segment)
	}
	if spec.DiscoveryTag.Key != DiscoveryTagKey || spec.DiscoveryTag.Value != "websocketapi-dev" {
		t.Errorf("got discovery tag %+v", spec.DiscoveryTag)
	}
	if spec.UserData == "" {
		t.Error("compute must carry the bootstrap script")
	}
}

func TestComposeExternalNetwork(t *testing.T) {
	eng := inmemory.New()
	eng.RegisterNetwork("net-123", "net-123")

	g, err := Compose(context.Background(), models.EnvDev, Options{ExistingNetworkID: "net-123"}, eng)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	networks := findByKind(g, models.KindNetwork)
	if len(networks) != 1 {
		t.Fatalf("got %d networks, want 1", len(networks))
	}
	network, ok := networks[0].Spec.(models.Network)
	if !ok || !network.External {
		t.Fatal("adopted network must be marked external")
	}
	if len(findByKind(g, models.KindSegment)) != 0 {
		t.Error("adopted network must not declare segment resources")
	}
	if len(findByKind(g, models.KindEgressGateway)) != 0 {
		t.Error("adopted network must not declare egress gateways")
	}
}

func TestComposeUnknownExternalNetworkFails(t *testing.T) {
	_, err := Compose(context.Background(), models.EnvDev, Options{ExistingNetworkID: "net-404"}, inmemory.New())
	if err == nil {
		t.Fatal("compose must fail when the supplied network does not exist")
	}
}

func TestOutputsFromAppliedGraph(t *testing.T) {
	g := composeDev(t)
	plan, err := BuildPlan(g)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	eng := inmemory.New()
	applied, err := eng.Apply(context.Background(), g, plan)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	outputs, err := Outputs(g, applied)
	if err != nil {
		t.Fatalf("Outputs failed: %v", err)
	}
	if err := outputs.Validate(); err != nil {
		t.Fatalf("output set incomplete: %v", err)
	}
	if !strings.HasPrefix(outputs.WebSocketURL, "ws://") || !strings.HasSuffix(outputs.WebSocketURL, "/ws") {
		t.Errorf("got websocket url %q", outputs.WebSocketURL)
	}
	if !strings.HasSuffix(outputs.HealthCheckURL, "/health") {
		t.Errorf("got health check url %q", outputs.HealthCheckURL)
	}
	if outputs.DiscoveryTag != "websocketapi-dev" {
		t.Errorf("got discovery tag %q", outputs.DiscoveryTag)
	}
}
