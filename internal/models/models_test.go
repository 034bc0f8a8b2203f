package models

import (
	"testing"
	"time"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{in: "dev", want: EnvDev},
		{in: "prod", want: EnvProd},
		{in: "", want: EnvDev},
		{in: "staging", wantErr: true},
		{in: "Prod", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseEnvironment(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEnvironment(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEnvironment(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEnvironment(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRuntimeMode(t *testing.T) {
	if got := EnvDev.RuntimeMode(); got != "Development" {
		t.Errorf("dev runtime mode = %q", got)
	}
	if got := EnvProd.RuntimeMode(); got != "Production" {
		t.Errorf("prod runtime mode = %q", got)
	}
}

func TestParamsForDisjointAddressSpaces(t *testing.T) {
	if ParamsFor(EnvDev).AddressSpace == ParamsFor(EnvProd).AddressSpace {
		t.Error("environments must not share an address space")
	}
}

func validBinding() TargetBinding {
	return TargetBinding{
		Name:               "backends",
		Port:               80,
		Proto:              TCP,
		ConnectionOriented: true,
		Health: HealthCheckPolicy{
			Path:       "/health",
			Interval:   30 * time.Second,
			Timeout:    5 * time.Second,
			AdmitAfter: 2,
			EvictAfter: 3,
		},
		Stickiness: StickinessPolicy{Enabled: true, TTL: time.Hour},
	}
}

func TestTargetBindingValidate(t *testing.T) {
	if err := validBinding().Validate(); err != nil {
		t.Fatalf("valid binding rejected: %v", err)
	}

	b := validBinding()
	b.Stickiness.Enabled = false
	if err := b.Validate(); err == nil {
		t.Fatal("connection-oriented binding without stickiness must be rejected")
	}

	b = validBinding()
	b.Health.Timeout = b.Health.Interval
	if err := b.Validate(); err == nil {
		t.Fatal("probe timeout equal to interval must be rejected")
	}

	b = validBinding()
	b.Health.AdmitAfter = 0
	if err := b.Validate(); err == nil {
		t.Fatal("zero admission threshold must be rejected")
	}
}

func TestGraphValidate(t *testing.T) {
	g := Graph{Resources: []Resource{
		{ID: "a", Kind: KindNetwork},
		{ID: "b", Kind: KindSegment, DependsOn: []ResourceID{"a"}},
	}}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid graph rejected: %v", err)
	}

	dup := Graph{Resources: []Resource{{ID: "a"}, {ID: "a"}}}
	if err := dup.Validate(); err == nil {
		t.Fatal("duplicate resource id must be rejected")
	}

	dangling := Graph{Resources: []Resource{{ID: "a", DependsOn: []ResourceID{"ghost"}}}}
	if err := dangling.Validate(); err == nil {
		t.Fatal("dependency on unknown resource must be rejected")
	}
}

func TestOutputSetValidate(t *testing.T) {
	full := OutputSet{
		EntryPointAddress: "addr",
		WebSocketURL:      "ws://addr/ws",
		HealthCheckURL:    "http://addr/health",
		ArtifactStoreID:   "store",
		ComputeInstanceID: "compute",
		DiscoveryTag:      "tag",
		NetworkID:         "net",
	}
	if err := full.Validate(); err != nil {
		t.Fatalf("complete output set rejected: %v", err)
	}

	missing := full
	missing.DiscoveryTag = ""
	if err := missing.Validate(); err == nil {
		t.Fatal("incomplete output set must be rejected")
	}
}
