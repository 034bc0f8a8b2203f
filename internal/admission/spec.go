package admission

import (
	"fmt"
	"time"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

const (
	// ProxyPort is the backend port the entry point forwards to: the
	// host-local reverse proxy, which in turn reaches the service
	// process on its loopback port.
	ProxyPort uint16 = 80

	HealthPath = "/health"

	probeInterval = 30 * time.Second
	probeTimeout  = 5 * time.Second

	// admitAfter/evictAfter are consecutive-probe thresholds: a
	// backend joins rotation after 2 successes and leaves after 3
	// failures.
	admitAfter uint8 = 2
	evictAfter uint8 = 3

	// affinityTTL is the life of a signed client-affinity token. The
	// backend keeps per-connection state in memory, so successive
	// connections inside this window must land on the same instance.
	affinityTTL = time.Hour

	deregistrationGrace = 30 * time.Second
)

// BuildEntryPoint produces the public entry point and its target
// binding for one environment. The entry point listens on plaintext
// transport and forwards everything to the single backend binding.
func BuildEntryPoint(env models.Environment, publicSegments []models.SegmentID, permissionGroup string) (models.EntryPointSpec, error) {
	if len(publicSegments) == 0 {
		return models.EntryPointSpec{}, fmt.Errorf("entry point needs at least one public segment")
	}
	spec := models.EntryPointSpec{
		Name:     fmt.Sprintf("websocketapi-%s-entry", env),
		Segments: publicSegments,
		Listeners: []models.Listener{
			{Port: 80, Proto: models.TCP},
		},
		PermissionGroup: permissionGroup,
		Binding: models.TargetBinding{
			Name:               fmt.Sprintf("websocketapi-%s-backends", env),
			Port:               ProxyPort,
			Proto:              models.TCP,
			ConnectionOriented: true,
			Health: models.HealthCheckPolicy{
				Path:       HealthPath,
				Interval:   probeInterval,
				Timeout:    probeTimeout,
				AdmitAfter: admitAfter,
				EvictAfter: evictAfter,
			},
			Stickiness: models.StickinessPolicy{
				Enabled: true,
				TTL:     affinityTTL,
			},
			DeregistrationGrace: deregistrationGrace,
		},
	}
	if err := spec.Binding.Validate(); err != nil {
		return models.EntryPointSpec{}, err
	}
	return spec, nil
}
