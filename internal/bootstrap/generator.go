package bootstrap

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// Fixed host-side contract. The deployment pipeline and the reverse
// proxy both rely on these exact values.
const (
	UnitName    = "websocketapi"
	ServiceRoot = "/var/www/websocketapi"
	BinaryPath  = ServiceRoot + "/WebSocketApi.dll"
	ListenAddr  = "0.0.0.0:5000"
	LogPath     = "/var/log/user-data.log"

	// servicePort is the loopback port the reverse proxy forwards to;
	// it must match ListenAddr.
	servicePort = 5000

	// runtimeMajor is the pinned service runtime major version; the
	// bootstrap aborts when the installed runtime does not report it.
	runtimeMajor = "8"

	restartDelaySec = 10

	defaultReadTimeoutSec = 60
	// wsReadTimeoutSec must span an entire idle day: anything shorter
	// silently terminates idle long-lived connections mid-session.
	wsReadTimeoutSec = 86400
)

type Params struct {
	Environment models.Environment
	RuntimeMode string
}

// Step renders one independently testable slice of the host
// initialization sequence.
type Step interface {
	Name() string
	Render(params Params) (string, error)
}

// Generator produces the linear, fail-fast host initialization script
// embedded into the compute resource's startup input. It scaffolds
// directories, supervision and routing only; the service binary itself
// arrives later through the deployment pipeline.
type Generator struct {
	steps []Step
}

func NewGenerator() *Generator {
	return &Generator{
		steps: []Step{
			preambleStep{},
			packagesStep{},
			runtimeStep{},
			supervisionStep{},
			proxyStep{},
			activationStep{},
		},
	}
}

// Script renders the whole sequence for one environment. Rendering is
// deterministic: the same environment always yields identical bytes.
func (g *Generator) Script(env models.Environment) (string, error) {
	params := Params{
		Environment: env,
		RuntimeMode: env.RuntimeMode(),
	}
	parts := make([]string, 0, len(g.steps))
	for _, step := range g.steps {
		rendered, err := step.Render(params)
		if err != nil {
			return "", fmt.Errorf("failed to render bootstrap step %s: %w", step.Name(), err)
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n"), nil
}

// Steps exposes the sequence for per-step rendering tests.
func (g *Generator) Steps() []Step {
	return g.steps
}

func renderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
