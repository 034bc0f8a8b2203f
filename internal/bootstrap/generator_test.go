package bootstrap

import (
	"strings"
	"testing"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

func renderScript(t *testing.T, env models.Environment) string {
	t.Helper()
	script, err := NewGenerator().Script(env)
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	return script
}

func TestScriptDeterministic(t *testing.T) {
	for _, env := range []models.Environment{models.EnvDev, models.EnvProd} {
		if renderScript(t, env) != renderScript(t, env) {
			t.Fatalf("rendering for %s is not deterministic", env)
		}
	}
}

func TestScriptHostContract(t *testing.T) {
	for _, env := range []models.Environment{models.EnvDev, models.EnvProd} {
		script := renderScript(t, env)
		for _, want := range []string{
			"set -euo pipefail",
			"tee -a /var/log/user-data.log",
			"mkdir -p /var/www/websocketapi",
			"ExecStart=/usr/bin/dotnet /var/www/websocketapi/WebSocketApi.dll",
			"Restart=always",
			"RestartSec=10",
			"ASPNETCORE_URLS=http://0.0.0.0:5000",
			"proxy_read_timeout 86400",
			"aspnetcore-runtime-8.0",
			"dotnet --list-runtimes",
			"snap install amazon-ssm-agent",
		} {
			if !strings.Contains(script, want) {
				t.Errorf("%s script missing %q", env, want)
			}
		}
	}
}

func TestScriptRuntimeModePerEnvironment(t *testing.T) {
	dev := renderScript(t, models.EnvDev)
	if !strings.Contains(dev, "ASPNETCORE_ENVIRONMENT=Development") {
		t.Error("dev script must run the service in Development mode")
	}
	prod := renderScript(t, models.EnvProd)
	if !strings.Contains(prod, "ASPNETCORE_ENVIRONMENT=Production") {
		t.Error("prod script must run the service in Production mode")
	}
	if strings.Contains(prod, "Development") {
		t.Error("prod script leaks Development mode")
	}
}

func TestScriptProxyRoutes(t *testing.T) {
	script := renderScript(t, models.EnvProd)

	wsIdx := strings.Index(script, "location /ws {")
	if wsIdx < 0 {
		t.Fatal("script missing dedicated long-lived connection route")
	}
	wsBlock := script[wsIdx:]
	if end := strings.Index(wsBlock, "}"); end >= 0 {
		wsBlock = wsBlock[:end]
	}
	if !strings.Contains(wsBlock, "proxy_read_timeout 86400") {
		t.Error("long-lived route must keep idle connections for a full day")
	}
	if !strings.Contains(wsBlock, "proxy_set_header Upgrade $http_upgrade") {
		t.Error("long-lived route missing protocol upgrade headers")
	}

	if !strings.Contains(script, "proxy_read_timeout 60") {
		t.Error("catch-all route missing its read timeout")
	}

	healthIdx := strings.Index(script, "location /health {")
	if healthIdx < 0 {
		t.Fatal("script missing health route")
	}
	healthBlock := script[healthIdx:]
	if end := strings.Index(healthBlock, "}"); end >= 0 {
		healthBlock = healthBlock[:end]
	}
	if !strings.Contains(healthBlock, "access_log off") {
		t.Error("health route must suppress request logging")
	}
}

func TestScriptValidatesProxyConfigBeforeRestart(t *testing.T) {
	script := renderScript(t, models.EnvDev)
	check := strings.Index(script, "nginx -t")
	restart := strings.Index(script, "systemctl restart nginx")
	if check < 0 || restart < 0 {
		t.Fatal("script missing proxy validation or restart")
	}
	if check > restart {
		t.Error("proxy config must be validated before the proxy restarts")
	}
}

func TestScriptRuntimeVerificationAborts(t *testing.T) {
	script := renderScript(t, models.EnvDev)
	verify := strings.Index(script, "dotnet --list-runtimes")
	abort := strings.Index(script, "exit 1")
	if verify < 0 || abort < 0 || abort < verify {
		t.Error("runtime verification must abort the sequence on mismatch")
	}
}

func TestStepOrder(t *testing.T) {
	want := []string{"preamble", "packages", "runtime", "supervision", "proxy", "activation"}
	steps := NewGenerator().Steps()
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.Name() != want[i] {
			t.Errorf("step %d = %s, want %s", i, step.Name(), want[i])
		}
	}
}
