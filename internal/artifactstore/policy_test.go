package artifactstore

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

func testSpec() models.ArtifactStoreSpec {
	return models.ArtifactStoreSpec{
		Name:              "websocketapi-artifacts-prod",
		Versioned:         true,
		PublicReadBlocked: true,
		ReaderIdentity:    "websocketapi-prod-host",
		WriterIdentity:    "websocketapi-prod-pipeline",
	}
}

func TestRenderPolicy(t *testing.T) {
	encoded, err := RenderPolicy(testSpec())
	if err != nil {
		t.Fatalf("RenderPolicy failed: %v", err)
	}

	var doc PolicyDocument
	if err := json.Unmarshal(encoded, &doc); err != nil {
		t.Fatalf("policy is not valid json: %v", err)
	}
	if len(doc.Statements) != 2 {
		t.Fatalf("got %d statements, want exactly writer and reader", len(doc.Statements))
	}

	byPrincipal := map[string]PolicyStatement{}
	for _, stmt := range doc.Statements {
		if stmt.Principal == "*" || stmt.Principal == "" {
			t.Fatalf("statement %s has open principal %q", stmt.Sid, stmt.Principal)
		}
		byPrincipal[stmt.Principal] = stmt
	}

	writer := byPrincipal["websocketapi-prod-pipeline"]
	if len(writer.Action) != 1 || writer.Action[0] != "PutObject" {
		t.Errorf("writer actions = %v, want write only", writer.Action)
	}
	reader := byPrincipal["websocketapi-prod-host"]
	for _, action := range reader.Action {
		if strings.HasPrefix(action, "Put") || strings.HasPrefix(action, "Delete") {
			t.Errorf("reader granted mutating action %s", action)
		}
	}
}

func TestRenderPolicyRequiresBlockedPublicRead(t *testing.T) {
	spec := testSpec()
	spec.PublicReadBlocked = false
	if _, err := RenderPolicy(spec); err == nil {
		t.Fatal("a publicly readable store must be rejected")
	}
}

func TestReleaseKeyLayout(t *testing.T) {
	key := ReleaseKey(models.EnvProd, "WebSocketApi.zip")
	if key != "releases/prod/WebSocketApi.zip" {
		t.Errorf("got release key %q", key)
	}
}
