package artifactstore

import (
	"encoding/json"
	"fmt"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// PolicyStatement is one access rule of the store policy document the
// provisioning engine attaches to the bucket.
type PolicyStatement struct {
	Sid       string   `json:"Sid"`
	Effect    string   `json:"Effect"`
	Principal string   `json:"Principal"`
	Action    []string `json:"Action"`
	Resource  string   `json:"Resource"`
}

type PolicyDocument struct {
	Version    string            `json:"Version"`
	Statements []PolicyStatement `json:"Statement"`
}

// RenderPolicy produces the store's access policy: the pipeline
// identity writes, the host identity reads, and that is the whole
// principal list. There is deliberately no statement with a wildcard
// principal; the store is never publicly readable.
func RenderPolicy(spec models.ArtifactStoreSpec) ([]byte, error) {
	if !spec.PublicReadBlocked {
		return nil, fmt.Errorf("store %s: public read must stay blocked", spec.Name)
	}
	doc := PolicyDocument{
		Version: "2012-10-17",
		Statements: []PolicyStatement{
			{
				Sid:       "PipelineWrite",
				Effect:    "Allow",
				Principal: spec.WriterIdentity,
				Action:    []string{"PutObject"},
				Resource:  spec.Name + "/*",
			},
			{
				Sid:       "HostRead",
				Effect:    "Allow",
				Principal: spec.ReaderIdentity,
				Action:    []string{"GetObject", "ListBucket"},
				Resource:  spec.Name + "/*",
			},
		},
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode store policy: %w", err)
	}
	return encoded, nil
}
