package artifactstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// Store is the artifact-store data plane as this subsystem sees it:
// the pipeline puts a deployable artifact, the host's identity gets it.
// Write-once is enforced by versioning on the store itself, not here.
type Store interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	Stat(ctx context.Context, bucket, key string) (ObjectInfo, error)
	EnsureBucket(ctx context.Context, bucket string) error
	ApplyPolicy(ctx context.Context, bucket string, policy []byte) error
}

// Provision makes a composed store spec real on a concrete backend:
// the bucket exists and carries the rendered access policy, so the
// never-public-read rule is enforced by the store itself, not just
// declared. An unrenderable policy aborts before any bucket is touched.
func Provision(ctx context.Context, store Store, spec models.ArtifactStoreSpec) error {
	policy, err := RenderPolicy(spec)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx, spec.Name); err != nil {
		return err
	}
	if err := store.ApplyPolicy(ctx, spec.Name, policy); err != nil {
		return fmt.Errorf("failed to apply policy to %s: %w", spec.Name, err)
	}
	return nil
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// ReleaseKey is the object-key layout the deployment pipeline and the
// host agree on.
func ReleaseKey(env models.Environment, artifact string) string {
	return fmt.Sprintf("releases/%s/%s", env, artifact)
}
