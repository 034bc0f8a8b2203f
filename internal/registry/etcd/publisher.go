package etcd

import (
	"context"
	"fmt"
	"sort"

	retry "github.com/avast/retry-go/v4"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

const publishRetryAttempts = 3

// Publisher writes the output set of a provisioning run into the
// registry the external deployment pipeline consumes. All outputs of
// one environment are replaced in a single transaction.
type Publisher struct {
	etcd *clientv3.Client
}

func NewPublisher(ctx context.Context, host string) (*Publisher, error) {
	clnt, err := clientv3.New(clientv3.Config{
		Endpoints: []string{host},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return &Publisher{etcd: clnt}, nil
}

func (p *Publisher) Close() error {
	return p.etcd.Close()
}

func (p *Publisher) PublishOutputs(
	ctx context.Context,
	env models.Environment,
	runID string,
	fingerprint string,
	outputs models.OutputSet,
) error {
	named := outputs.Named()
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	ops := make([]clientv3.Op, 0, len(names)+2)
	ops = append(ops,
		clientv3.OpPut(runKey(env), runID),
		clientv3.OpPut(fingerprintKey(env), fingerprint),
	)
	for _, name := range names {
		ops = append(ops, clientv3.OpPut(outputKey(env, name), named[name]))
	}

	err := retry.Do(
		func() error {
			_, err := p.etcd.Txn(ctx).Then(ops...).Commit()
			return err
		},
		retry.Attempts(publishRetryAttempts),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to publish outputs for %s: %w", env, err)
	}
	return nil
}

// GetOutputs is the pipeline-side read of the published contract.
func (p *Publisher) GetOutputs(ctx context.Context, env models.Environment) (map[string]string, error) {
	resp, err := p.etcd.Get(ctx, outputsFolder(env)+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get outputs for %s: %w", env, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("no outputs published for %s", env)
	}
	result := make(map[string]string, len(resp.Kvs))
	prefixLen := len(outputsFolder(env)) + 1
	for _, kv := range resp.Kvs {
		key := string(kv.Key)
		if len(key) <= prefixLen {
			continue
		}
		result[key[prefixLen:]] = string(kv.Value)
	}
	return result, nil
}
