package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

const runsTable = "provision_runs"

// Run is one recorded provisioning run: what was composed, its
// fingerprint and the outputs handed downstream. The ledger makes
// graph drift between runs visible after the fact.
type Run struct {
	ID          string
	Environment models.Environment
	Fingerprint string
	Outputs     models.OutputSet
	CreatedAt   time.Time
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepo(ctx context.Context, user, password, addr string, port uint16) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(
		fmt.Sprintf(
			"user=%s password=%s host=%s port=%d dbname=postgres sslmode=disable pool_max_conns=5",
			user, password, addr, port,
		),
	)
	if cfg == nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	err = pool.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return &Repository{
		db: pool,
	}, nil
}

func (r *Repository) RecordRun(ctx context.Context, run Run) error {
	outputsJSON, err := json.Marshal(run.Outputs.Named())
	if err != nil {
		return fmt.Errorf("failed to encode run outputs: %w", err)
	}

	sql := `
	insert into provision_runs (run_id, environment, fingerprint, outputs)
	values ($1, $2, $3, $4);
	`
	_, err = r.db.Exec(ctx, sql,
		run.ID,
		string(run.Environment),
		run.Fingerprint,
		outputsJSON,
	)
	if err != nil {
		return recordError(run.ID, err)
	}
	return nil
}

func (r *Repository) GetLatestRun(ctx context.Context, env models.Environment) (Run, error) {
	sql, args, err := squirrel.Select(
		"run_id",
		"environment",
		"fingerprint",
		"outputs",
		"created_at",
	).From(runsTable).
		Where(squirrel.Eq{"environment": string(env)}).
		OrderBy("created_at desc").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return Run{}, fmt.Errorf("failed to create db request: %w", err)
	}

	var (
		run         Run
		envStr      string
		outputsJSON []byte
	)
	row := r.db.QueryRow(ctx, sql, args...)
	err = row.Scan(&run.ID, &envStr, &run.Fingerprint, &outputsJSON, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Run{}, fmt.Errorf("no recorded runs for environment %s", env)
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Environment = models.Environment(envStr)

	named := make(map[string]string)
	if err := json.Unmarshal(outputsJSON, &named); err != nil {
		return Run{}, fmt.Errorf("failed to decode run outputs: %w", err)
	}
	run.Outputs = models.OutputSet{
		EntryPointAddress: named[models.OutputEntryPointAddress],
		WebSocketURL:      named[models.OutputWebSocketURL],
		HealthCheckURL:    named[models.OutputHealthCheckURL],
		ArtifactStoreID:   named[models.OutputArtifactStoreID],
		ComputeInstanceID: named[models.OutputComputeInstanceID],
		DiscoveryTag:      named[models.OutputDiscoveryTag],
		NetworkID:         named[models.OutputNetworkID],
	}
	return run, nil
}
