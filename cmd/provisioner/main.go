package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vrischmann/envconfig"

	"github.com/Sh00ty/websocket-infra/internal/artifactstore"
	"github.com/Sh00ty/websocket-infra/internal/engine/inmemory"
	"github.com/Sh00ty/websocket-infra/internal/events"
	"github.com/Sh00ty/websocket-infra/internal/graph"
	"github.com/Sh00ty/websocket-infra/internal/ledger/postgres"
	"github.com/Sh00ty/websocket-infra/internal/models"
	registryetcd "github.com/Sh00ty/websocket-infra/internal/registry/etcd"
)

func loggerLevelFromString(level string) zerolog.Level {
	level = strings.ToLower(level)
	switch level {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

type Config struct {
	LoggerLevel string `envconfig:"LOGGER_LEVEL,optional"`

	// Environment is the only dynamic input of a provisioning run.
	Environment       string `envconfig:"ENVIRONMENT,optional"`
	ExistingNetworkID string `envconfig:"EXISTING_NETWORK_ID,optional"`

	RegistryHost string `envconfig:"REGISTRY_HOST,optional"`

	DatabaseHost     string `envconfig:"DATABASE_HOST,optional"`
	DatabaseUser     string `envconfig:"DATABASE_USER,optional"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD,optional"`
	DatabasePort     uint16 `envconfig:"DATABASE_PORT,optional"`

	KafkaAddr  string `envconfig:"KAFKA_ADDR,optional"`
	KafkaTopic string `envconfig:"KAFKA_TOPIC,optional"`

	StoreEndpoint  string `envconfig:"STORE_ENDPOINT,optional"`
	StoreAccessKey string `envconfig:"STORE_ACCESS_KEY,optional"`
	StoreSecretKey string `envconfig:"STORE_SECRET_KEY,optional"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	appCfg := Config{}
	err := envconfig.Init(&appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read app config")
	}
	log.Logger = log.Level(loggerLevelFromString(appCfg.LoggerLevel))

	env, err := models.ParseEnvironment(appCfg.Environment)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse environment")
	}

	runID, err := uuid.GenerateUUID()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate run id")
	}
	log.Info().Msgf("provisioning run %s for environment %s", runID, env)

	var publisher *events.Publisher
	if appCfg.KafkaAddr != "" {
		publisher = events.NewPublisher(appCfg.KafkaAddr, appCfg.KafkaTopic)
		defer publisher.Close()
		emit(ctx, publisher, events.Event{Type: events.RunStarted, RunID: runID, Environment: env})
	}

	// The in-process engine stands in for the external reconciliation
	// engine: it validates plan ordering and hands back identifiers.
	// A real deployment swaps it for the cloud engine's adapter.
	eng := inmemory.New()
	if appCfg.ExistingNetworkID != "" {
		eng.RegisterNetwork(appCfg.ExistingNetworkID, models.NetworkID(appCfg.ExistingNetworkID))
	}

	g, err := graph.Compose(ctx, env, graph.Options{
		ExistingNetworkID: appCfg.ExistingNetworkID,
	}, eng)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compose resource graph")
	}

	fingerprint, err := graph.Fingerprint(g)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fingerprint graph")
	}

	plan, err := graph.BuildPlan(g)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build plan")
	}
	for _, step := range plan.Steps {
		log.Debug().Msgf("plan: create %s", step.Resource)
	}

	applied, err := eng.Apply(ctx, g, plan)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to apply plan")
	}

	outputs, err := graph.Outputs(g, applied)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble outputs")
	}

	if appCfg.StoreEndpoint != "" {
		store, err := artifactstore.NewMinioStore(
			appCfg.StoreEndpoint,
			appCfg.StoreAccessKey,
			appCfg.StoreSecretKey,
			false,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init artifact store client")
		}
		err = artifactstore.Provision(ctx, store, storeSpecOf(g))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to provision artifact store")
		}
	}

	if appCfg.RegistryHost != "" {
		registry, err := registryetcd.NewPublisher(ctx, appCfg.RegistryHost)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init output registry")
		}
		defer registry.Close()
		err = registry.PublishOutputs(ctx, env, runID, fingerprint, outputs)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to publish outputs")
		}
	}

	if appCfg.DatabaseHost != "" {
		ledger, err := postgres.NewRepo(
			ctx,
			appCfg.DatabaseUser,
			appCfg.DatabasePassword,
			appCfg.DatabaseHost,
			appCfg.DatabasePort,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init run ledger")
		}
		err = ledger.RecordRun(ctx, postgres.Run{
			ID:          runID,
			Environment: env,
			Fingerprint: fingerprint,
			Outputs:     outputs,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to record run")
		}
	}

	if publisher != nil {
		emit(ctx, publisher, events.Event{Type: events.RunApplied, RunID: runID, Environment: env})
	}

	for name, value := range outputs.Named() {
		log.Info().Msgf("output %s = %s", name, value)
	}
	log.Info().Msgf("run %s done: fingerprint %s", runID, fingerprint)
}

func storeSpecOf(g models.Graph) models.ArtifactStoreSpec {
	for _, res := range g.Resources {
		if spec, ok := res.Spec.(models.ArtifactStoreSpec); ok {
			return spec
		}
	}
	return models.ArtifactStoreSpec{}
}

func emit(ctx context.Context, publisher *events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msgf("failed to publish %s event", event.Type)
	}
}
