package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/websocket-infra/internal/bootstrap"
	"github.com/Sh00ty/websocket-infra/internal/models"
)

// render prints the host bootstrap script for an environment, for
// eyeballing the generated config without a provisioning run.
func main() {
	envFlag := flag.String("env", "", "target environment (dev or prod)")
	flag.Parse()

	env, err := models.ParseEnvironment(*envFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse environment")
	}

	script, err := bootstrap.NewGenerator().Script(env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to render bootstrap script")
	}
	fmt.Fprintln(os.Stdout, script)
}
