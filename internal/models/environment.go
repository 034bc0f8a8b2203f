package models

import "fmt"

// Environment selects naming, sizing and runtime mode for a whole
// provisioning run. It is read once and never mixed across runs.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvProd:
		return Environment(s), nil
	case "":
		return EnvDev, nil
	}
	return "", fmt.Errorf("unknown environment %q", s)
}

// RuntimeMode is the execution mode flag injected into the service
// process environment on the provisioned host.
func (e Environment) RuntimeMode() string {
	if e == EnvProd {
		return "Production"
	}
	return "Development"
}

type EnvParams struct {
	AddressSpace  string
	InstanceClass string
	MachineImage  string
}

func ParamsFor(env Environment) EnvParams {
	if env == EnvProd {
		return EnvParams{
			AddressSpace:  "10.1.0.0/16",
			InstanceClass: "standard.medium",
			MachineImage:  "ubuntu-24.04-lts",
		}
	}
	return EnvParams{
		AddressSpace:  "10.0.0.0/16",
		InstanceClass: "standard.small",
		MachineImage:  "ubuntu-24.04-lts",
	}
}
