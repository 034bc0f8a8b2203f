package etcd

import (
	"path"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

/*
wsapi-registry/environments/dev(%s)/run
wsapi-registry/environments/dev(%s)/fingerprint
wsapi-registry/environments/dev(%s)/outputs/entry_point_address(%s)
wsapi-registry/environments/dev(%s)/outputs/...

The deployment pipeline watches the outputs folder of its environment;
everything under it is rewritten atomically by each provisioning run.
*/

const registryFolder = "/wsapi-registry"

// wsapi-registry/environments/dev(%s)
func environmentFolder(env models.Environment) string {
	return path.Join(registryFolder, "environments", string(env))
}

// wsapi-registry/environments/dev(%s)/run
func runKey(env models.Environment) string {
	return path.Join(environmentFolder(env), "run")
}

// wsapi-registry/environments/dev(%s)/fingerprint
func fingerprintKey(env models.Environment) string {
	return path.Join(environmentFolder(env), "fingerprint")
}

// wsapi-registry/environments/dev(%s)/outputs
func outputsFolder(env models.Environment) string {
	return path.Join(environmentFolder(env), "outputs")
}

// wsapi-registry/environments/dev(%s)/outputs/entry_point_address(%s)
func outputKey(env models.Environment, name string) string {
	return path.Join(outputsFolder(env), name)
}
