package bootstrap

// preambleStep makes the whole sequence fail-fast and durably logged:
// any command returning non-zero terminates startup, leaving the host
// up but without its service, with the full transcript at LogPath.
type preambleStep struct{}

func (preambleStep) Name() string { return "preamble" }

func (preambleStep) Render(params Params) (string, error) {
	return renderTemplate("preamble", preambleTmpl, map[string]string{
		"LogPath": LogPath,
	})
}

const preambleTmpl = `#!/bin/bash
set -euo pipefail
exec > >(tee -a {{.LogPath}}) 2>&1
echo "bootstrap start: $(date --iso-8601=seconds)"
`

// packagesStep updates the host package set and installs the fixed
// toolset: the remote access agent (no ssh), the managed reverse proxy
// and the cloud command-line client.
type packagesStep struct{}

func (packagesStep) Name() string { return "packages" }

func (packagesStep) Render(params Params) (string, error) {
	return renderTemplate("packages", packagesTmpl, nil)
}

const packagesTmpl = `export DEBIAN_FRONTEND=noninteractive
apt-get update -y
apt-get upgrade -y
apt-get install -y nginx awscli
snap install amazon-ssm-agent --classic
systemctl enable --now snap.amazon-ssm-agent.amazon-ssm-agent.service
`

type runtimeStep struct{}

func (runtimeStep) Name() string { return "runtime" }

// Render installs the pinned service runtime major version and
// verifies it by querying the installed runtime list. Verification
// failure aborts the whole sequence under the fail-fast discipline.
func (runtimeStep) Render(params Params) (string, error) {
	return renderTemplate("runtime", runtimeTmpl, map[string]string{
		"Major": runtimeMajor,
	})
}

const runtimeTmpl = `apt-get install -y aspnetcore-runtime-{{.Major}}.0
if ! dotnet --list-runtimes | grep -q "Microsoft.AspNetCore.App {{.Major}}\."; then
    echo "runtime verification failed: expected major version {{.Major}}" >&2
    exit 1
fi
`
