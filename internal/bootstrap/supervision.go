package bootstrap

// supervisionStep materializes the process-supervision unit. It only
// creates the directory, ownership and unit scaffolding; the service
// binary arrives later through the deployment pipeline, which restarts
// the unit after each upload.
type supervisionStep struct{}

func (supervisionStep) Name() string { return "supervision" }

func (supervisionStep) Render(params Params) (string, error) {
	return renderTemplate("supervision", supervisionTmpl, map[string]any{
		"UnitName":        UnitName,
		"ServiceRoot":     ServiceRoot,
		"BinaryPath":      BinaryPath,
		"ListenAddr":      ListenAddr,
		"RuntimeMode":     params.RuntimeMode,
		"RestartDelaySec": restartDelaySec,
	})
}

const supervisionTmpl = `mkdir -p {{.ServiceRoot}}
chown -R www-data:www-data {{.ServiceRoot}}
cat > /etc/systemd/system/{{.UnitName}}.service <<EOF
[Unit]
Description=WebSocket API service
After=network.target

[Service]
WorkingDirectory={{.ServiceRoot}}
ExecStart=/usr/bin/dotnet {{.BinaryPath}}
Restart=always
RestartSec={{.RestartDelaySec}}
User=www-data
Environment=ASPNETCORE_ENVIRONMENT={{.RuntimeMode}}
Environment=ASPNETCORE_URLS=http://{{.ListenAddr}}

[Install]
WantedBy=multi-user.target
EOF
`
