package bootstrap

// proxyStep materializes the reverse-proxy routing rules: a catch-all
// route with upgrade headers and a medium read timeout, the long-lived
// connection route with a read timeout spanning a full day, and the
// health route with request logging suppressed so periodic probes do
// not drown the access log.
type proxyStep struct{}

func (proxyStep) Name() string { return "proxy" }

func (proxyStep) Render(params Params) (string, error) {
	return renderTemplate("proxy", proxyTmpl, map[string]any{
		"UnitName":       UnitName,
		"ServicePort":    servicePort,
		"DefaultTimeout": defaultReadTimeoutSec,
		"WSTimeout":      wsReadTimeoutSec,
	})
}

const proxyTmpl = `cat > /etc/nginx/sites-available/{{.UnitName}} <<'EOF'
server {
    listen 80 default_server;

    location / {
        proxy_pass http://127.0.0.1:{{.ServicePort}};
        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
        proxy_set_header Host $host;
        proxy_read_timeout {{.DefaultTimeout}};
    }

    location /ws {
        proxy_pass http://127.0.0.1:{{.ServicePort}}/ws;
        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
        proxy_set_header Host $host;
        proxy_read_timeout {{.WSTimeout}};
    }

    location /health {
        proxy_pass http://127.0.0.1:{{.ServicePort}}/health;
        access_log off;
    }
}
EOF
ln -sf /etc/nginx/sites-available/{{.UnitName}} /etc/nginx/sites-enabled/{{.UnitName}}
rm -f /etc/nginx/sites-enabled/default
`

// activationStep enables everything. The reverse-proxy configuration
// is validated syntactically before the restart; a syntax error aborts
// the sequence instead of bouncing the proxy into a broken state.
type activationStep struct{}

func (activationStep) Name() string { return "activation" }

func (activationStep) Render(params Params) (string, error) {
	return renderTemplate("activation", activationTmpl, map[string]string{
		"UnitName": UnitName,
	})
}

const activationTmpl = `systemctl daemon-reload
systemctl enable {{.UnitName}}
systemctl start {{.UnitName}}
nginx -t
systemctl restart nginx
echo "bootstrap done: $(date --iso-8601=seconds)"
`
