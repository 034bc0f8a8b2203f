package httpprobe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/websocket-infra/pkg/healthprobe"
)

type Settings struct {
	Path    string
	Timeout time.Duration
}

type HTTPProbe struct {
	client *http.Client
	req    *http.Request
}

func New(settings Settings, backend healthprobe.BackendAddr) (*HTTPProbe, error) {
	if settings.Timeout == 0 {
		settings.Timeout = time.Second
	}
	target := url.URL{
		Scheme: "http",
		Host:   backend.String(),
		Path:   settings.Path,
	}
	req, err := http.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form probe request: %w", err)
	}
	return &HTTPProbe{
		client: &http.Client{
			Timeout: settings.Timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
		req: req,
	}, nil
}

func (p *HTTPProbe) DoProbe() (bool, error) {
	resp, err := p.client.Do(p.req.Clone(context.Background()))
	if err != nil {
		return false, fmt.Errorf("probe request error: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		return true, nil
	}
	log.Debug().Msgf("[http-probe]: invalid status code = %d", resp.StatusCode)
	return false, nil
}
