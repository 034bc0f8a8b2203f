package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vrischmann/envconfig"
	"golang.org/x/time/rate"

	"github.com/Sh00ty/websocket-infra/internal/admission"
	"github.com/Sh00ty/websocket-infra/internal/events"
	"github.com/Sh00ty/websocket-infra/internal/metrics"
	"github.com/Sh00ty/websocket-infra/internal/models"
	"github.com/Sh00ty/websocket-infra/pkg/healthprobe"
	"github.com/Sh00ty/websocket-infra/pkg/healthprobe/httpprobe"
)

// affinityCookie carries the signed backend pin between successive
// connections of one client.
const affinityCookie = "wsapi_affinity"

const (
	defaultProbeInterval = 30 * time.Second
	defaultProbeTimeout  = 5 * time.Second
	defaultAffinityTTL   = time.Hour
	defaultDrainGrace    = 30 * time.Second

	admitAfter uint8 = 2
	evictAfter uint8 = 3
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
	Environment string `envconfig:"ENVIRONMENT,optional"`

	ListenAddr string `envconfig:"LISTEN_ADDR,optional"`

	// Backends lists the proxied instances as id=ip:port pairs.
	Backends       []string `envconfig:"BACKENDS"`
	AffinitySecret string   `envconfig:"AFFINITY_SECRET"`

	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL,optional"`
	ProbeTimeout  time.Duration `envconfig:"PROBE_TIMEOUT,optional"`

	StatsdAddr string `envconfig:"STATSD_ADDR,optional"`
	KafkaAddr  string `envconfig:"KAFKA_ADDR,optional"`
	KafkaTopic string `envconfig:"KAFKA_TOPIC,optional"`
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
	if appCfg.ListenAddr == "" {
		appCfg.ListenAddr = ":8080"
	}
	if appCfg.ProbeInterval == 0 {
		appCfg.ProbeInterval = defaultProbeInterval
	}
	if appCfg.ProbeTimeout == 0 {
		appCfg.ProbeTimeout = defaultProbeTimeout
	}

	mtr := metrics.NewNoop()
	if appCfg.StatsdAddr != "" {
		mtr = metrics.NewStatsd("devgateway", appCfg.StatsdAddr)
	}

	var publisher *events.Publisher
	if appCfg.KafkaAddr != "" {
		publisher = events.NewPublisher(appCfg.KafkaAddr, appCfg.KafkaTopic)
		defer publisher.Close()
	}

	signer := admission.NewAffinitySigner([]byte(appCfg.AffinitySecret), defaultAffinityTTL)
	router := admission.NewRouter(signer, defaultDrainGrace)

	for _, entry := range appCfg.Backends {
		id, rawAddr, ok := strings.Cut(entry, "=")
		if !ok {
			log.Fatal().Msgf("invalid backend entry %q, want id=ip:port", entry)
		}
		addr, err := healthprobe.BackendAddrFromString(rawAddr)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to parse backend %s address", id)
		}
		probe, err := httpprobe.New(httpprobe.Settings{
			Path:    admission.HealthPath,
			Timeout: appCfg.ProbeTimeout,
		}, addr)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to create probe for backend %s", id)
		}
		router.Register(id, addr, admission.NewBackendState(probe, admitAfter, evictAfter))
		log.Info().Msgf("registered backend %s at %s", id, addr)
	}

	go probeLoop(ctx, env, router, appCfg.ProbeInterval, mtr, publisher)

	server := &http.Server{
		Addr:    appCfg.ListenAddr,
		Handler: gatewayHandler(router, mtr),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Msgf("dev gateway for %s listening on %s", env, appCfg.ListenAddr)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("gateway server failed")
	}
}

// probeLoop paces one probe per backend per interval; a rate limiter
// spreads the probes instead of firing them all at once.
func probeLoop(
	ctx context.Context,
	env models.Environment,
	router *admission.Router,
	interval time.Duration,
	mtr metrics.Metrics,
	publisher *events.Publisher,
) {
	backends := router.Backends()
	if len(backends) == 0 {
		return
	}
	limiter := rate.NewLimiter(rate.Every(interval/time.Duration(len(backends))), 1)
	for {
		for _, backend := range router.Backends() {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			changed := backend.State.ProbeIteration()
			if !changed {
				continue
			}
			admitted, lastErr := backend.State.Info()
			eventType := events.BackendEvicted
			if admitted {
				eventType = events.BackendAdmitted
				log.Info().Msgf("backend %s admitted to rotation", backend.ID)
				mtr.Increment("backend.admitted")
			} else {
				log.Warn().Err(lastErr).Msgf("backend %s evicted from rotation", backend.ID)
				mtr.Increment("backend.evicted")
			}
			if publisher != nil {
				err := publisher.Publish(ctx, events.Event{
					Type:        eventType,
					Environment: env,
					Backend:     backend.ID,
				})
				if err != nil {
					log.Warn().Err(err).Msg("failed to publish admission event")
				}
			}
		}
		admittedCount := 0
		for _, backend := range router.Backends() {
			if admitted, _ := backend.State.Info(); admitted {
				admittedCount++
			}
		}
		mtr.Gauge("backends.admitted", admittedCount)
	}
}

func gatewayHandler(router *admission.Router, mtr metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		clientID, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientID = r.RemoteAddr
		}
		token := ""
		if cookie, err := r.Cookie(affinityCookie); err == nil {
			token = cookie.Value
		}

		backend, newToken, err := router.Pick(clientID, token)
		if err != nil {
			mtr.Increment("pick.no_backend")
			http.Error(w, "no healthy backend", http.StatusServiceUnavailable)
			return
		}
		mtr.Increment("pick.ok")
		if newToken != token {
			http.SetCookie(w, &http.Cookie{
				Name:     affinityCookie,
				Value:    newToken,
				Path:     "/",
				HttpOnly: true,
			})
		}

		target := &url.URL{Scheme: "http", Host: backend.Addr.String()}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn().Err(err).Msgf("proxy to backend %s failed", backend.ID)
			mtr.Increment("proxy.error")
			w.WriteHeader(http.StatusBadGateway)
		}
		proxy.ServeHTTP(w, r)
		mtr.Duration("proxy.duration", time.Since(started))
	})
}
