package models

import (
	"fmt"
	"time"
)

// HealthCheckPolicy drives traffic admission for one backend: a backend
// is admitted only after AdmitAfter consecutive successful probes and
// evicted after EvictAfter consecutive failures.
type HealthCheckPolicy struct {
	Path       string
	Interval   time.Duration
	Timeout    time.Duration
	AdmitAfter uint8
	EvictAfter uint8
}

func (p HealthCheckPolicy) Validate() error {
	if p.Timeout >= p.Interval {
		return fmt.Errorf("probe timeout %s must be tighter than interval %s", p.Timeout, p.Interval)
	}
	if p.AdmitAfter == 0 || p.EvictAfter == 0 {
		return fmt.Errorf("admission thresholds must be positive")
	}
	return nil
}

// StickinessPolicy pins a client's successive connections to one
// backend for TTL via a signed affinity token.
type StickinessPolicy struct {
	Enabled bool
	TTL     time.Duration
}

// TargetBinding associates the entry point with a backend compute
// resource.
type TargetBinding struct {
	Name   string
	Port   uint16
	Proto  Protocol
	Target string

	// ConnectionOriented marks a backend holding per-connection
	// server-side state that is not replicated across instances.
	ConnectionOriented bool

	Health     HealthCheckPolicy
	Stickiness StickinessPolicy

	// DeregistrationGrace is how long in-flight connections may drain
	// after a backend is removed from the binding.
	DeregistrationGrace time.Duration
}

func (b TargetBinding) Validate() error {
	if err := b.Health.Validate(); err != nil {
		return fmt.Errorf("binding %s: %w", b.Name, err)
	}
	// A connection-oriented backend without stickiness loses session
	// continuity as soon as a second healthy instance appears.
	if b.ConnectionOriented && !b.Stickiness.Enabled {
		return fmt.Errorf("binding %s: stickiness required for connection-oriented backend", b.Name)
	}
	return nil
}

type Listener struct {
	Port  uint16
	Proto Protocol
}

// EntryPointSpec is the single public-facing traffic admission
// component. It always lives in the public segments.
type EntryPointSpec struct {
	Name            string
	Segments        []SegmentID
	Listeners       []Listener
	PermissionGroup string
	Binding         TargetBinding
}
