package admission

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/websocket-infra/pkg/healthprobe"
)

// BackendState tracks one backend's admission status across probe
// iterations. A backend starts out of rotation and is admitted only
// after admitAfter consecutive successes; once admitted it survives
// until evictAfter consecutive failures.
type BackendState struct {
	guard sync.RWMutex
	probe healthprobe.Probe

	admitAfter uint8
	curSuccess uint8

	evictAfter  uint8
	curFailures uint8

	lastError error
	admitted  bool
}

func NewBackendState(probe healthprobe.Probe, admitAfterN, evictAfterN uint8) *BackendState {
	return &BackendState{
		probe:      probe,
		admitAfter: admitAfterN,
		evictAfter: evictAfterN,
	}
}

// ProbeIteration runs one probe and folds the result into the
// admission status. It reports whether the status changed.
func (s *BackendState) ProbeIteration() bool {
	healthy, err := s.probe.DoProbe()

	s.guard.Lock()
	defer s.guard.Unlock()

	prev := s.admitted
	if err == nil && healthy {
		s.curFailures = 0
		if !s.admitted {
			s.curSuccess++
			s.admitted = s.curSuccess >= s.admitAfter
		}
		s.lastError = nil
		return prev != s.admitted
	}

	log.Debug().Err(err).Msg("got failed probe iteration")

	s.curSuccess = 0
	if s.admitted {
		s.curFailures++
		s.admitted = s.curFailures < s.evictAfter
	}
	s.lastError = err
	return prev != s.admitted
}

func (s *BackendState) Info() (admitted bool, lastError error) {
	s.guard.RLock()
	defer s.guard.RUnlock()
	return s.admitted, s.lastError
}
