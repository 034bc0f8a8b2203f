package mockprobe

import "sync"

// MockProbe replays a scripted probe outcome; used by admission tests
// and the dev gateway's dry mode.
type MockProbe struct {
	mu      sync.Mutex
	results []bool
	last    bool
}

func New(results ...bool) *MockProbe {
	last := true
	if len(results) > 0 {
		last = results[len(results)-1]
	}
	return &MockProbe{
		results: results,
		last:    last,
	}
}

// Set replaces the remaining script; subsequent probes return ok until
// changed again.
func (p *MockProbe) Set(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = nil
	p.last = ok
}

func (p *MockProbe) DoProbe() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.results) == 0 {
		return p.last, nil
	}
	next := p.results[0]
	p.results = p.results[1:]
	return next, nil
}
