package admission

import (
	"testing"

	"github.com/Sh00ty/websocket-infra/pkg/healthprobe/mockprobe"
)

func TestBackendStateAdmitsAfterConsecutiveSuccesses(t *testing.T) {
	probe := mockprobe.New(true, true, true)
	state := NewBackendState(probe, 2, 3)

	if changed := state.ProbeIteration(); changed {
		t.Fatal("one success must not admit yet")
	}
	if admitted, _ := state.Info(); admitted {
		t.Fatal("backend admitted before reaching the success threshold")
	}

	if changed := state.ProbeIteration(); !changed {
		t.Fatal("second consecutive success must admit")
	}
	if admitted, _ := state.Info(); !admitted {
		t.Fatal("backend not admitted after two successes")
	}
}

func TestBackendStateFailureResetsSuccessStreak(t *testing.T) {
	probe := mockprobe.New(true, false, true, true)
	state := NewBackendState(probe, 2, 3)

	state.ProbeIteration() // success
	state.ProbeIteration() // failure, streak resets
	if changed := state.ProbeIteration(); changed {
		t.Fatal("first success after a failure must not admit")
	}
	if changed := state.ProbeIteration(); !changed {
		t.Fatal("streak must rebuild from zero after a failure")
	}
}

func TestBackendStateEvictsAfterConsecutiveFailures(t *testing.T) {
	probe := mockprobe.New(true, true)
	state := NewBackendState(probe, 2, 3)
	state.ProbeIteration()
	state.ProbeIteration()

	probe.Set(false)
	for i := 0; i < 2; i++ {
		if changed := state.ProbeIteration(); changed {
			t.Fatalf("failure %d must not evict yet", i+1)
		}
	}
	if changed := state.ProbeIteration(); !changed {
		t.Fatal("third consecutive failure must evict")
	}
	if admitted, _ := state.Info(); admitted {
		t.Fatal("backend still admitted after eviction threshold")
	}
}

func TestBackendStateSuccessResetsFailureStreak(t *testing.T) {
	probe := mockprobe.New(true, true, false, false, true, false, false)
	state := NewBackendState(probe, 2, 3)
	state.ProbeIteration()
	state.ProbeIteration()

	for i := 0; i < 5; i++ {
		state.ProbeIteration()
	}
	// Failures never ran three in a row, so the backend stays in.
	if admitted, _ := state.Info(); !admitted {
		t.Fatal("interleaved failures must not evict an admitted backend")
	}
}
