package shutdown

import (
	"os"
	"syscall"
	"testing"
)

func TestSignalCounter_Record(t *testing.T) {
	var forced []os.Signal
	counter := NewSignalCounter(2, func(sig os.Signal) { forced = append(forced, sig) })

	if got := counter.Record(syscall.SIGTERM); got != 1 {
		t.Errorf("first Record() = %d", got)
	}
	if len(forced) != 0 {
		t.Error("force callback ran on the first signal")
	}
	if got := counter.Record(os.Interrupt); got != 2 {
		t.Errorf("second Record() = %d", got)
	}
	if len(forced) != 1 || forced[0] != os.Interrupt {
		t.Errorf("forced = %v, want [interrupt]", forced)
	}
	if counter.First() != syscall.SIGTERM {
		t.Errorf("First() = %v, want SIGTERM", counter.First())
	}
}

func TestSignalCounter_NilCallbackAndReset(t *testing.T) {
	counter := NewSignalCounter(1, nil)
	counter.Record(os.Interrupt)
	counter.Record(os.Interrupt)
	if counter.Count() != 2 {
		t.Errorf("Count() = %d", counter.Count())
	}

	counter.Reset()
	if counter.Count() != 0 || counter.First() != nil {
		t.Error("Reset should clear the count and the first signal")
	}
}
