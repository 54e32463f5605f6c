// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package lapictimer

import (
	"testing"

	"github.com/mikanos/kernel/lapic"
	"github.com/mikanos/kernel/message"
	"github.com/mikanos/kernel/timer"
)

// fakeLAPIC installs an in-memory LAPIC register block. Writing the
// Initial Count register loads the simulated count-down, mirroring real
// LAPIC behavior closely enough to drive CurrentCount() after calibration.
// It returns the backing map so tests can assert on registers CurrentCount
// doesn't expose, such as the LVT Timer entry.
func fakeLAPIC(t *testing.T) map[uint32]uint32 {
	t.Helper()

	regs := map[uint32]uint32{}
	var current uint32

	restore := lapic.SetRegistersForTest(
		func(addr uint32) uint32 {
			if addr == lapic.Base+lapic.RegCurrentCount {
				return current
			}
			return regs[addr]
		},
		func(addr uint32, v uint32) {
			regs[addr] = v
			if addr == lapic.Base+lapic.RegInitialCount {
				current = v
			}
		},
	)
	t.Cleanup(restore)

	return regs
}

// TestInitCalibratesAgainstElapsedPMTimerWait: a calibration wait during
// which the LAPIC counts down by 579,545 ticks yields
// Freq = 579545 * (1000/100) = 5,795,450 Hz.
func TestInitCalibratesAgainstElapsedPMTimerWait(t *testing.T) {
	const elapsed = 579545

	regs := fakeLAPIC(t)
	lapic.SetInitialCount(lapic.CountMax)

	origWait := waitMilliseconds
	defer func() { waitMilliseconds = origWait }()
	waitMilliseconds = func(ms uint64) {
		if ms != calibrationWaitMS {
			t.Fatalf("calibration wait = %dms, want %dms", ms, calibrationWaitMS)
		}
		lapic.SetInitialCount(lapic.CountMax - elapsed)
	}

	d := Init(message.NewQueue())

	const want = elapsed * (1000 / calibrationWaitMS)
	if d.Freq != want {
		t.Errorf("Freq = %d, want %d", d.Freq, want)
	}
	if got := lapic.CurrentCount(); got != d.Freq/timer.TimerFreq {
		t.Errorf("periodic initial count = %d, want Freq/TimerFreq", got)
	}

	const wantLVT = 0x20000 | VectorLAPICTimer
	if got := regs[lapic.Base+lapic.RegLVTTimer]; got != wantLVT {
		t.Errorf("LVT Timer after calibration = %#x, want %#x (periodic mode, unmasked)", got, wantLVT)
	}
}

func TestOnInterruptDrainsAndSignalsEOI(t *testing.T) {
	regs := fakeLAPIC(t)

	origWait := waitMilliseconds
	defer func() { waitMilliseconds = origWait }()
	waitMilliseconds = func(uint64) {}

	q := message.NewQueue()
	d := Init(q)
	d.Manager.AddTimer(timer.Entry{Deadline: 1, Value: 7})

	lapic.SetInitialCount(0)
	regs[lapic.Base+lapic.RegEOI] = 0xdeadbeef

	if d.OnInterrupt() {
		t.Error("OnInterrupt() without elapsed tick should not report a scheduler tick")
	}
	if got := q.Len(); got != 1 {
		t.Errorf("queued messages after OnInterrupt() = %d, want 1 (the timer due at tick 1)", got)
	}
	if got := regs[lapic.Base+lapic.RegEOI]; got != 0 {
		t.Errorf("EOI register = %#x, want 0 written by OnInterrupt()", got)
	}
}
