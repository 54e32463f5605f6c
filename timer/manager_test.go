// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package timer

import (
	"testing"

	"github.com/mikanos/kernel/message"
)

func TestNewManagerInstallsSchedulerTickAndSentinel(t *testing.T) {
	m := NewManager(message.NewQueue(), 0)

	if got := len(m.timers); got != 2 {
		t.Fatalf("len(timers) = %d, want 2 (sentinel + scheduler tick)", got)
	}

	found := 0
	for _, e := range m.timers {
		if e.Value == TaskTimerValue {
			found++
		}
	}
	if found != 1 {
		t.Errorf("scheduler-tick entries present = %d, want exactly 1", found)
	}
}

func TestTickDrainsDueTimersInDeadlineOrder(t *testing.T) {
	q := message.NewQueue()
	m := NewManager(q, 0)

	m.AddTimer(Entry{Deadline: 1, Value: 10})
	m.AddTimer(Entry{Deadline: 1, Value: 20})
	m.AddTimer(Entry{Deadline: 5, Value: 30})

	m.Tick() // now = 1, drains the two Deadline==1 entries

	var drained []int32
	for {
		msg, ok := q.Pop()
		if !ok {
			break
		}
		drained = append(drained, msg.Timer.Value)
	}

	if len(drained) != 2 {
		t.Fatalf("drained %d messages at tick 1, want 2", len(drained))
	}
	seen := map[int32]bool{drained[0]: true, drained[1]: true}
	if !seen[10] || !seen[20] {
		t.Errorf("drained values = %v, want {10,20}", drained)
	}

	// two due entries with different deadlines drain smallest first.
	m.AddTimer(Entry{Deadline: 2, Value: 60})
	m.AddTimer(Entry{Deadline: 1, Value: 50})

	m.Tick() // now = 2

	var second []int32
	for {
		msg, ok := q.Pop()
		if !ok {
			break
		}
		second = append(second, msg.Timer.Value)
	}

	if len(second) != 2 || second[0] != 50 || second[1] != 60 {
		t.Errorf("drained values at tick 2 = %v, want [50 60]", second)
	}
}

// TestTickScheduler pins the scheduler-tick invariant: the scheduler-tick
// entry is popped and reinserted on the exact tick it is due, never
// produces a message, and causes Tick to report true.
func TestTickScheduler(t *testing.T) {
	q := message.NewQueue()
	m := NewManager(q, 0)

	var schedulerTicks int
	for i := uint64(0); i < TaskTimerPeriod; i++ {
		if m.Tick() {
			schedulerTicks++
		}
	}

	if schedulerTicks != 1 {
		t.Fatalf("scheduler ticks over %d ticks = %d, want 1", TaskTimerPeriod, schedulerTicks)
	}
	if _, ok := q.Pop(); ok {
		t.Error("scheduler tick must not enqueue a message")
	}

	found := 0
	for _, e := range m.timers {
		if e.Value == TaskTimerValue {
			found++
			if e.Deadline != 2*TaskTimerPeriod {
				t.Errorf("reinstalled scheduler tick deadline = %d, want %d", e.Deadline, 2*TaskTimerPeriod)
			}
		}
	}
	if found != 1 {
		t.Errorf("scheduler-tick entries after firing = %d, want exactly 1", found)
	}
}

func TestCurrentTickIncrementsByExactlyN(t *testing.T) {
	m := NewManager(message.NewQueue(), 100)

	for i := 0; i < 7; i++ {
		m.Tick()
	}

	if got := m.CurrentTick(); got != 107 {
		t.Errorf("CurrentTick() = %d, want 107", got)
	}
}

func TestSentinelNeverFires(t *testing.T) {
	m := NewManager(message.NewQueue(), 0)

	for i := 0; i < 10_000; i++ {
		m.Tick()
	}

	for _, e := range m.timers {
		if e.Deadline == sentinelDeadline && e.Value != -1 {
			t.Fatal("sentinel entry was mutated")
		}
	}
	if len(m.timers) == 0 {
		t.Fatal("heap drained to empty; sentinel must always remain")
	}
}
