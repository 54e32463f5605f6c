// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package timer

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/mikanos/kernel/message"
)

// Manager is the software timer manager (C4). tick_ is written only from
// Tick, which in production is invoked solely from the LAPIC timer
// interrupt handler; CurrentTick observes it through an atomic load,
// matching the source's "volatile" tick_.
type Manager struct {
	mu     sync.Mutex
	tick   atomic.Uint64
	timers entryHeap
	queue  *message.Queue
}

// NewManager constructs a Manager at the given starting tick, installing
// the never-popped sentinel and one scheduler-tick entry TaskTimerPeriod
// ticks out.
func NewManager(queue *message.Queue, startTick uint64) *Manager {
	m := &Manager{queue: queue}
	m.tick.Store(startTick)

	m.timers = entryHeap{
		{Deadline: sentinelDeadline, Value: -1},
		{Deadline: startTick + TaskTimerPeriod, Value: TaskTimerValue},
	}
	heap.Init(&m.timers)

	return m
}

// CurrentTick returns the current tick count. Safe to call from any
// context.
func (m *Manager) CurrentTick() uint64 {
	return m.tick.Load()
}

// AddTimer installs a new software timer. The caller must ensure
// t.Deadline > CurrentTick() for the timer to be observable on a future
// tick; an earlier or equal deadline fires on the very next Tick.
func (m *Manager) AddTimer(t Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	heap.Push(&m.timers, t)
}

// Tick advances the clock by one and drains every timer whose deadline has
// been reached, in increasing-deadline order, into the message queue. The
// scheduler-tick entry is handled specially: it never produces a message,
// is immediately reinserted TaskTimerPeriod ticks further out, and instead
// causes Tick to report true so the caller can invoke the task switch.
func (m *Manager) Tick() (schedulerTick bool) {
	now := m.tick.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		top := m.timers[0]
		if top.Deadline > now {
			break
		}

		heap.Pop(&m.timers)

		if top.Value == TaskTimerValue {
			schedulerTick = true
			heap.Push(&m.timers, Entry{Deadline: now + TaskTimerPeriod, Value: TaskTimerValue})
			continue
		}

		m.queue.Push(message.NewTimerTimeout(top.Deadline, top.Value))
	}

	return schedulerTick
}
