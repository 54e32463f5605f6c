// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package timer implements the software timer manager (C4): a min-heap of
// deadline-ordered timers drained on every hardware tick into a message
// queue, with one always-present entry identifying the scheduler tick.
package timer

import "container/heap"

// TaskTimerValue identifies the one timer entry that drives task
// preemption rather than producing a TimerTimeout message.
const TaskTimerValue int32 = -1 << 31 // math.MinInt32, avoiding an import for one constant

// TimerFreq is the tick rate, in Hz, the LAPIC periodic timer drives C4 at.
const TimerFreq = 100

// TaskTimerPeriod is the number of ticks between scheduler preemptions.
// The source sets this to TimerFreq (one full second between switches),
// which is unusually long for preemptive multitasking; this core
// preserves it unchanged (see DESIGN.md).
const TaskTimerPeriod = TimerFreq

// sentinelDeadline is installed as a timer that is never meant to fire: no
// real deadline can reach math.MaxUint64 ticks, so it guarantees the heap
// is never empty and bounds the Tick drain loop.
const sentinelDeadline uint64 = 1<<64 - 1

// Entry is a software timer: a deadline tick and an opaque value the
// consumer uses to recognize which timer fired. Entries compare by
// deadline only; ties have unspecified order.
type Entry struct {
	Deadline uint64
	Value    int32
}

// entryHeap is a container/heap.Interface over Entry ordered so the
// smallest deadline is always at the root (highest priority).
type entryHeap []Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].Deadline < h[j].Deadline }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

var _ heap.Interface = (*entryHeap)(nil)
