// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package task

import (
	"sync"

	"github.com/mikanos/kernel/kernelerr"
)

// Manager is the round-robin task manager (C5): it owns every Task ever
// created and maintains the run queue (front = currently executing).
//
// running/tasks are mutated both by the LAPIC ISR (via SwitchTask) and by
// task-context callers of Sleep/Wakeup; mu stands in for the "disable
// interrupts around the mutation" bracket real hardware requires, since
// this core has no interrupt-disable primitive of its own to bracket with.
type Manager struct {
	mu       sync.Mutex
	tasks    []*Task
	running  []*Task
	latestID uint64
}

// switchContext fronts the assembly context switch the same way acpi's
// readPort fronts port I/O: production code leaves it pointed at
// SwitchContext, tests swap in a recorder so run-queue rotation can be
// exercised without a real register-level switch.
var switchContext = SwitchContext

// NewManager constructs a Manager with one implicit bootstrap/idle task
// already running. No context is initialized for it: the first
// SwitchTask saves the live CPU state into its context, exactly as if it
// had always been scheduled.
func NewManager() *Manager {
	m := &Manager{}
	idle := m.newTaskLocked()
	m.running = append(m.running, idle)
	return m
}

func (m *Manager) newTaskLocked() *Task {
	m.latestID++
	t := &Task{id: m.latestID, mgr: m}
	m.tasks = append(m.tasks, t)
	return t
}

// NewTask allocates a new, not-yet-runnable task and retains it. Callers
// must still call InitContext and Wakeup before it can run.
func (m *Manager) NewTask() *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newTaskLocked()
}

func indexOf(running []*Task, t *Task) int {
	for i, r := range running {
		if r == t {
			return i
		}
	}
	return -1
}

// Wakeup appends task to the back of the run queue if it is not already
// present.
func (m *Manager) Wakeup(t *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if indexOf(m.running, t) == -1 {
		m.running = append(m.running, t)
	}
}

// WakeupID looks t up by ID and wakes it, failing with NoSuchTask if no
// task with that ID was ever created.
func (m *Manager) WakeupID(id uint64) kernelerr.Error {
	t, err := m.findLocked(id)
	if !err.Ok() {
		return err
	}
	m.Wakeup(t)
	return kernelerr.Error{}
}

// Sleep removes task from the run queue. If it is currently running
// (front of the queue) a context switch away from it is performed first;
// if it is queued elsewhere it is simply removed with no switch; if it is
// absent this is a no-op.
func (m *Manager) Sleep(t *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := indexOf(m.running, t)
	if idx == -1 {
		return
	}

	if idx == 0 {
		m.switchTaskLocked(true)
		return
	}

	m.running = append(m.running[:idx], m.running[idx+1:]...)
}

// SleepID looks t up by ID and sleeps it, failing with NoSuchTask if no
// task with that ID was ever created.
func (m *Manager) SleepID(id uint64) kernelerr.Error {
	t, err := m.findLocked(id)
	if !err.Ok() {
		return err
	}
	m.Sleep(t)
	return kernelerr.Error{}
}

func (m *Manager) findLocked(id uint64) (*Task, kernelerr.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if t.id == id {
			return t, kernelerr.Error{}
		}
	}
	return nil, kernelerr.New(kernelerr.NoSuchTask)
}

// SwitchTask pops the front of the run queue (the task currently
// executing); unless currentSleep is set it is pushed to the back; the
// new front is switched to via SwitchContext.
func (m *Manager) SwitchTask(currentSleep bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switchTaskLocked(currentSleep)
}

func (m *Manager) switchTaskLocked(currentSleep bool) {
	current := m.running[0]
	m.running = m.running[1:]

	if !currentSleep {
		m.running = append(m.running, current)
	}

	next := m.running[0]
	switchContext(next.Context(), current.Context())
}
