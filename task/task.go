// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package task

import (
	"reflect"
	"unsafe"
)

// funcEntryAddr returns the entry address of a Go function value, the Go
// analogue of the source's "reinterpret_cast<uint64_t>(f)" on a raw
// TaskFunc* pointer.
func funcEntryAddr(f Func) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// DefaultStackBytes is the size of a task's private stack: 8 KiB is
// sufficient for kernel-side task bodies and matches the source's
// kDefaultStackBytes.
const DefaultStackBytes = 8192

// stackWordBytes is sizeof(stack_[0]) in the source: the stack is a slice
// of machine words, not raw bytes, so its end address is always
// word-aligned before the 16-byte alignment adjustment below.
const stackWordBytes = 8

// Func is the entry point signature a task starts at: it receives its own
// ID and the opaque data word InitContext was given.
type Func func(id uint64, data int64)

// Task is one schedulable unit: an identity, a private stack buffer it
// owns for the lifetime of the process (tasks are never destroyed in this
// core), and the register context SwitchContext saves into and restores
// from.
type Task struct {
	id      uint64
	stack   []uint64
	context Context
	mgr     *Manager
}

// ID returns the task's monotonic identity.
func (t *Task) ID() uint64 { return t.id }

// Context returns a pointer to the task's register-state record.
func (t *Task) Context() *Context { return &t.context }

// InitContext allocates the task's stack and prepares a context such that
// a SwitchContext into it resumes execution at entry(id, data). It returns
// t so callers can chain configuration, mirroring the source's
// "Task &Task::InitContext(...)". The task is not placed on the run queue;
// callers must still call Manager.Wakeup.
func (t *Task) InitContext(entry Func, data int64) *Task {
	stackWords := DefaultStackBytes / stackWordBytes
	t.stack = make([]uint64, stackWords)

	stackEnd := uintptr(unsafe.Pointer(&t.stack[0])) + uintptr(stackWords)*stackWordBytes

	t.context = Context{}
	t.context.CR3 = getCR3()
	t.context.RFlags = 0x202
	t.context.CS = KernelCS
	t.context.SS = KernelSS
	t.context.RSP = uint64((stackEnd &^ 0xf) - 8)
	t.context.RIP = uint64(funcEntryAddr(entry))
	t.context.RDI = t.id
	t.context.RSI = uint64(data)
	t.context.setMXCSR()

	return t
}

// Sleep removes this task from the run queue, switching away from it
// first if it is the one currently executing. It is the Task-level
// convenience wrapper around Manager.Sleep.
func (t *Task) Sleep() *Task {
	t.mgr.Sleep(t)
	return t
}

// Wakeup places this task back on the run queue if it is not already
// there.
func (t *Task) Wakeup() *Task {
	t.mgr.Wakeup(t)
	return t
}
