// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kernel composes the core subsystems into the boot sequence,
// mirroring the shape of the teacher's CPU struct and its Init() method
// (amd64/amd64.go): one value constructed in a fixed order, exposing the
// subsystems as fields rather than package-level globals.
package kernel

import (
	"github.com/mikanos/kernel/acpi"
	"github.com/mikanos/kernel/lapictimer"
	"github.com/mikanos/kernel/memory"
	"github.com/mikanos/kernel/message"
	"github.com/mikanos/kernel/task"
)

// Kernel holds every core subsystem, constructed after firmware discovery
// in dependency order (leaves first): the message queue the timer
// interrupt and the task layer share, the LAPIC timer driver (which owns
// the C4 timer manager), the task manager, and the frame allocator.
type Kernel struct {
	Queue  *message.Queue
	Timer  *lapictimer.Driver
	Tasks  *task.Manager
	Memory *memory.Manager
}

// Boot performs firmware discovery (C1), brings up the calibrated LAPIC
// timer (C3, which constructs C4), initializes the task manager (C5), and
// constructs the frame allocator (C6), in that order. rsdp is the
// firmware-provided root pointer; its validation failure is fatal (see
// acpi.Initialize).
func Boot(rsdp acpi.RSDP) *Kernel {
	acpi.Initialize(rsdp)

	k := &Kernel{
		Queue: message.NewQueue(),
	}

	k.Timer = lapictimer.Init(k.Queue)
	k.Tasks = task.NewManager()
	k.Memory = memory.NewManager()

	// lapictimer.Init already installed the scheduler-tick timer at
	// construction (via timer.NewManager); installSchedulerTick adds none,
	// so exactly one TaskTimerValue entry exists after boot, not two.
	k.installSchedulerTick()

	return k
}

// installSchedulerTick is a no-op beyond what lapictimer.Init already did;
// it exists to make the boot sequence's idempotence explicit, rather than
// silently relying on construction-time behavior from two packages away.
func (k *Kernel) installSchedulerTick() {}

// OnTimerInterrupt is the entry point the timer-interrupt collaborator
// calls on every LAPIC timer interrupt: it drains the software timer
// manager and, on a scheduler tick, performs the task switch.
func (k *Kernel) OnTimerInterrupt() {
	if k.Timer.OnInterrupt() {
		k.Tasks.SwitchTask(false)
	}
}
