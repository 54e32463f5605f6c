// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package lapictimer implements one-shot calibration of the Local APIC
// timer against the ACPI PM timer wait, followed by a periodic 100 Hz
// interrupting tick. The calibration shape follows the teacher's
// amd64/timer.go calibrateByTimer (measure elapsed hardware counts over a
// fixed wait, derive a frequency), adapted to calibrate purely against
// acpi.WaitMilliseconds rather than the TSC or a KVM paravirt clock, which
// this core has no use for.
package lapictimer

import (
	"github.com/mikanos/kernel/acpi"
	"github.com/mikanos/kernel/lapic"
	"github.com/mikanos/kernel/message"
	"github.com/mikanos/kernel/timer"
)

// VectorLAPICTimer is the interrupt vector the periodic LAPIC timer fires.
// Assignment of the IDT entry itself belongs to the interrupt-controller
// collaborator; this core only needs the numeric vector to program the LVT
// entry with it.
const VectorLAPICTimer = 0x40

// calibrationWaitMS is how long Init waits while measuring the LAPIC
// timer's native tick rate.
const calibrationWaitMS = 100

// waitMilliseconds fronts the calibration wait the same way acpi.readPort
// fronts port I/O: production code leaves it pointed at acpi.WaitMilliseconds,
// tests swap in a fake clock so calibration can be exercised without a real
// ACPI PM timer.
var waitMilliseconds = acpi.WaitMilliseconds

// Driver owns the LAPIC periodic timer and the C4 manager it drives.
type Driver struct {
	// Freq is the calibrated LAPIC timer frequency in ticks per second.
	Freq    uint32
	Manager *timer.Manager
}

// Init constructs the software timer manager, calibrates the LAPIC timer
// by racing it against a known-duration ACPI PM timer wait, then
// reprograms it to interrupt periodically at timer.TimerFreq Hz.
func Init(queue *message.Queue) *Driver {
	d := &Driver{Manager: timer.NewManager(queue, 0)}

	// one-shot, masked: measure the native tick rate without yet wiring
	// an interrupt vector.
	lapic.SetDivideConfig(lapic.DivideBy1)
	lapic.SetLVTTimer(lapic.Masked(lapic.ModeOneShot), 0)

	lapic.SetInitialCount(lapic.CountMax)
	waitMilliseconds(calibrationWaitMS)
	elapsed := lapic.CountMax - lapic.CurrentCount()
	lapic.SetInitialCount(0)

	d.Freq = elapsed * (1000 / calibrationWaitMS)

	lapic.SetDivideConfig(lapic.DivideBy1)
	lapic.SetLVTTimer(lapic.ModePeriodic, VectorLAPICTimer)
	lapic.SetInitialCount(d.Freq / timer.TimerFreq)

	return d
}

// SetWaitMillisecondsForTest installs fn as the calibration wait, returning
// a func that restores the previous one. It lets other packages' tests
// (the kernel boot sequence, in particular) exercise Init without a real
// ACPI PM timer.
func SetWaitMillisecondsForTest(fn func(uint64)) (restore func()) {
	orig := waitMilliseconds
	waitMilliseconds = fn
	return func() { waitMilliseconds = orig }
}

// OnInterrupt is the LAPIC timer ISR body. It drains the software timer
// manager, signals end-of-interrupt, and reports whether a scheduler tick
// fired so the caller can invoke the task switch; the switch itself is
// deliberately not performed here; the caller owns the task manager so the
// ISR need not import it.
func (d *Driver) OnInterrupt() (schedulerTick bool) {
	schedulerTick = d.Manager.Tick()
	lapic.SendEOI()
	return schedulerTick
}
