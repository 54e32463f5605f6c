// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package lapic implements the register-level driver for the Intel Local
// Advanced Programmable Interrupt Controller timer block, adapted from the
// teacher's generic multi-core LAPIC driver (amd64/lapic) down to a single
// fixed-base, single-CPU register set.
package lapic

import "github.com/mikanos/kernel/internal/reg"

// Base is the fixed physical address of the Local APIC register block.
// The teacher parameterizes this per-core for SMP; this core runs on a
// single CPU so it is a constant.
const Base uint32 = 0xfee00000

// Register offsets from Base.
const (
	RegEOI          = 0xb0
	RegLVTTimer     = 0x320
	RegInitialCount = 0x380
	RegCurrentCount = 0x390
	RegDivideConfig = 0x3e0
)

// Divide configuration: divide-by-1.
const DivideBy1 = 0b1011

// LVT Timer mode bit (17) and Mask bit (16): two independent bits, not a
// shared field. ModePeriodic sets bit 17 only; Masked ORs in bit 16
// separately, so the two compose instead of colliding.
const (
	timerModeShift = 16
	ModeOneShot    = 0b00 << timerModeShift
	ModePeriodic   = 0b10 << timerModeShift
	lvtMasked      = 1 << 16
)

// CountMax is the largest value the Initial/Current Count registers hold.
const CountMax uint32 = 0xffffffff

// regRead and regWrite front the raw MMIO accessors, the same injectable-var
// pattern acpi uses for port I/O: production code leaves them pointed at
// reg.Read/reg.Write, tests swap in a backing array so the register
// semantics can be exercised without a real LAPIC.
var (
	regRead  = reg.Read
	regWrite = reg.Write
)

// SetDivideConfig programs the timer's input clock divisor.
func SetDivideConfig(v uint32) {
	regWrite(Base+RegDivideConfig, v)
}

// SetLVTTimer programs the LVT Timer entry: a mode (ModeOneShot or
// ModePeriodic, optionally OR'd with the masked bit) and an interrupt
// vector.
func SetLVTTimer(modeAndMask uint32, vector uint32) {
	regWrite(Base+RegLVTTimer, modeAndMask|(vector&0xff))
}

// SetInitialCount loads the count-down register; writing 0 stops the timer.
func SetInitialCount(v uint32) {
	regWrite(Base+RegInitialCount, v)
}

// CurrentCount reads the live count-down value.
func CurrentCount() uint32 {
	return regRead(Base + RegCurrentCount)
}

// SendEOI signals end-of-interrupt to the LAPIC.
func SendEOI() {
	regWrite(Base+RegEOI, 0)
}

// Masked returns modeAndMask with the LVT mask bit set, used to configure
// the timer entry without yet enabling interrupt delivery (calibration
// phase).
func Masked(modeAndMask uint32) uint32 {
	return modeAndMask | lvtMasked
}

// SetRegistersForTest installs read/write as the register backing store and
// returns a func restoring the previous one, letting other packages'
// tests (lapictimer's calibration, in particular) exercise register-driven
// control flow without real MMIO.
func SetRegistersForTest(read func(uint32) uint32, write func(uint32, uint32)) (restore func()) {
	origRead, origWrite := regRead, regWrite
	regRead, regWrite = read, write
	return func() { regRead, regWrite = origRead, origWrite }
}
