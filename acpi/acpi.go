// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package acpi implements the firmware-table reader (C1) and the ACPI PM
// timer blocking wait (C2): validating the firmware root pointer, walking
// the extended system description table to find the FADT, and busy-waiting
// on the PM timer counter it exposes.
package acpi

import (
	"github.com/mikanos/kernel/internal/reg"
	"github.com/mikanos/kernel/klog"
)

// ACPIPMFreq is the fixed frequency, in Hz, of the ACPI PM timer counter.
const ACPIPMFreq = 3579545

// readPort reads the PM timer counter. It defaults to the real port-I/O
// primitive but is swapped out in tests, the same way the pack's own
// ACPI PM timer stub (tinyrange-cc's chipset.PM) models the counter
// behind a narrow, mockable read rather than hard-wiring hardware access
// into the wait loop.
var readPort = reg.In32

// fadt is the process-wide Fixed ACPI Description Table, set exactly once
// by Initialize and read-only thereafter. Firmware tables outlive the
// process; there is no teardown.
var fadt FADT

// Initialize validates rsdp, walks its XSDT, and records the FADT entry
// (signature "FACP"). Any validation failure is fatal: it is logged and
// the boot halts, there is no recovery path for a kernel that cannot
// discover its own timer hardware.
func Initialize(rsdp RSDP) {
	if !rsdp.IsValid() {
		klog.Log(klog.Error, "RSDP is not valid")
		panic("acpi: invalid RSDP")
	}

	xsdt := ReadXSDT(rsdp.XSDTAddress())
	if !xsdt.Header().IsValid("XSDT") {
		klog.Log(klog.Error, "XSDT is not found")
		panic("acpi: invalid XSDT")
	}

	var found *FADT

	for i := 0; i < xsdt.Count(); i++ {
		entry := xsdt.Entry(i)
		if entry.IsValid("FACP") {
			f := NewFADT(entry, entry.mem)
			found = &f
			break
		}
	}

	if found == nil {
		klog.Log(klog.Error, "FADT is not found")
		panic("acpi: FADT not found")
	}

	fadt = *found
}

// CurrentFADT returns the FADT discovered by Initialize.
func CurrentFADT() FADT {
	return fadt
}

// WaitMilliseconds blocks the calling CPU for approximately ms
// milliseconds, measured against the 3.579545 MHz ACPI PM timer counter.
// Initialize must have succeeded first.
func WaitMilliseconds(ms uint64) {
	width32 := fadt.PMTimerIs32Bit()
	port := fadt.PMTimerBlock()

	start := readPort(port)
	end := start + uint32(ACPIPMFreq*ms/1000)

	if !width32 {
		end &= 0x00ffffff
	}

	if end < start {
		for readPort(port) >= start {
		}
	}

	for readPort(port) < end {
	}
}
