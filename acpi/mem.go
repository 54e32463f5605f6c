// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package acpi

import "unsafe"

// physBytes reinterprets a physical memory address as a read-only byte
// slice of the given length. Firmware tables are immutable external
// memory; this is the only place that address is ever dereferenced, every
// other accessor in this package works against the resulting slice and
// re-checks its own bounds, per the "raw pointers into physical memory"
// guidance: never dereference an unvalidated header.
//
// This plays the same role as the teacher DMA allocator's block.read,
// which maps a physical address into a []byte via an unsafe pointer
// (dma/alloc.go); here the mapping is read-only and long-lived rather than
// a transient DMA buffer view.
func physBytes(addr uint64, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), length)
}
