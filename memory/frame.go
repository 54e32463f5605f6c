// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package memory implements the bitmap physical-frame allocator (C6) and
// the kernel heap bootstrap built on top of it.
package memory

// BytesPerFrame is the fixed unit of physical memory this allocator hands
// out.
const BytesPerFrame = 4096

// FrameID identifies a physical frame by index.
type FrameID uint64

// NullFrame is the reserved sentinel frame ID (all-ones), returned
// alongside an error from a failed Allocate.
const NullFrame FrameID = ^FrameID(0)

// Address returns the physical address of the start of the frame.
func (f FrameID) Address() uint64 {
	return uint64(f) * BytesPerFrame
}
