// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package memory

import "github.com/mikanos/kernel/kernelerr"

// HeapFrames is the number of frames InitializeHeap reserves for the
// kernel heap: 64*512 frames of 4 KiB each, 128 MiB total.
const HeapFrames = 64 * 512

// ProgramBreak and ProgramBreakEnd are the linker-provided symbols
// InitializeHeap sets: the start and end of the kernel heap region a
// freestanding libc-style allocator (malloc/sbrk) grows within. They are
// exported package variables rather than cgo-linked symbols because this
// core has no linker script of its own to export them from.
var (
	ProgramBreak    uint64
	ProgramBreakEnd uint64
)

// InitializeHeap allocates HeapFrames frames from m and publishes the
// resulting range as ProgramBreak/ProgramBreakEnd.
func InitializeHeap(m *Manager) kernelerr.Error {
	start, err := m.Allocate(HeapFrames)
	if !err.Ok() {
		return err
	}

	ProgramBreak = start.Address()
	ProgramBreakEnd = ProgramBreak + HeapFrames*BytesPerFrame

	return kernelerr.Error{}
}
