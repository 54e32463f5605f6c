// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package memory

import "github.com/mikanos/kernel/kernelerr"

// MaxPhysicalMemoryBytes bounds the physical address space this allocator
// can describe: 128 GiB covers every machine this core targets without an
// unreasonably large bitmap.
const MaxPhysicalMemoryBytes = 128 << 30

// FrameCount is the total number of frames the bitmap can represent.
const FrameCount = MaxPhysicalMemoryBytes / BytesPerFrame

// wordBits is the width, in bits, of one bitmap word.
const wordBits = 64

// Manager is the bitmap-based physical-frame allocator. Every frame in
// [rangeBegin, rangeEnd) is either allocated or free; bits outside that
// range are treated as allocated (unreachable to Allocate's search).
type Manager struct {
	bitmap     []uint64
	rangeBegin FrameID
	rangeEnd   FrameID
}

// NewManager constructs an allocator over the full FrameCount frame space,
// entirely free, searchable over the whole range.
func NewManager() *Manager {
	return &Manager{
		bitmap:     make([]uint64, FrameCount/wordBits),
		rangeBegin: 0,
		rangeEnd:   FrameCount,
	}
}

// SetMemoryRange restricts subsequent Allocate calls to [begin, end); it
// does not alter any bit.
func (m *Manager) SetMemoryRange(begin, end FrameID) {
	m.rangeBegin = begin
	m.rangeEnd = end
}

func (m *Manager) getBit(f FrameID) bool {
	word, bit := f/wordBits, f%wordBits
	return m.bitmap[word]&(1<<bit) != 0
}

func (m *Manager) setBit(f FrameID, allocated bool) {
	word, bit := f/wordBits, f%wordBits
	if allocated {
		m.bitmap[word] |= 1 << bit
	} else {
		m.bitmap[word] &^= 1 << bit
	}
}

// MarkAllocated marks n consecutive frames starting at start as allocated,
// without searching for free space first.
func (m *Manager) MarkAllocated(start FrameID, n int) {
	for i := 0; i < n; i++ {
		m.setBit(start+FrameID(i), true)
	}
}

// Allocate finds the first run of n consecutive free frames within
// [rangeBegin, rangeEnd), forward-scanning from rangeBegin, marks it
// allocated, and returns its starting FrameID. Allocate(0) succeeds and
// returns rangeBegin without marking anything (see DESIGN.md).
func (m *Manager) Allocate(n int) (FrameID, kernelerr.Error) {
	if n == 0 {
		return m.rangeBegin, kernelerr.Error{}
	}

	start := m.rangeBegin

	for {
		i := 0
		for ; i < n; i++ {
			if start+FrameID(i) >= m.rangeEnd {
				return NullFrame, kernelerr.New(kernelerr.NoEnoughMemory)
			}
			if m.getBit(start + FrameID(i)) {
				break
			}
		}

		if i == n {
			m.MarkAllocated(start, n)
			return start, kernelerr.Error{}
		}

		start += FrameID(i) + 1
	}
}

// Free clears n consecutive bits starting at start. Double-free and
// out-of-range free are silently accepted (see DESIGN.md's open-question
// decision): this always reports success.
func (m *Manager) Free(start FrameID, n int) kernelerr.Error {
	for i := 0; i < n; i++ {
		f := start + FrameID(i)
		if int(f/wordBits) >= len(m.bitmap) {
			continue
		}
		m.setBit(f, false)
	}
	return kernelerr.Error{}
}
