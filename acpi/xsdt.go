// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package acpi

import "encoding/binary"

// XSDT is the Extended System Description Table: a description header
// followed by (Length-HeaderSize)/8 little-endian 64-bit physical
// pointers to further description headers.
type XSDT struct {
	header DescriptionHeader
	mem    []byte
}

// NewXSDT wraps an already-read XSDT buffer, used directly by tests.
func NewXSDT(mem []byte) XSDT {
	return XSDT{header: newHeader(mem), mem: mem}
}

// ReadXSDT reads an XSDT from physical memory starting at addr. The header
// is consulted first to discover the table's true length before its
// pointer entries are read.
func ReadXSDT(addr uint64) XSDT {
	h := readTable(addr)
	return NewXSDT(h.mem)
}

// Header returns the table's description header.
func (x XSDT) Header() DescriptionHeader {
	return x.header
}

// Count returns the number of description-header pointers the table holds.
func (x XSDT) Count() int {
	length := x.header.Length()
	if int(length) < HeaderSize {
		return 0
	}
	return int(length-HeaderSize) / 8
}

// Entry returns the description header pointed to by the i-th XSDT entry.
func (x XSDT) Entry(i int) DescriptionHeader {
	off := HeaderSize + i*8
	entryAddr := binary.LittleEndian.Uint64(x.mem[off : off+8])
	return readTable(entryAddr)
}

// readTable reads a description header from physical memory, re-reading
// once its self-reported length is known so checksum validation can see
// the whole table rather than just the header.
func readTable(addr uint64) DescriptionHeader {
	probe := physBytes(addr, HeaderSize)
	length := binary.LittleEndian.Uint32(probe[4:8])

	if length < HeaderSize {
		length = HeaderSize
	}

	return newHeader(physBytes(addr, int(length)))
}
