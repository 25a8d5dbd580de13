package unwind

import (
	"encoding/binary"

	"cortexdbg/cortexerr"
	"cortexdbg/leb128"
)

// cie is a Common Information Entry: the part of .debug_frame shared by
// every FDE that references it.
type cie struct {
	version          byte
	codeAlignment    uint64
	dataAlignment    int64
	returnAddressReg int
	instructions     []byte
}

// fde is a Frame Description Entry: the CFI instructions covering one
// function's address range.
type fde struct {
	id           uint32
	cie          *cie
	startAddress uint32
	endAddress   uint32
	instructions []byte
}

// FrameSection is a parsed .debug_frame section.
type FrameSection struct {
	cies      map[uint32]*cie
	fdes      []*fde
	byteOrder binary.ByteOrder
}

// LoadFrameSection parses the raw bytes of a .debug_frame section. Only
// CIE version 1 (DWARF-2-style, which gcc emits for this section even
// under DWARF-4 .debug_info) is supported; any augmentation string is
// rejected as unsupported since it changes the instruction encoding in
// ways this parser doesn't implement.
func LoadFrameSection(data []byte, byteOrder binary.ByteOrder) (*FrameSection, error) {
	fs := &FrameSection{
		cies:      make(map[uint32]*cie),
		byteOrder: byteOrder,
	}

	var idx int
	for idx < len(data) {
		if idx+4 > len(data) {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated .debug_frame length field")
		}
		length := int(byteOrder.Uint32(data[idx:]))
		idx += 4
		if idx+length > len(data) {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated .debug_frame entry")
		}
		b := data[idx : idx+length]
		idx += length

		id := byteOrder.Uint32(b)
		n := 4

		if id == 0xffffffff {
			c := &cie{}
			c.version = b[n]
			n++
			if c.version != 1 {
				return nil, cortexerr.Coded(cortexerr.DwarfUnsupported, "CIE version %d not supported", c.version)
			}
			if b[n] != 0x00 {
				return nil, cortexerr.Coded(cortexerr.DwarfUnsupported, "CIE augmentation not supported")
			}
			n++

			var m int
			c.codeAlignment, m = leb128.DecodeULEB128(b[n:])
			n += m
			c.dataAlignment, m = leb128.DecodeSLEB128(b[n:])
			n += m
			var raReg uint64
			raReg, m = leb128.DecodeULEB128(b[n:])
			c.returnAddressReg = int(raReg)
			n += m

			c.instructions = append(c.instructions, b[n:]...)

			realID := uint32(idx - length - 4)
			fs.cies[realID] = c
		} else {
			f := &fde{}
			c, ok := fs.cies[id]
			if !ok {
				return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "FDE references unknown CIE %#x", id)
			}
			f.cie = c
			f.id = uint32(idx - length - 4)

			f.startAddress = byteOrder.Uint32(b[n:])
			n += 4
			f.endAddress = byteOrder.Uint32(b[n:]) + f.startAddress
			n += 4

			f.instructions = append(f.instructions, b[n:]...)
			fs.fdes = append(fs.fdes, f)
		}
	}

	return fs, nil
}

// fdeFor returns the FDE covering pc.
func (fs *FrameSection) fdeFor(pc uint32) (*fde, bool) {
	for _, f := range fs.fdes {
		if pc >= f.startAddress && pc < f.endAddress {
			return f, true
		}
	}
	return nil, false
}

// Bounds returns the id and code range of the FDE covering pc, without
// performing a full unwind - used to populate frame 0's CallFrame
// bounds, which Unwind itself never computes since frame 0 isn't the
// product of an Unwind call.
func (fs *FrameSection) Bounds(pc uint32) (id, start, end uint32, ok bool) {
	f, ok := fs.fdeFor(pc)
	if !ok {
		return 0, 0, 0, false
	}
	return f.id, f.startAddress, f.endAddress, true
}
