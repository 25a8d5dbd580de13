package dwarfinfo

import (
	"debug/dwarf"
	"encoding/binary"

	"cortexdbg/cortexerr"
)

// locationListEntry is one (address range, location expression) span
// read out of .debug_loc, the DWARF4 encoding gcc emits for a variable
// whose storage moves or is only live across part of its function.
type locationListEntry struct {
	start uint64
	end   uint64
	expr  []byte
}

// parseLocList decodes the .debug_loc entries starting at byte offset
// ptr in data, relative to a compile unit's base address (its low_pc).
// The format is the repeating (start uint32, end uint32) pair described
// by DWARF4 section 2.6.2: start == 0xffffffff selects a new base
// address (end becomes the base rather than an expression following
// it), and the list terminates at a (0, 0) pair.
func parseLocList(data []byte, order binary.ByteOrder, ptr int64, base uint64) ([]locationListEntry, error) {
	if ptr < 0 || int(ptr) >= len(data) {
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "location list offset %#x out of range", ptr)
	}

	var entries []locationListEntry
	b := data[ptr:]
	baseAddress := base

	for {
		if len(b) < 8 {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated .debug_loc entry")
		}
		start := order.Uint32(b)
		end := order.Uint32(b[4:])
		b = b[8:]

		if start == 0xffffffff {
			baseAddress = uint64(end)
			continue
		}
		if start == 0 && end == 0 {
			break
		}

		if len(b) < 2 {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated .debug_loc expression length")
		}
		length := order.Uint16(b)
		b = b[2:]
		if len(b) < int(length) {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated .debug_loc expression")
		}

		entries = append(entries, locationListEntry{
			start: baseAddress + uint64(start),
			end:   baseAddress + uint64(end),
			expr:  b[:length:length],
		})
		b = b[length:]
	}

	return entries, nil
}

// LocationAt resolves attribute at on e, dispatching on its DWARF class:
// an exprloc/block attribute is location-independent and always
// present/covered; a loclistptr attribute is an offset into .debug_loc
// that must be scanned for the entry covering pc. present is false when
// the attribute is absent entirely (optimized out or a pure
// declaration); covered is false when the attribute resolved to a
// location list but none of its ranges cover pc (the variable's storage
// isn't valid at this code location).
func (p *Program) LocationAt(e *dwarf.Entry, at dwarf.Attr, pc uint64) (code []byte, present bool, covered bool, err error) {
	f := e.AttrField(at)
	if f == nil {
		return nil, false, false, nil
	}

	switch f.Class {
	case dwarf.ClassExprLoc, dwarf.ClassBlock:
		b, ok := f.Val.([]byte)
		if !ok {
			return nil, false, false, cortexerr.Coded(cortexerr.DwarfMalformed, "location attribute at %#x is not a byte block", e.Offset)
		}
		return b, true, true, nil

	case dwarf.ClassLocListPtr:
		data, _ := p.Section(".debug_loc")
		if data == nil {
			if loclists, _ := p.Section(".debug_loclists"); loclists != nil {
				return nil, true, false, cortexerr.Coded(cortexerr.DwarfUnsupported, "DWARF5 .debug_loclists is not supported")
			}
			return nil, false, false, cortexerr.Coded(cortexerr.DwarfMalformed, "location attribute at %#x is a location list offset but no .debug_loc section is present", e.Offset)
		}

		ptr, ok := f.Val.(int64)
		if !ok {
			return nil, false, false, cortexerr.Coded(cortexerr.DwarfMalformed, "location list attribute at %#x has a non-integer offset", e.Offset)
		}

		cu, ok := p.CompileUnitOf(e)
		if !ok {
			cu = e
		}
		base, _ := Uint64(cu, dwarf.AttrLowpc)

		entries, err := parseLocList(data, p.ByteOrder, ptr, base)
		if err != nil {
			return nil, false, false, err
		}
		for _, le := range entries {
			if pc >= le.start && pc < le.end {
				return le.expr, true, true, nil
			}
		}
		return nil, true, false, nil

	default:
		return nil, false, false, cortexerr.Coded(cortexerr.DwarfUnsupported, "unsupported location attribute class for %#x", e.Offset)
	}
}
