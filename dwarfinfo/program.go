package dwarfinfo

import (
	"debug/dwarf"
	"debug/elf"
	"encoding/binary"
	"io"
	"log/slog"

	"cortexdbg/cortexerr"
)

// Program is a loaded ELF image and its parsed DWARF debug information:
// every compile unit's DIE tree, plus the derived source-line and
// function tables built by buildSource.
type Program struct {
	Path string

	elf  *elf.File
	dwrf *dwarf.Data

	ByteOrder binary.ByteOrder

	// entries indexes every DIE in the program by its section offset,
	// so C2 accessors and C5 type resolution can jump straight to a
	// referenced DIE instead of re-walking the compile unit.
	entries map[dwarf.Offset]*dwarf.Entry

	// compileUnitOf maps a DIE's offset to the entry of the compile
	// unit that contains it. Needed because AttrDeclFile is only
	// resolvable relative to its owning compile unit's line program.
	compileUnitOf map[dwarf.Offset]*dwarf.Entry

	// order preserves DWARF encounter order, which several builders
	// below (Source line table, call-frame info) depend on.
	order []*dwarf.Entry

	Source *Source

	log *slog.Logger
}

// Load opens path as an ELF file and parses its DWARF sections. An ELF
// image without DWARF data (stripped firmware) returns
// cortexerr.Coded(cortexerr.DwarfMalformed, ...).
func Load(path string, log *slog.Logger) (*Program, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "opening %s: %s", path, err)
	}

	dwrf, err := ef.DWARF()
	if err != nil {
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "no DWARF data in %s: %s", path, err)
	}

	p := &Program{
		Path:          path,
		elf:           ef,
		dwrf:          dwrf,
		ByteOrder:     ef.ByteOrder,
		entries:       make(map[dwarf.Offset]*dwarf.Entry),
		compileUnitOf: make(map[dwarf.Offset]*dwarf.Entry),
		log:           log,
	}

	if err := p.index(); err != nil {
		return nil, err
	}

	if err := p.buildSource(); err != nil {
		return nil, err
	}

	return p, nil
}

// index walks every DIE once, recording its offset and owning compile
// unit, mirroring the teacher's build.order/build.entries/
// build.compileUnits bookkeeping.
func (p *Program) index() error {
	var compileUnit *dwarf.Entry

	r := p.dwrf.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return cortexerr.Coded(cortexerr.DwarfMalformed, "walking DIE tree: %s", err)
		}
		if entry == nil {
			break
		}
		if entry.Offset == 0 {
			continue
		}

		if entry.Tag == dwarf.TagCompileUnit {
			compileUnit = entry
		}

		p.order = append(p.order, entry)
		p.entries[entry.Offset] = entry
		p.compileUnitOf[entry.Offset] = compileUnit
	}

	return nil
}

// EntryAt returns the DIE at a section offset, as referenced by another
// DIE's attribute (a type reference, an abstract-origin, ...).
func (p *Program) EntryAt(off dwarf.Offset) (*dwarf.Entry, bool) {
	e, ok := p.entries[off]
	return e, ok
}

// CompileUnitOf returns the compile-unit DIE that owns e.
func (p *Program) CompileUnitOf(e *dwarf.Entry) (*dwarf.Entry, bool) {
	cu, ok := p.compileUnitOf[e.Offset]
	return cu, ok && cu != nil
}

// Children returns e's direct DIE children (struct members, subrange
// DIEs under an array, enumerators under an enum, ...), in encounter
// order. Returns nil if e.Children is false.
func (p *Program) Children(e *dwarf.Entry) []*dwarf.Entry {
	if !e.Children {
		return nil
	}

	r := p.dwrf.Reader()
	r.Seek(e.Offset)
	if _, err := r.Next(); err != nil {
		return nil
	}

	var children []*dwarf.Entry
	depth := 0
	for {
		child, err := r.Next()
		if err != nil || child == nil {
			return children
		}
		if child.Tag == 0 {
			if depth == 0 {
				return children
			}
			depth--
			continue
		}
		if depth == 0 {
			children = append(children, child)
		}
		if child.Children {
			depth++
		}
	}
}

// LineReader returns a DWARF line-number program reader for the compile
// unit owning e.
func (p *Program) LineReader(e *dwarf.Entry) (*dwarf.LineReader, error) {
	cu, ok := p.CompileUnitOf(e)
	if !ok {
		cu = e
	}
	r, err := p.dwrf.LineReader(cu)
	if err != nil {
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "no line program for compile unit: %s", err)
	}
	return r, nil
}

// Section returns the raw bytes and load address of a named ELF
// section (used for .debug_loc/.debug_loclists/.debug_frame, which
// debug/dwarf does not parse itself).
func (p *Program) Section(name string) ([]byte, uint64) {
	sec := p.elf.Section(name)
	if sec == nil {
		return nil, 0
	}
	d, err := sec.Data()
	if err != nil {
		return nil, 0
	}
	return d, sec.Addr
}

// Symbols returns the ELF symbol table. Function ranges are taken from
// DWARF low_pc/high_pc only; they are not bounded from this table.
func (p *Program) Symbols() []elf.Symbol {
	syms, _ := p.elf.Symbols()
	return syms
}

// Entries exposes DIE encounter order, used by callers that need to
// visit every DIE of a particular tag.
func (p *Program) Entries() []*dwarf.Entry {
	return p.order
}
