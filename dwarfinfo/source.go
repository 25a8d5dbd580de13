package dwarfinfo

import (
	"debug/dwarf"

	"cortexdbg/cortexerr"
)

// SourceFile is one compilation unit's source file, identified by the
// path DWARF recorded for it.
type SourceFile struct {
	Path string
}

// SourceLine is a single line of source associated with an address
// range of generated code.
type SourceLine struct {
	File   *SourceFile
	Number int

	// StartAddr/EndAddr bound the instructions generated for this line.
	StartAddr uint64
	EndAddr   uint64

	// BreakAddresses are the statement-boundary addresses within this
	// line a breakpoint can legally be set on (DW_LNS_set_stmt rows).
	BreakAddresses []uint64

	// BreakColumns is BreakAddresses' column number for each entry, same
	// index, used by the breakpoint resolver (C8) to pick the row whose
	// column is the largest one still <= a requested column.
	BreakColumns []int

	Function *SourceFunction
}

// SourceFunction is a subprogram DIE with its resolved address range.
type SourceFunction struct {
	Name      string
	DIE       *dwarf.Entry
	LowPC     uint64
	HighPC    uint64
	Inline    bool
}

func (f *SourceFunction) contains(addr uint64) bool {
	return addr >= f.LowPC && addr < f.HighPC
}

func (f *SourceFunction) size() uint64 {
	return f.HighPC - f.LowPC
}

// Source is the C3 source-information mapper: the derived, queryable
// line/function tables built once at load time from a Program's DWARF
// data.
type Source struct {
	Files     map[string]*SourceFile
	Functions []*SourceFunction

	linesByAddress map[uint64]*SourceLine
	functionsByDIE map[dwarf.Offset]*SourceFunction
}

// buildSource walks every compile unit's line-number program, builds
// the line and function tables, and links instructions at an address
// to both a line and the function enclosing it.
func (p *Program) buildSource() error {
	src := &Source{
		Files:          make(map[string]*SourceFile),
		linesByAddress: make(map[uint64]*SourceLine),
		functionsByDIE: make(map[dwarf.Offset]*SourceFunction),
	}
	p.Source = src

	if err := p.buildFunctions(src); err != nil {
		return err
	}
	if err := p.buildLines(src); err != nil {
		return err
	}
	p.assignFunctionsToLines(src)

	return nil
}

// buildFunctions collects every subprogram/inlined_subroutine DIE with
// a resolvable address range.
func (p *Program) buildFunctions(src *Source) error {
	for _, e := range p.order {
		if e.Tag != dwarf.TagSubprogram && e.Tag != dwarf.TagInlinedSubroutine {
			continue
		}

		low, ok := Uint64(e, dwarf.AttrLowpc)
		if !ok {
			continue // declaration only, or location covered by ranges (not modeled here)
		}
		high, ok := p.highpc(e, low)
		if !ok {
			continue
		}

		name := Name(e)
		if name == "" {
			if origin, ok := Offset(e, dwarf.AttrAbstractOrigin); ok {
				if oe, ok := p.EntryAt(origin); ok {
					name = Name(oe)
				}
			}
		}

		fn := &SourceFunction{
			Name:   name,
			DIE:    e,
			LowPC:  low,
			HighPC: high,
			Inline: e.Tag == dwarf.TagInlinedSubroutine,
		}
		src.Functions = append(src.Functions, fn)
		src.functionsByDIE[e.Offset] = fn
	}

	return nil
}

// highpc resolves DW_AT_high_pc, which DWARF permits as either an
// absolute address or an offset from low_pc depending on the attribute
// class.
func (p *Program) highpc(e *dwarf.Entry, low uint64) (uint64, bool) {
	f := e.AttrField(dwarf.AttrHighpc)
	if f == nil {
		return 0, false
	}
	switch v := f.Val.(type) {
	case uint64:
		if f.Class == dwarf.ClassAddress {
			return v, true
		}
		return low + v, true
	case int64:
		return low + uint64(v), true
	}
	return 0, false
}

// PCRange resolves a DIE's DW_AT_low_pc/DW_AT_high_pc address range, the
// way buildFunctions does for subprogram DIEs, exported so the frame
// composer (C7) can apply the same range test to lexical_block DIEs when
// pruning out-of-scope variable subtrees.
func (p *Program) PCRange(e *dwarf.Entry) (low, high uint64, ok bool) {
	low, ok = Uint64(e, dwarf.AttrLowpc)
	if !ok {
		return 0, 0, false
	}
	high, ok = p.highpc(e, low)
	return low, high, ok
}

// buildLines walks each compile unit's line-number program, assigning
// source lines their address ranges and break addresses.
func (p *Program) buildLines(src *Source) error {
	seen := make(map[*dwarf.Entry]bool)

	for _, e := range p.order {
		if e.Tag != dwarf.TagCompileUnit {
			continue
		}
		if seen[e] {
			continue
		}
		seen[e] = true

		if err := p.buildLinesForUnit(src, e); err != nil {
			return err
		}
	}

	return nil
}

func (p *Program) buildLinesForUnit(src *Source, cu *dwarf.Entry) error {
	r, err := p.dwrf.LineReader(cu)
	if err != nil || r == nil {
		return nil // compile unit has no line program; not an error
	}

	var rows []dwarf.LineEntry
	for {
		var le dwarf.LineEntry
		if err := r.Next(&le); err != nil {
			break
		}
		rows = append(rows, le)
	}

	for i, le := range rows {
		if le.EndSequence {
			continue
		}

		start := le.Address
		var end uint64
		if i+1 < len(rows) {
			end = rows[i+1].Address
		} else {
			end = start + 4
		}
		if start >= end {
			continue
		}

		file := src.Files[le.File.Name]
		if file == nil {
			file = &SourceFile{Path: le.File.Name}
			src.Files[le.File.Name] = file
		}

		line := &SourceLine{
			File:      file,
			Number:    le.Line,
			StartAddr: start,
			EndAddr:   end,
		}

		for addr := start; addr < end; addr++ {
			if _, exists := src.linesByAddress[addr]; !exists {
				src.linesByAddress[addr] = line
			}
		}

		if le.IsStmt {
			line.BreakAddresses = append(line.BreakAddresses, start)
			line.BreakColumns = append(line.BreakColumns, le.Column)
		}
	}

	return nil
}

// assignFunctionsToLines links each line to the smallest enclosing
// function, preferring an inlined range over its enclosing non-inline
// function when both cover the same address.
func (p *Program) assignFunctionsToLines(src *Source) {
	for addr, line := range src.linesByAddress {
		var best *SourceFunction
		for _, fn := range src.Functions {
			if !fn.contains(addr) {
				continue
			}
			if best == nil {
				best = fn
				continue
			}
			switch {
			case fn.Inline && !best.Inline:
				best = fn
			case fn.Inline == best.Inline && fn.size() < best.size():
				best = fn
			}
		}
		line.Function = best
	}
}

// LineAt returns the source line containing addr.
func (s *Source) LineAt(addr uint64) (*SourceLine, bool) {
	l, ok := s.linesByAddress[addr]
	return l, ok
}

// FunctionContaining returns the smallest function DIE enclosing addr.
// The stack-frame composer (C7) uses FunctionContainingStrict instead.
func (s *Source) FunctionContaining(addr uint64) (*SourceFunction, bool) {
	var best *SourceFunction
	for _, fn := range s.Functions {
		if !fn.contains(addr) {
			continue
		}
		if best == nil || fn.size() < best.size() {
			best = fn
		}
	}
	return best, best != nil
}

// FunctionContainingStrict is FunctionContaining with the ambiguity
// check the stack-frame composer (C7) requires: if more than one
// function at the deepest (smallest) enclosing size covers addr, that's
// a fatal, upstream bug rather than a pickable default.
func (s *Source) FunctionContainingStrict(addr uint64) (*SourceFunction, error) {
	var candidates []*SourceFunction
	var bestSize uint64
	for _, fn := range s.Functions {
		if !fn.contains(addr) {
			continue
		}
		sz := fn.size()
		switch {
		case len(candidates) == 0 || sz < bestSize:
			candidates = []*SourceFunction{fn}
			bestSize = sz
		case sz == bestSize:
			candidates = append(candidates, fn)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "no function covers address %#x", addr)
	case 1:
		return candidates[0], nil
	default:
		return nil, cortexerr.Coded(cortexerr.AmbiguousFunction, "%d functions equally enclose address %#x", len(candidates), addr)
	}
}

// FunctionsNamed returns every function DIE with the given name. More
// than one result means the name is ambiguous (common with inlining
// and static functions across translation units); a caller that
// requires a single match must decide how to handle more than one hit.
func (s *Source) FunctionsNamed(name string) []*SourceFunction {
	var out []*SourceFunction
	for _, fn := range s.Functions {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	return out
}

// LinesInFile returns every source line recorded for path, used by the
// breakpoint resolver (C8) to scan a file for a requested line number.
func (s *Source) LinesInFile(path string) []*SourceLine {
	var out []*SourceLine
	seen := make(map[*SourceLine]bool)
	for _, l := range s.linesByAddress {
		if l.File.Path != path {
			continue
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
