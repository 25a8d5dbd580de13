package dwarfinfo

import "debug/dwarf"

// TestLine is one line-program row, for constructing a Source directly
// in tests without a compiled ELF/DWARF fixture.
type TestLine struct {
	Number  int
	Column  int
	Address uint64
}

// NewSourceForTesting builds a Source from a file -> rows map, mirroring
// what buildLinesForUnit produces from a real line-number program. Used
// by other packages' tests (breakpoint) that need a Source but have no
// reason to parse real DWARF bytes.
func NewSourceForTesting(files map[string][]TestLine) *Source {
	src := &Source{
		Files:          make(map[string]*SourceFile),
		linesByAddress: make(map[uint64]*SourceLine),
		functionsByDIE: make(map[dwarf.Offset]*SourceFunction),
	}

	for path, rows := range files {
		file := &SourceFile{Path: path}
		src.Files[path] = file

		for _, r := range rows {
			line := &SourceLine{
				File:           file,
				Number:         r.Number,
				StartAddr:      r.Address,
				EndAddr:        r.Address + 1,
				BreakAddresses: []uint64{r.Address},
				BreakColumns:   []int{r.Column},
			}
			src.linesByAddress[r.Address] = line
		}
	}

	return src
}
