package breakpoint

import (
	"cortexdbg/dwarfinfo"
)

// Location is a resolved breakpoint site: the address to plant the
// breakpoint at and the exact (line, column) it binds to, which may
// differ from the request (a request with no column resolves to the
// line's left edge; a too-large column falls back to the largest
// column actually present).
type Location struct {
	Address uint32
	Line    int
	Column  int
}

// Resolve finds the code address for (file, line, column) by scanning
// every source line recorded for file with a matching line number and
// returning the row with the largest column value that is still <= the
// requested column - the left-most (smallest) column if no column was
// requested. ok is false if no row in file matches line at all, or if a
// column was requested and every matching row's column exceeds it.
// Among rows with the chosen column, the lowest address wins.
//
// Resolution is idempotent: calling Resolve twice with identical
// arguments against the same Source returns identical results, since
// Source's line tables never change after a Program is loaded and ties
// are broken by address rather than by LinesInFile's order.
func Resolve(src *dwarfinfo.Source, file string, line int, column int) (Location, bool) {
	var best *Location
	for _, sl := range src.LinesInFile(file) {
		if sl.Number != line {
			continue
		}
		for i, addr := range sl.BreakAddresses {
			col := sl.BreakColumns[i]

			if column > 0 {
				// Largest column still <= the requested one.
				if col > column {
					continue
				}
				if best == nil || col > best.Column || (col == best.Column && uint32(addr) < best.Address) {
					best = &Location{Address: uint32(addr), Line: line, Column: col}
				}
			} else {
				// No column requested: the left-most (smallest column).
				if best == nil || col < best.Column || (col == best.Column && uint32(addr) < best.Address) {
					best = &Location{Address: uint32(addr), Line: line, Column: col}
				}
			}
		}
	}
	if best == nil {
		return Location{}, false
	}
	return *best, true
}
