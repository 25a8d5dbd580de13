// Package breakpoint implements the breakpoint resolver (C8): it
// translates a (source file, line, optional column) request into a
// target code address by consulting the line-number program already
// indexed by dwarfinfo.Source (C3).
//
// Resolution is a pure lookup over already-parsed DWARF data; it never
// touches the target and never suspends.
package breakpoint
