package dwarfinfo

import (
	"debug/dwarf"

	"cortexdbg/cortexerr"
)

// Attr reads a raw attribute value from a DIE. ok is false if the DIE
// doesn't carry that attribute at all.
func Attr(e *dwarf.Entry, at dwarf.Attr) (interface{}, bool) {
	f := e.AttrField(at)
	if f == nil {
		return nil, false
	}
	return f.Val, true
}

// Uint64 reads an attribute expected to be an unsigned integer
// (byte_size, bit_size, data_member_location when an immediate offset,
// const_value, ...).
func Uint64(e *dwarf.Entry, at dwarf.Attr) (uint64, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

// Int64 reads an attribute expected to be a signed integer
// (const_value on enumerators, upper_bound/count on subranges, ...).
func Int64(e *dwarf.Entry, at dwarf.Attr) (int64, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// String reads a string-valued attribute (name, producer, comp_dir, ...).
func String(e *dwarf.Entry, at dwarf.Attr) (string, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool reads a flag-valued attribute (external, declaration,
// prototyped, ...).
func Bool(e *dwarf.Entry, at dwarf.Attr) (bool, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Offset reads a reference-valued attribute (type, abstract_origin,
// specification, ...) as the dwarf.Offset of the referenced DIE.
func Offset(e *dwarf.Entry, at dwarf.Attr) (dwarf.Offset, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return 0, false
	}
	off, ok := v.(dwarf.Offset)
	return off, ok
}

// Bytes reads an exprloc/block-valued attribute (location,
// data_member_location when expression-valued, ...) as raw bytes.
func Bytes(e *dwarf.Entry, at dwarf.Attr) ([]byte, bool) {
	v, ok := Attr(e, at)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Name is a convenience wrapper returning DW_AT_name, or "" if absent.
func Name(e *dwarf.Entry) string {
	s, _ := String(e, dwarf.AttrName)
	return s
}

// Type resolves a DIE's DW_AT_type reference to the referenced type DIE.
// ok is false for a void type (the attribute is legitimately absent, as
// on a function returning nothing) or a dangling reference.
func (p *Program) Type(e *dwarf.Entry) (*dwarf.Entry, bool) {
	off, ok := Offset(e, dwarf.AttrType)
	if !ok {
		return nil, false
	}
	return p.EntryAt(off)
}

// ByteSize returns DW_AT_byte_size, defaulting to 0 (void-sized) when
// absent, which is a legitimate DWARF encoding for types like void
// pointers' target type.
func ByteSize(e *dwarf.Entry) int64 {
	n, _ := Int64(e, dwarf.AttrByteSize)
	return n
}

// Discr resolves a DW_TAG_variant_part's DW_AT_discr reference to
// the member DIE holding the active variant's selector. ok is false for
// a variant_part with no explicit discriminant (the selector is then
// the variant_part's own bytes rather than a named sibling member).
func (p *Program) Discr(e *dwarf.Entry) (*dwarf.Entry, bool) {
	off, ok := Offset(e, dwarf.AttrDiscr)
	if !ok {
		return nil, false
	}
	return p.EntryAt(off)
}

// DiscrValue reads a DW_TAG_variant's DW_AT_discr_value: the
// discriminant value selecting that variant.
func DiscrValue(e *dwarf.Entry) (int64, bool) {
	return Int64(e, dwarf.AttrDiscrValue)
}

// Alignment reads DW_AT_alignment, defaulting to 0 (no explicit
// alignment constraint) when absent.
func Alignment(e *dwarf.Entry) uint64 {
	n, _ := Uint64(e, dwarf.AttrAlignment)
	return n
}

// AddrClass reads a pointer_type's DW_AT_address_class, defaulting to 0
// (the generic address space) when absent.
func AddrClass(e *dwarf.Entry) int64 {
	n, _ := Int64(e, dwarf.AttrAddrClass)
	return n
}

// RequireName is the same as Name but raises a DwarfMalformed error if
// the attribute is genuinely absent, for contexts (top-level functions
// and variables) where an unnamed DIE indicates malformed input rather
// than a legitimate anonymous construct.
func RequireName(e *dwarf.Entry) (string, error) {
	s, ok := String(e, dwarf.AttrName)
	if !ok || s == "" {
		return "", cortexerr.Coded(cortexerr.DwarfMalformed, "DIE at offset %#x has no name", e.Offset)
	}
	return s, nil
}
