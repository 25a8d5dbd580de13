package value

import (
	"debug/dwarf"

	"cortexdbg/cortexerr"
	"cortexdbg/dwarfinfo"
)

// TypeKind classifies a DWARF type DIE for dispatch purposes.
type TypeKind int

const (
	KindBase TypeKind = iota
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindVariantPart
)

// Encoding narrows KindBase values, mirroring DW_ATE_* encodings.
type Encoding int

const (
	EncodingUnsigned Encoding = iota
	EncodingSigned
	EncodingBoolean
	EncodingFloat
)

// Member is one field of a struct/union type.
type Member struct {
	Name         string
	Type         *Type
	BitOffset    uint64 // offset in bits from the start of the composite
	ByteLocation bool   // true if the offset was DW_AT_data_member_location (a byte offset) rather than a bit-only layout
}

// Type is a resolved DWARF type, generalized enough to drive the value
// evaluator's type-tree dispatch without holding onto a *dwarf.Entry
// past construction.
type Type struct {
	Name     string
	Kind     TypeKind
	ByteSize int64

	Encoding Encoding // valid when Kind == KindBase

	Pointee *Type // valid when Kind == KindPointer

	ElementType  *Type // valid when Kind == KindArray
	ElementCount int64 // valid when Kind == KindArray

	Members []Member // valid when Kind == KindStruct/KindUnion

	Enumerators     map[int64]string // valid when Kind == KindEnum
	EnumUnderlying  *Type            // valid when Kind == KindEnum
	EnumeratorCount int64            // valid when Kind == KindEnum: count of enumerator children, for modulus selection

	Discriminant *Member   // valid when Kind == KindVariantPart
	Variants     []Variant // valid when Kind == KindVariantPart
}

// Variant is one DW_TAG_variant child of a variant_part: the payload
// selected when the discriminant equals DiscrValue (modulo len(Variants)).
type Variant struct {
	DiscrValue int64
	Name       string
	Type       *Type
	BitOffset  uint64
}

// LoadType resolves a DWARF type DIE into a Type, recursively resolving
// members/element/pointee types. cache is required and must be reused
// across calls within the same Program to break cycles in
// self-referential types (a linked-list node pointing at its own
// struct type, for instance).
func LoadType(prog *dwarfinfo.Program, die *dwarf.Entry, cache map[dwarf.Offset]*Type) (*Type, error) {
	if t, ok := cache[die.Offset]; ok {
		return t, nil
	}

	t := &Type{Name: dwarfinfo.Name(die), ByteSize: dwarfinfo.ByteSize(die)}
	cache[die.Offset] = t

	switch die.Tag {
	case dwarf.TagBaseType:
		t.Kind = KindBase
		enc, _ := dwarfinfo.Int64(die, dwarf.AttrEncoding)
		t.Encoding = decodeEncoding(enc)

	case dwarf.TagPointerType:
		t.Kind = KindPointer
		if ac := dwarfinfo.AddrClass(die); ac != 0 {
			return nil, cortexerr.Coded(cortexerr.DwarfUnsupported, "pointer type at %#x has unsupported address_class %d", die.Offset, ac)
		}
		if t.ByteSize == 0 {
			t.ByteSize = 4 // Cortex-M is a 32-bit target
		}
		if pointee, ok := prog.Type(die); ok {
			pt, err := LoadType(prog, pointee, cache)
			if err != nil {
				return nil, err
			}
			t.Pointee = pt
		}

	case dwarf.TagArrayType:
		t.Kind = KindArray
		elem, ok := prog.Type(die)
		if !ok {
			return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "array type at %#x has no element type", die.Offset)
		}
		et, err := LoadType(prog, elem, cache)
		if err != nil {
			return nil, err
		}
		t.ElementType = et
		t.ElementCount = arrayCount(prog, die)
		t.ByteSize = et.ByteSize * t.ElementCount

	case dwarf.TagStructType, dwarf.TagUnionType:
		if die.Tag == dwarf.TagStructType {
			t.Kind = KindStruct
		} else {
			t.Kind = KindUnion
		}
		if err := loadMembers(prog, die, t, cache); err != nil {
			return nil, err
		}

	case dwarf.TagEnumerationType:
		t.Kind = KindEnum
		t.Enumerators = make(map[int64]string)
		if underlying, ok := prog.Type(die); ok {
			ut, err := LoadType(prog, underlying, cache)
			if err != nil {
				return nil, err
			}
			t.EnumUnderlying = ut
		}
		children := prog.Children(die)
		for _, e := range children {
			if e.Tag != dwarf.TagEnumerator {
				continue
			}
			t.EnumeratorCount++
			if v, ok := dwarfinfo.Int64(e, dwarf.AttrConstValue); ok {
				t.Enumerators[v] = dwarfinfo.Name(e)
			}
		}

	case dwarf.TagVariantPart:
		t.Kind = KindVariantPart
		if err := loadVariantPart(prog, die, t, cache); err != nil {
			return nil, err
		}

	case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType:
		// qualifiers are transparent: resolve straight through to the
		// underlying type, keeping only this DIE's name if it had one
		under, ok := prog.Type(die)
		if !ok {
			t.Kind = KindBase
			break
		}
		ut, err := LoadType(prog, under, cache)
		if err != nil {
			return nil, err
		}
		name := t.Name
		*t = *ut
		if name != "" {
			t.Name = name
		}

	default:
		return nil, cortexerr.Coded(cortexerr.DwarfUnsupported, "unsupported type tag %s at %#x", die.Tag, die.Offset)
	}

	return t, nil
}

func decodeEncoding(ate int64) Encoding {
	const (
		dwAteAddress  = 0x1
		dwAteBoolean  = 0x2
		dwAteFloat    = 0x4
		dwAteSigned   = 0x5
		dwAteSignedChar = 0x6
		dwAteUnsigned = 0x7
		dwAteUnsignedChar = 0x8
	)
	switch ate {
	case dwAteBoolean:
		return EncodingBoolean
	case dwAteFloat:
		return EncodingFloat
	case dwAteSigned, dwAteSignedChar:
		return EncodingSigned
	default:
		return EncodingUnsigned
	}
}

// arrayCount reads the element count from the array's subrange_type
// child DIE, via either DW_AT_count directly or DW_AT_upper_bound + 1.
// A multi-dimensional array (more than one subrange child) is
// flattened to its outermost dimension; nested dimensions are not
// modeled separately.
func arrayCount(prog *dwarfinfo.Program, arrayDie *dwarf.Entry) int64 {
	for _, e := range prog.Children(arrayDie) {
		if e.Tag != dwarf.TagSubrangeType {
			continue
		}
		if count, ok := dwarfinfo.Int64(e, dwarf.AttrCount); ok {
			return count
		}
		if upper, ok := dwarfinfo.Int64(e, dwarf.AttrUpperBound); ok {
			return upper + 1
		}
		return 0
	}
	return 0
}

// loadMembers populates t.Members from die's direct DW_TAG_member
// children.
func loadMembers(prog *dwarfinfo.Program, die *dwarf.Entry, t *Type, cache map[dwarf.Offset]*Type) error {
	for _, e := range prog.Children(die) {
		if e.Tag != dwarf.TagMember {
			continue
		}

		memberType, ok := prog.Type(e)
		if !ok {
			return cortexerr.Coded(cortexerr.DwarfMalformed, "member %s at %#x has no type", dwarfinfo.Name(e), e.Offset)
		}
		mt, err := LoadType(prog, memberType, cache)
		if err != nil {
			return err
		}

		m := Member{Name: dwarfinfo.Name(e), Type: mt}
		m.BitOffset, m.ByteLocation = memberOffset(e)

		t.Members = append(t.Members, m)
	}
	return nil
}

// memberOffset reads a member DIE's DW_AT_data_member_location (a byte
// offset, the common case) or DW_AT_bit_offset (a bit-packed layout),
// defaulting to offset 0 when neither is present.
func memberOffset(e *dwarf.Entry) (bitOffset uint64, byteLocation bool) {
	if byteOffset, ok := dwarfinfo.Uint64(e, dwarf.AttrDataMemberLoc); ok {
		return byteOffset * 8, true
	}
	if bitOffset, ok := dwarfinfo.Uint64(e, dwarf.AttrBitOffset); ok {
		return bitOffset, false
	}
	return 0, false
}

// loadVariantPart populates t.Discriminant and t.Variants from die's
// DW_AT_discr reference and DW_TAG_variant children, per the
// Rust tagged-enum encoding gcc/rustc emit: the discriminant is a
// sibling member (often synthesized, with no source-level name) whose
// value, taken modulo the number of variants, selects which variant's
// single DW_TAG_member child holds the active payload.
func loadVariantPart(prog *dwarfinfo.Program, die *dwarf.Entry, t *Type, cache map[dwarf.Offset]*Type) error {
	if discr, ok := prog.Discr(die); ok {
		discrType, ok := prog.Type(discr)
		if !ok {
			return cortexerr.Coded(cortexerr.DwarfMalformed, "discriminant member at %#x has no type", discr.Offset)
		}
		dt, err := LoadType(prog, discrType, cache)
		if err != nil {
			return err
		}
		bitOffset, byteLocation := memberOffset(discr)
		t.Discriminant = &Member{Name: dwarfinfo.Name(discr), Type: dt, BitOffset: bitOffset, ByteLocation: byteLocation}
	}

	for _, v := range prog.Children(die) {
		if v.Tag != dwarf.TagVariant {
			continue
		}

		var member *dwarf.Entry
		for _, c := range prog.Children(v) {
			if c.Tag == dwarf.TagMember {
				member = c
				break
			}
		}
		if member == nil {
			return cortexerr.Coded(cortexerr.DwarfMalformed, "variant at %#x has no member child", v.Offset)
		}

		memberType, ok := prog.Type(member)
		if !ok {
			return cortexerr.Coded(cortexerr.DwarfMalformed, "variant member at %#x has no type", member.Offset)
		}
		mt, err := LoadType(prog, memberType, cache)
		if err != nil {
			return err
		}

		discrValue, _ := dwarfinfo.DiscrValue(v)
		bitOffset, _ := memberOffset(member)

		t.Variants = append(t.Variants, Variant{
			DiscrValue: discrValue,
			Name:       dwarfinfo.Name(member),
			Type:       mt,
			BitOffset:  bitOffset,
		})
	}

	return nil
}
