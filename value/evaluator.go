package value

import (
	"encoding/binary"
	"math"

	"cortexdbg/cortexerr"
	"cortexdbg/expr"
	"cortexdbg/target"
)

// BaseValue is a reconstructed scalar: a base type, a pointer's raw
// address, or an enum's underlying integer.
type BaseValue struct {
	Unsigned uint64
	Signed   int64
	Float    float64
	Bool     bool
}

// Value is the C5 EvaluatorValue: a fully reconstructed typed value,
// either a scalar (Scalar non-nil) or a composite (Children non-nil,
// one per struct member or array element).
type Value struct {
	Type *Type

	Scalar   *BaseValue
	Children []*Value

	// EnumName is set alongside Scalar when Type.Kind == KindEnum and
	// the value matched a known enumerator, or alongside Children when
	// Type.Kind == KindVariantPart and the discriminant selected a
	// variant.
	EnumName string

	// OutOfRange marks a value whose location list covers the variable
	// at some address, but not the current code location: in scope
	// somewhere in the function, just not here.
	OutOfRange bool

	// Info is this value's provenance: the exact bytes that produced it
	// and the ordered list of register/memory/literal spans they came
	// from. Concatenating the bytes named by Info.Pieces always
	// reproduces Info.Raw.
	Info ValueInformation
}

// ValuePieceKind names where one span of a ValueInformation's raw bytes
// was read from.
type ValuePieceKind int

const (
	ValuePieceRegister ValuePieceKind = iota
	ValuePieceMemory
	ValuePieceLiteral
)

// ValuePiece is one contiguous span of bytes contributing to a
// ValueInformation's Raw, annotated with where it came from.
type ValuePiece struct {
	Kind     ValuePieceKind
	Register int    // valid when Kind == ValuePieceRegister
	Address  uint32 // valid when Kind == ValuePieceMemory
	ByteSize int
}

// ValueInformation is a value's full provenance record: round-trippable
// in that concatenating the bytes drawn from each ValuePiece reproduces
// Raw exactly.
type ValueInformation struct {
	Raw    []byte
	Pieces []ValuePiece
}

// Evaluate reconstructs a Value of type t from pieces, reading through
// mem. bitOffset lets a caller (the struct/array recursion inside
// Evaluate itself) address a sub-range of a wider piece set; top-level
// callers pass 0.
//
// Suspension mirrors expr.Evaluator: a register or memory value not
// yet cached returns Outcome.Need rather than blocking.
func Evaluate(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	switch t.Kind {
	case KindBase:
		return evaluateScalar(t, pieces, bitOffset, mem)
	case KindEnum:
		return evaluateEnum(t, pieces, bitOffset, mem)
	case KindVariantPart:
		return evaluateVariantPart(t, pieces, bitOffset, mem)
	case KindPointer:
		out, err := evaluateScalar(pointerScalarType(), pieces, bitOffset, mem)
		if err != nil || !out.Done {
			return out, err
		}
		out.Value.Type = t
		return out, nil
	case KindArray:
		return evaluateArray(t, pieces, bitOffset, mem)
	case KindStruct, KindUnion:
		return evaluateComposite(t, pieces, bitOffset, mem)
	default:
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfUnsupported, "unsupported type kind for %s", t.Name)
	}
}

// Outcome is the result of one Evaluate call.
type Outcome struct {
	Done  bool
	Value Value
	Need  expr.Requirement
}

func enumScalarType(t *Type) *Type {
	if t.EnumUnderlying != nil {
		return t.EnumUnderlying
	}
	return &Type{Kind: KindBase, ByteSize: 4, Encoding: EncodingUnsigned}
}

func pointerScalarType() *Type {
	return &Type{Kind: KindBase, ByteSize: 4, Encoding: EncodingUnsigned}
}

// evaluateEnum reads the underlying scalar and selects the enumerator
// whose const_value equals that scalar modulo the enumerator count
// (spec's selection rule for enumeration_type, the same modulus applied
// to variant_part's discriminant). An enum with no enumerators, or
// whose selector matches none of them even after the modulus, is
// malformed input rather than a value to render numerically.
func evaluateEnum(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	out, err := evaluateScalar(enumScalarType(t), pieces, bitOffset, mem)
	if err != nil || !out.Done {
		return out, err
	}

	if t.EnumeratorCount == 0 {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "enumeration type %s has no enumerators", t.Name)
	}

	selector := int64(out.Value.Scalar.Unsigned % uint64(t.EnumeratorCount))
	name, ok := t.Enumerators[selector]
	if !ok {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "enumeration type %s has no enumerator matching value %d", t.Name, selector)
	}

	out.Value.Type = t
	out.Value.EnumName = name
	return out, nil
}

// evaluateVariantPart evaluates the discriminant member (or, if none is
// named, the variant_part's own bytes as an unsigned selector), selects
// the DW_TAG_variant whose DiscrValue matches that selector modulo the
// number of variants, and evaluates the matched variant's payload.
func evaluateVariantPart(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	if len(t.Variants) == 0 {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "variant part %s has no variants", t.Name)
	}

	discrType := &Type{Kind: KindBase, ByteSize: 4, Encoding: EncodingUnsigned}
	discrBitOffset := bitOffset
	if t.Discriminant != nil {
		discrType = t.Discriminant.Type
		discrBitOffset = bitOffset + t.Discriminant.BitOffset
	}

	dout, err := evaluateScalar(discrType, pieces, discrBitOffset, mem)
	if err != nil || !dout.Done {
		return dout, err
	}

	selector := dout.Value.Scalar.Unsigned % uint64(len(t.Variants))

	var matched *Variant
	for i := range t.Variants {
		if uint64(t.Variants[i].DiscrValue)%uint64(len(t.Variants)) == selector {
			matched = &t.Variants[i]
			break
		}
	}
	if matched == nil {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "variant part %s has no variant matching discriminant %d", t.Name, selector)
	}

	vout, err := Evaluate(matched.Type, pieces, bitOffset+matched.BitOffset, mem)
	if err != nil || !vout.Done {
		return vout, err
	}

	v := vout.Value
	return Outcome{Done: true, Value: Value{
		Type:     t,
		EnumName: matched.Name,
		Children: []*Value{&v},
		Info:     v.Info,
	}}, nil
}

// readBits extracts byteSize bytes (with bitOffset/bitSize narrowing)
// from the piece(s) covering [bitOffset, bitOffset+byteSize*8), along
// with the ValuePiece describing their provenance. A non-nil
// *expr.Requirement return means the underlying register or memory
// isn't cached yet and the caller must pause.
func readBits(pieces []expr.Piece, bitOffset uint64, byteSize int64, mem *target.MemoryAndRegisters) ([]byte, ValuePiece, *expr.Requirement, error) {
	piece, localBitOffset, err := locatePiece(pieces, bitOffset)
	if err != nil {
		return nil, ValuePiece{}, nil, err
	}

	switch piece.Kind {
	case expr.PieceRegister:
		v, ok := mem.GetRegister(piece.Register)
		if !ok {
			return nil, ValuePiece{}, &expr.Requirement{Reason: expr.ReasonRegister, Register: piece.Register}, nil
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, v)
		b := extractBytes(buf, localBitOffset, byteSize)
		return b, ValuePiece{Kind: ValuePieceRegister, Register: piece.Register, ByteSize: len(b)}, nil, nil

	case expr.PieceAddress:
		addr := piece.Address + uint32(localBitOffset/8)
		b, ok := mem.GetAddress(addr, int(byteSize))
		if !ok {
			return nil, ValuePiece{}, &expr.Requirement{Reason: expr.ReasonMemory, Address: addr, Size: int(byteSize)}, nil
		}
		return b, ValuePiece{Kind: ValuePieceMemory, Address: addr, ByteSize: len(b)}, nil, nil

	case expr.PieceLiteral:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, piece.Literal)
		b := extractBytes(buf, localBitOffset, byteSize)
		return b, ValuePiece{Kind: ValuePieceLiteral, ByteSize: len(b)}, nil, nil

	case expr.PieceBytes:
		b := extractBytes(piece.Bytes, localBitOffset, byteSize)
		return b, ValuePiece{Kind: ValuePieceLiteral, ByteSize: len(b)}, nil, nil
	}

	return nil, ValuePiece{}, nil, cortexerr.Coded(cortexerr.DwarfMalformed, "unrecognised piece kind")
}

func extractBytes(buf []byte, bitOffset uint64, byteSize int64) []byte {
	byteOff := bitOffset / 8
	if int(byteOff) >= len(buf) {
		return make([]byte, byteSize)
	}
	end := int(byteOff) + int(byteSize)
	if end > len(buf) {
		end = len(buf)
	}
	out := make([]byte, byteSize)
	copy(out, buf[byteOff:end])
	return out
}

// locatePiece finds which Piece in pieces covers the bit offset, and
// the offset local to that piece.
func locatePiece(pieces []expr.Piece, bitOffset uint64) (expr.Piece, uint64, error) {
	var consumed uint64
	for _, p := range pieces {
		size := uint64(p.ByteSize()) * 8
		if bitOffset < consumed+size {
			return p, bitOffset - consumed, nil
		}
		consumed += size
	}
	if len(pieces) == 1 {
		return pieces[0], bitOffset, nil
	}
	return expr.Piece{}, 0, cortexerr.Coded(cortexerr.DwarfMalformed, "bit offset %d not covered by any piece", bitOffset)
}

func evaluateScalar(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	size := t.ByteSize
	if size == 0 {
		size = 4
	}

	b, vp, need, err := readBits(pieces, bitOffset, size, mem)
	if err != nil {
		return Outcome{}, err
	}
	if need != nil {
		return Outcome{Need: *need}, nil
	}

	sv := BaseValue{}
	full := make([]byte, 8)
	copy(full, b)
	raw := binary.LittleEndian.Uint64(full)

	switch t.Encoding {
	case EncodingFloat:
		switch size {
		case 4:
			sv.Float = float64(math.Float32frombits(uint32(raw)))
		default:
			sv.Float = math.Float64frombits(raw)
		}
	case EncodingBoolean:
		sv.Bool = raw != 0
		sv.Unsigned = raw
	case EncodingSigned:
		sv.Signed = signExtend(raw, size)
		sv.Unsigned = raw
	default:
		sv.Unsigned = raw
		sv.Signed = int64(raw)
	}

	info := ValueInformation{Raw: append([]byte(nil), b...), Pieces: []ValuePiece{vp}}
	return Outcome{Done: true, Value: Value{Type: t, Scalar: &sv, Info: info}}, nil
}

func signExtend(raw uint64, byteSize int64) int64 {
	bits := byteSize * 8
	if bits >= 64 {
		return int64(raw)
	}
	shift := 64 - bits
	return int64(raw<<shift) >> shift
}

func evaluateArray(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	elemBits := uint64(t.ElementType.ByteSize) * 8

	var children []*Value
	var info ValueInformation
	for i := int64(0); i < t.ElementCount; i++ {
		out, err := Evaluate(t.ElementType, pieces, bitOffset+uint64(i)*elemBits, mem)
		if err != nil {
			return Outcome{}, err
		}
		if !out.Done {
			return out, nil
		}
		v := out.Value
		children = append(children, &v)
		info = appendInfo(info, v.Info)
	}

	return Outcome{Done: true, Value: Value{Type: t, Children: children, Info: info}}, nil
}

func evaluateComposite(t *Type, pieces []expr.Piece, bitOffset uint64, mem *target.MemoryAndRegisters) (Outcome, error) {
	var children []*Value
	var info ValueInformation
	for _, m := range t.Members {
		out, err := Evaluate(m.Type, pieces, bitOffset+m.BitOffset, mem)
		if err != nil {
			return Outcome{}, err
		}
		if !out.Done {
			return out, nil
		}
		v := out.Value
		children = append(children, &v)
		info = appendInfo(info, v.Info)
	}

	return Outcome{Done: true, Value: Value{Type: t, Children: children, Info: info}}, nil
}

// appendInfo concatenates a child's provenance onto a composite's running
// ValueInformation, coalescing adjacent memory pieces and consecutive
// pieces read from the same register, so a struct of contiguous fields
// or an array held in one register doesn't fragment into one ValuePiece
// per member or element.
func appendInfo(acc, child ValueInformation) ValueInformation {
	acc.Raw = append(acc.Raw, child.Raw...)
	for _, p := range child.Pieces {
		if n := len(acc.Pieces); n > 0 {
			last := acc.Pieces[n-1]
			if last.Kind == ValuePieceMemory && p.Kind == ValuePieceMemory &&
				last.Address+uint32(last.ByteSize) == p.Address {
				acc.Pieces[n-1].ByteSize += p.ByteSize
				continue
			}
			if last.Kind == ValuePieceRegister && p.Kind == ValuePieceRegister &&
				last.Register == p.Register {
				acc.Pieces[n-1].ByteSize += p.ByteSize
				continue
			}
		}
		acc.Pieces = append(acc.Pieces, p)
	}
	return acc
}
