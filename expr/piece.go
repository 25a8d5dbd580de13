package expr

// PieceKind identifies how a Piece's bytes are stored.
type PieceKind int

const (
	// PieceRegister holds its bytes in a core or extended register.
	PieceRegister PieceKind = iota
	// PieceAddress holds its bytes in target memory.
	PieceAddress
	// PieceLiteral holds a value computed entirely by the expression
	// itself (no register or memory backing): the stack top marked by
	// DW_OP_stack_value. Without DW_OP_stack_value, a computed value is
	// an address and becomes a PieceAddress.
	PieceLiteral
	// PieceBytes holds raw bytes carried in the expression itself. The
	// Evaluator never produces it: DW_OP_implicit_value is rejected as an
	// unsupported opcode.
	PieceBytes
)

// Piece is one contiguous span of a variable's representation. A
// variable whose location expression never uses DW_OP_piece resolves
// to exactly one Piece covering its whole size; a composite location
// (part of a struct in a register, part in memory) resolves to several.
type Piece struct {
	Kind PieceKind

	Register int    // valid when Kind == PieceRegister
	Address  uint32 // valid when Kind == PieceAddress
	Literal  uint64 // valid when Kind == PieceLiteral
	Bytes    []byte // valid when Kind == PieceBytes

	// BitOffset/BitSize describe a sub-span of the underlying register
	// or memory word this piece occupies, set by DW_OP_bit_piece and
	// by DW_OP_piece operands smaller than a full word. BitSize == 0
	// means "whole piece", not zero bits.
	BitOffset uint64
	BitSize   uint64
}

// ByteSize returns the piece's size in bytes, rounding a partial
// bit-size up to the containing byte.
func (p Piece) ByteSize() int {
	if p.BitSize == 0 {
		switch p.Kind {
		case PieceBytes:
			return len(p.Bytes)
		default:
			return 4
		}
	}
	return int((p.BitSize + 7) / 8)
}
