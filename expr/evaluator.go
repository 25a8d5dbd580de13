package expr

import (
	"encoding/binary"

	"cortexdbg/cortexerr"
	"cortexdbg/leb128"
	"cortexdbg/target"
)

// Evaluator runs one DWARF location expression to completion,
// suspending on Run whenever it needs a register or memory value the
// backing target.MemoryAndRegisters cache doesn't have yet.
type Evaluator struct {
	code []byte
	pc   int

	stack  []uint64
	pieces []Piece

	frameBase    uint64
	haveFrameBase bool

	mem *target.MemoryAndRegisters
}

// New creates an Evaluator for a DW_AT_location/DW_AT_frame_base
// expression, reading register/memory values through mem.
func New(code []byte, mem *target.MemoryAndRegisters) *Evaluator {
	return &Evaluator{code: code, mem: mem}
}

// SetFrameBase supplies the enclosing frame's base address, resolved by
// the frame composer (C7) evaluating the function's own frame-base
// expression first. Must be called before Run reaches a DW_OP_fbreg
// operator if the caller wants to avoid a ReasonFrameBase pause.
func (e *Evaluator) SetFrameBase(addr uint64) {
	e.frameBase = addr
	e.haveFrameBase = true
}

func (e *Evaluator) push(v uint64) { e.stack = append(e.stack, v) }

func (e *Evaluator) pop() (uint64, bool) {
	if len(e.stack) == 0 {
		return 0, false
	}
	n := len(e.stack) - 1
	v := e.stack[n]
	e.stack = e.stack[:n]
	return v, true
}

// Run executes from where the Evaluator last stopped. It returns
// Outcome.Done with the resolved Pieces on completion, or a paused
// Outcome naming the Requirement blocking further progress. err is
// non-nil only for malformed or unsupported bytecode.
func (e *Evaluator) Run() (Outcome, error) {
	for e.pc < len(e.code) {
		op := e.code[e.pc]

		switch {
		case op == 0x03: // DW_OP_addr
			if e.pc+5 > len(e.code) {
				return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated DW_OP_addr")
			}
			addr := binary.LittleEndian.Uint32(e.code[e.pc+1 : e.pc+5])
			e.push(uint64(addr))
			e.pc += 5

		case op >= 0x30 && op <= 0x4f: // DW_OP_lit0..lit31
			e.push(uint64(op - 0x30))
			e.pc++

		case op >= 0x50 && op <= 0x6f: // DW_OP_reg0..reg31
			reg := int(op - 0x50)
			if _, ok := e.mem.GetRegister(reg); !ok {
				return Outcome{Need: Requirement{Reason: ReasonRegister, Register: reg}}, nil
			}
			e.pieces = append(e.pieces, Piece{Kind: PieceRegister, Register: reg})
			e.pc++

		case op >= 0x70 && op <= 0x8f: // DW_OP_breg0..breg31, sleb128 offset
			reg := int(op - 0x70)
			v, ok := e.mem.GetRegister(reg)
			if !ok {
				return Outcome{Need: Requirement{Reason: ReasonRegister, Register: reg}}, nil
			}
			offset, n := leb128.DecodeSLEB128(e.code[e.pc+1:])
			e.push(uint64(int64(v) + offset))
			e.pc += 1 + n

		case op == 0x91: // DW_OP_fbreg, sleb128 offset
			if !e.haveFrameBase {
				return Outcome{Need: Requirement{Reason: ReasonFrameBase}}, nil
			}
			offset, n := leb128.DecodeSLEB128(e.code[e.pc+1:])
			e.push(uint64(int64(e.frameBase) + offset))
			e.pc += 1 + n

		case op == 0x06: // DW_OP_deref
			addr, ok := e.pop()
			if !ok {
				return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "DW_OP_deref on empty stack")
			}
			b, ok := e.mem.GetAddress(uint32(addr), 4)
			if !ok {
				return Outcome{Need: Requirement{Reason: ReasonMemory, Address: uint32(addr), Size: 4}}, nil
			}
			e.push(uint64(binary.LittleEndian.Uint32(b)))
			e.pc++

		case op == 0x08: // DW_OP_const1u
			e.push(uint64(e.code[e.pc+1]))
			e.pc += 2
		case op == 0x0a: // DW_OP_const2u
			e.push(uint64(binary.LittleEndian.Uint16(e.code[e.pc+1:])))
			e.pc += 3
		case op == 0x0c: // DW_OP_const4u
			e.push(uint64(binary.LittleEndian.Uint32(e.code[e.pc+1:])))
			e.pc += 5
		case op == 0x10: // DW_OP_constu
			v, n := leb128.DecodeULEB128(e.code[e.pc+1:])
			e.push(v)
			e.pc += 1 + n
		case op == 0x11: // DW_OP_consts
			v, n := leb128.DecodeSLEB128(e.code[e.pc+1:])
			e.push(uint64(v))
			e.pc += 1 + n

		case op == 0x22: // DW_OP_plus
			b, _ := e.pop()
			a, _ := e.pop()
			e.push(a + b)
			e.pc++
		case op == 0x1c: // DW_OP_minus
			b, _ := e.pop()
			a, _ := e.pop()
			e.push(a - b)
			e.pc++

		case op == 0x9f: // DW_OP_stack_value
			v, ok := e.pop()
			if !ok {
				return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "DW_OP_stack_value on empty stack")
			}
			e.pieces = append(e.pieces, Piece{Kind: PieceLiteral, Literal: v})
			e.pc++

		case op == 0x93: // DW_OP_piece, uleb128 byte size
			size, n := leb128.DecodeULEB128(e.code[e.pc+1:])
			e.closePiece(size * 8)
			e.pc += 1 + n

		case op == 0x9d: // DW_OP_bit_piece, uleb128 bit size, uleb128 bit offset
			size, n1 := leb128.DecodeULEB128(e.code[e.pc+1:])
			offset, n2 := leb128.DecodeULEB128(e.code[e.pc+1+n1:])
			e.closeBitPiece(size, offset)
			e.pc += 1 + n1 + n2

		default:
			return Outcome{}, cortexerr.Coded(cortexerr.DwarfUnsupported, "unsupported DWARF expression opcode %#02x", op)
		}
	}

	if len(e.pieces) == 0 {
		if v, ok := e.pop(); ok {
			e.pieces = append(e.pieces, Piece{Kind: PieceAddress, Address: uint32(v)})
		}
	}

	return Outcome{Done: true, Pieces: e.pieces}, nil
}

// closePiece finalizes the most recent DW_OP_piece: if the stack has a
// pending value it becomes an address piece of bitSize bits; otherwise
// the most recently produced register piece is sized down to bitSize.
func (e *Evaluator) closePiece(bitSize uint64) {
	if v, ok := e.pop(); ok {
		e.pieces = append(e.pieces, Piece{Kind: PieceAddress, Address: uint32(v), BitSize: bitSize})
		return
	}
	if n := len(e.pieces); n > 0 {
		e.pieces[n-1].BitSize = bitSize
	}
}

func (e *Evaluator) closeBitPiece(bitSize, bitOffset uint64) {
	if v, ok := e.pop(); ok {
		e.pieces = append(e.pieces, Piece{Kind: PieceAddress, Address: uint32(v), BitSize: bitSize, BitOffset: bitOffset})
		return
	}
	if n := len(e.pieces); n > 0 {
		e.pieces[n-1].BitSize = bitSize
		e.pieces[n-1].BitOffset = bitOffset
	}
}
