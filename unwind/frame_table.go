package unwind

import (
	"cortexdbg/cortexerr"
	"cortexdbg/leb128"
)

// ruleKind is the recovery rule in effect for one register at a given pc.
type ruleKind int

const (
	// ruleUndefined: the register's value at the caller is not recoverable.
	ruleUndefined ruleKind = iota
	// ruleSameValue: the register is unchanged from the caller.
	ruleSameValue
	// ruleOffset: the register is saved at [CFA + offset].
	ruleOffset
	// ruleValOffset: the register's caller value equals CFA + offset
	// itself (not a dereference).
	ruleValOffset
	// ruleRegister: the register is saved in another (still-live) register.
	ruleRegister
)

type registerRule struct {
	kind   ruleKind
	offset int64
	reg    int
}

// row is the set of recovery rules in effect from one address onward,
// plus the rule for computing the Canonical Frame Address itself.
type row struct {
	cfaRegister int
	cfaOffset   int64
	registers   [16]registerRule
}

func (r row) clone() row {
	n := r
	return n
}

// frameTable replays a CIE's then an FDE's instruction stream into a
// sequence of rows, one per address at which the rules changed. DWARF
// call-frame instructions below are the common ARM/gcc subset; an
// instruction outside this subset is reported as unsupported rather than
// silently ignored, since a dropped rule produces a wrong register value.
type frameTable struct {
	rows []row
	// cfiStack supports DW_CFA_remember_state/restore_state.
	cfiStack []row
}

func newFrameTable() *frameTable {
	t := &frameTable{}
	t.rows = append(t.rows, row{})
	return t
}

func (t *frameTable) current() row {
	return t.rows[len(t.rows)-1]
}

func (t *frameTable) addRow(r row) {
	t.rows = append(t.rows, r)
}

// locatedRow is a row together with the address its rules take effect
// from. buildRows produces a fully located sequence, so rowFor picks
// from it without replaying instructions.
type locatedRow struct {
	location uint32
	row      row
}

// buildRows replays a CIE's instructions to establish the initial rule
// set, then an FDE's instructions starting from the FDE's start address,
// returning the located rows in program order.
func buildRows(c *cie, f *fde) ([]locatedRow, error) {
	t := newFrameTable()
	var discard []locatedRow
	if _, err := runFDEInstructionsOn(t, c.instructions, c, 0, &discard, false); err != nil {
		return nil, err
	}
	initial := t.current()

	located := []locatedRow{{location: f.startAddress, row: initial}}
	t.rows[len(t.rows)-1] = initial
	if _, err := runFDEInstructionsOn(t, f.instructions, c, f.startAddress, &located, true); err != nil {
		return nil, err
	}

	return located, nil
}

func runFDEInstructionsOn(t *frameTable, instrs []byte, c *cie, startLoc uint32, located *[]locatedRow, emit bool) (uint32, error) {
	loc := startLoc
	cur := t.current()

	emitRow := func() {
		if emit {
			*located = append(*located, locatedRow{location: loc, row: cur.clone()})
		}
	}

	i := 0
	for i < len(instrs) {
		op := instrs[i]
		i++

		primary := op & 0xc0
		operand := int(op & 0x3f)

		switch primary {
		case 0x40: // DW_CFA_advance_loc
			loc += uint32(operand) * uint32(c.codeAlignment)
			emitRow()
			continue
		case 0x80: // DW_CFA_offset
			reg := operand
			n, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			if reg < len(cur.registers) {
				cur.registers[reg] = registerRule{kind: ruleOffset, offset: int64(n) * c.dataAlignment}
			}
			continue
		case 0xc0: // DW_CFA_restore
			if operand < len(cur.registers) {
				cur.registers[operand] = registerRule{}
			}
			continue
		}

		switch op {
		case 0x00: // DW_CFA_nop
			continue
		case 0x01: // DW_CFA_set_loc
			if i+4 > len(instrs) {
				return 0, cortexerr.Coded(cortexerr.DwarfMalformed, "truncated DW_CFA_set_loc")
			}
			loc = uint32(instrs[i]) | uint32(instrs[i+1])<<8 | uint32(instrs[i+2])<<16 | uint32(instrs[i+3])<<24
			i += 4
			emitRow()
		case 0x02: // DW_CFA_advance_loc1
			loc += uint32(instrs[i]) * uint32(c.codeAlignment)
			i++
			emitRow()
		case 0x03: // DW_CFA_advance_loc2
			delta := uint32(instrs[i]) | uint32(instrs[i+1])<<8
			loc += delta * uint32(c.codeAlignment)
			i += 2
			emitRow()
		case 0x04: // DW_CFA_advance_loc4
			delta := uint32(instrs[i]) | uint32(instrs[i+1])<<8 | uint32(instrs[i+2])<<16 | uint32(instrs[i+3])<<24
			loc += delta * uint32(c.codeAlignment)
			i += 4
			emitRow()
		case 0x05: // DW_CFA_offset_extended
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			n, m2 := leb128.DecodeULEB128(instrs[i:])
			i += m2
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleOffset, offset: int64(n) * c.dataAlignment}
			}
		case 0x06: // DW_CFA_restore_extended
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{}
			}
		case 0x07: // DW_CFA_undefined
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleUndefined}
			}
		case 0x08: // DW_CFA_same_value
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleSameValue}
			}
		case 0x09: // DW_CFA_register
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			other, m2 := leb128.DecodeULEB128(instrs[i:])
			i += m2
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleRegister, reg: int(other)}
			}
		case 0x0a: // DW_CFA_remember_state
			t.cfiStack = append(t.cfiStack, cur.clone())
		case 0x0b: // DW_CFA_restore_state
			if len(t.cfiStack) == 0 {
				return 0, cortexerr.Coded(cortexerr.DwarfMalformed, "DW_CFA_restore_state with empty stack")
			}
			n := len(t.cfiStack) - 1
			cur = t.cfiStack[n]
			t.cfiStack = t.cfiStack[:n]
		case 0x0c: // DW_CFA_def_cfa
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			off, m2 := leb128.DecodeULEB128(instrs[i:])
			i += m2
			cur.cfaRegister = int(reg64)
			cur.cfaOffset = int64(off)
		case 0x0d: // DW_CFA_def_cfa_register
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			cur.cfaRegister = int(reg64)
		case 0x0e: // DW_CFA_def_cfa_offset
			off, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			cur.cfaOffset = int64(off)
		case 0x0f: // DW_CFA_def_cfa_expression
			n, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			i += int(n)
			return 0, cortexerr.Coded(cortexerr.DwarfUnsupported, "DW_CFA_def_cfa_expression not supported")
		case 0x10: // DW_CFA_expression
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			n, m2 := leb128.DecodeULEB128(instrs[i:])
			i += m2
			_ = reg64
			i += int(n)
			return 0, cortexerr.Coded(cortexerr.DwarfUnsupported, "DW_CFA_expression not supported")
		case 0x11: // DW_CFA_offset_extended_sf
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			n, m2 := leb128.DecodeSLEB128(instrs[i:])
			i += m2
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleOffset, offset: n * c.dataAlignment}
			}
		case 0x12: // DW_CFA_def_cfa_sf
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			off, m2 := leb128.DecodeSLEB128(instrs[i:])
			i += m2
			cur.cfaRegister = int(reg64)
			cur.cfaOffset = off * c.dataAlignment
		case 0x13: // DW_CFA_def_cfa_offset_sf
			off, m := leb128.DecodeSLEB128(instrs[i:])
			i += m
			cur.cfaOffset = off * c.dataAlignment
		case 0x14: // DW_CFA_val_offset
			reg64, m := leb128.DecodeULEB128(instrs[i:])
			i += m
			n, m2 := leb128.DecodeULEB128(instrs[i:])
			i += m2
			if int(reg64) < len(cur.registers) {
				cur.registers[reg64] = registerRule{kind: ruleValOffset, offset: int64(n) * c.dataAlignment}
			}
		default:
			return 0, cortexerr.Coded(cortexerr.DwarfUnsupported, "unsupported call-frame instruction %#02x", op)
		}
	}

	if emit {
		*located = append(*located, locatedRow{location: loc, row: cur.clone()})
	}
	t.rows[len(t.rows)-1] = cur
	return loc, nil
}

// rowFor returns the rule set in effect at pc, which is the last located
// row whose address is <= pc.
func rowFor(rows []locatedRow, pc uint32) (row, error) {
	if len(rows) == 0 {
		return row{}, cortexerr.Coded(cortexerr.DwarfMalformed, "no call-frame rows")
	}
	best := rows[0]
	for _, r := range rows {
		if r.location > pc {
			break
		}
		best = r
	}
	return best.row, nil
}
