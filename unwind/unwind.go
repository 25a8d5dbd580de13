package unwind

import (
	"cortexdbg/cortexerr"
	"cortexdbg/expr"
	"cortexdbg/target"
)

// CallFrame is one recovered level of the call stack: the caller's
// program counter and its core registers, as far as CFI rules could
// recover them.
type CallFrame struct {
	// ID identifies the FDE this frame was unwound from, stable across
	// calls to the same function.
	ID uint32
	// StartAddress and EndAddress bound the FDE's code range; the
	// invariant StartAddress <= PC < EndAddress always holds for a
	// successfully unwound frame.
	StartAddress uint32
	EndAddress   uint32

	// CFA is this frame's Canonical Frame Address, valid when HaveCFA.
	CFA     uint32
	HaveCFA bool

	PC        uint32
	Registers [target.NumCoreRegisters]uint32
	// Recovered marks which entries in Registers actually came from a
	// rule (as opposed to being left at zero because the rule was
	// Undefined or named a register outside 0-15, e.g. a DWARF pseudo
	// register). Registers[target.PC] is always recovered once Unwind
	// succeeds, set to the same value as PC.
	Recovered [target.NumCoreRegisters]bool
}

// Outcome is the result of one Unwind call: either a fully recovered
// CallFrame, or a pause describing the single missing register or memory
// value needed to continue.
type Outcome struct {
	Done  bool
	Frame CallFrame
	Need  expr.Requirement
}

// Unwind recovers the caller's registers at pc, using fs's CFI rules and
// mem's cached register/memory values. pc must be the current frame's
// program counter, and mem must hold that frame's register values.
//
// The DWARF return-address register, decoded per the CIE, identifies
// which recovered register holds the caller's PC. On ARM/gcc this is
// LR's DWARF number, and the actual return program counter is computed
// as (link_reg &^ 1) - 1 to step back from the post-call return address
// into the call instruction itself, which is what a source/line lookup
// needs; Unwind applies that adjustment to the PC field it returns.
func Unwind(fs *FrameSection, pc uint32, mem *target.MemoryAndRegisters) (Outcome, error) {
	f, ok := fs.fdeFor(pc)
	if !ok {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "no call-frame information covers pc %#010x", pc)
	}

	rows, err := buildRows(f.cie, f)
	if err != nil {
		return Outcome{}, err
	}

	r, err := rowFor(rows, pc)
	if err != nil {
		return Outcome{}, err
	}

	cfaBase, ok := mem.GetRegister(r.cfaRegister)
	if !ok {
		return Outcome{Need: expr.Requirement{Reason: expr.ReasonRegister, Register: r.cfaRegister}}, nil
	}
	cfa := uint32(int64(cfaBase) + r.cfaOffset)

	var out CallFrame
	for reg := 0; reg < target.NumCoreRegisters; reg++ {
		rule := r.registers[reg]
		switch rule.kind {
		case ruleUndefined:
			continue

		case ruleSameValue:
			v, ok := mem.GetRegister(reg)
			if !ok {
				return Outcome{Need: expr.Requirement{Reason: expr.ReasonRegister, Register: reg}}, nil
			}
			out.Registers[reg] = v
			out.Recovered[reg] = true

		case ruleOffset:
			addr := uint32(int64(cfa) + rule.offset)
			b, ok := mem.GetAddress(addr, 4)
			if !ok {
				return Outcome{Need: expr.Requirement{Reason: expr.ReasonMemory, Address: addr, Size: 4}}, nil
			}
			out.Registers[reg] = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			out.Recovered[reg] = true

		case ruleValOffset:
			out.Registers[reg] = uint32(int64(cfa) + rule.offset)
			out.Recovered[reg] = true

		case ruleRegister:
			v, ok := mem.GetRegister(rule.reg)
			if !ok {
				return Outcome{Need: expr.Requirement{Reason: expr.ReasonRegister, Register: rule.reg}}, nil
			}
			out.Registers[reg] = v
			out.Recovered[reg] = true
		}
	}

	out.Registers[target.SP] = cfa
	out.Recovered[target.SP] = true

	raReg := f.cie.returnAddressReg
	if raReg < 0 || raReg >= target.NumCoreRegisters || !out.Recovered[raReg] {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "call-frame information did not recover the return address register")
	}
	out.PC = (out.Registers[raReg] &^ 1) - 1
	out.Registers[target.PC] = out.PC
	out.Recovered[target.PC] = true

	out.ID = f.id
	out.StartAddress = f.startAddress
	out.EndAddress = f.endAddress
	out.CFA = cfa
	out.HaveCFA = true

	return Outcome{Done: true, Frame: out}, nil
}
