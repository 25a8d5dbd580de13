package frame

import (
	"debug/dwarf"

	"cortexdbg/cortexerr"
	"cortexdbg/dwarfinfo"
	"cortexdbg/expr"
	"cortexdbg/target"
	"cortexdbg/unwind"
	"cortexdbg/value"
)

// Outcome is the result of one Composer.Run call: either a completed
// StackFrame, or a pause naming the single register or memory value the
// composer needs before it can continue.
type Outcome struct {
	Done  bool
	Frame StackFrame
	Need  expr.Requirement
}

// Composer reconstructs one StackFrame from a recovered register set and
// code location. Unlike value.Evaluate, which recomputes from scratch on
// every call, Composer (like expr.Evaluator) carries its own progress
// (which variable it's on, the frame-base address once resolved) across
// paused Run calls, since a single frame can need several rounds of
// register/memory data before every variable resolves.
type Composer struct {
	prog *dwarfinfo.Program
	mem  *target.MemoryAndRegisters
	fs   *unwind.FrameSection

	pc        uint32
	registers [target.NumCoreRegisters]uint32

	fn *dwarfinfo.SourceFunction

	frameBaseEval *expr.Evaluator
	frameBase     uint64
	haveFrameBase bool

	variables []*dwarf.Entry
	varIndex  int
	varEval   *expr.Evaluator
	varPieces []expr.Piece

	typeCache map[dwarf.Offset]*value.Type

	results []Variable
}

// NewComposer locates the function enclosing pc and collects the
// variable DIEs in scope there, ready for Run to evaluate. mem must
// already hold (or be populated as Run pauses and is fed) the register
// values recovered for this frame. fs provides the code-range bounds
// for the CallFrame Run produces - frame 0's bounds aren't a byproduct
// of an unwind.Unwind call the way every other frame's are, so Composer
// looks them up itself via fs.Bounds.
func NewComposer(prog *dwarfinfo.Program, mem *target.MemoryAndRegisters, fs *unwind.FrameSection, pc uint32, registers [target.NumCoreRegisters]uint32) (*Composer, error) {
	fn, err := prog.Source.FunctionContainingStrict(uint64(pc))
	if err != nil {
		return nil, err
	}

	c := &Composer{
		prog:      prog,
		mem:       mem,
		fs:        fs,
		pc:        pc,
		registers: registers,
		fn:        fn,
		typeCache: make(map[dwarf.Offset]*value.Type),
	}
	c.variables = collectVariables(prog.Children, prog.PCRange, fn.DIE, uint64(pc))

	return c, nil
}

// Run resumes composing the frame from wherever it last paused.
func (c *Composer) Run() (Outcome, error) {
	if !c.haveFrameBase {
		out, err := c.runFrameBase()
		if err != nil || !out.Done {
			return out, err
		}
	}

	for c.varIndex < len(c.variables) {
		out, err := c.runVariable()
		if err != nil || !out.Done {
			return out, err
		}
	}

	src := SourceInformation{}
	if line, ok := c.prog.Source.LineAt(uint64(c.pc)); ok {
		src = SourceInformation{File: line.File.Path, Line: line.Number}
	}

	cf := unwind.CallFrame{PC: c.pc, Registers: c.registers}
	if c.fs != nil {
		if id, start, end, ok := c.fs.Bounds(c.pc); ok {
			cf.ID, cf.StartAddress, cf.EndAddress = id, start, end
		}
	}

	return Outcome{Done: true, Frame: StackFrame{
		CallFrame: cf,
		Name:      c.fn.Name,
		Source:    src,
		Variables: c.results,
	}}, nil
}

// runFrameBase evaluates the function's DW_AT_frame_base expression. Its
// result must be a single address piece (spec: "the result must be
// Address32"); any other shape is malformed input rather than something
// to paper over.
func (c *Composer) runFrameBase() (Outcome, error) {
	if c.frameBaseEval == nil {
		code, ok := dwarfinfo.Bytes(c.fn.DIE, dwarf.AttrFrameBase)
		if !ok {
			return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "function %s has no DW_AT_frame_base", c.fn.Name)
		}
		c.frameBaseEval = expr.New(code, c.mem)
	}

	out, err := c.frameBaseEval.Run()
	if err != nil {
		return Outcome{}, err
	}
	if !out.Done {
		return Outcome{Need: out.Need}, nil
	}

	if len(out.Pieces) != 1 || out.Pieces[0].Kind != expr.PieceAddress {
		return Outcome{}, cortexerr.Coded(cortexerr.DwarfMalformed, "frame base for %s did not resolve to an address", c.fn.Name)
	}

	c.frameBase = uint64(out.Pieces[0].Address)
	c.haveFrameBase = true
	return Outcome{Done: true}, nil
}

// runVariable advances evaluation of the variable at c.varIndex.
func (c *Composer) runVariable() (Outcome, error) {
	die := c.variables[c.varIndex]

	if c.varEval == nil {
		code, present, covered, err := c.prog.LocationAt(die, dwarf.AttrLocation, uint64(c.pc))
		if err != nil {
			return Outcome{}, err
		}
		if !present {
			// No location (optimized out, or a pure declaration): record
			// an empty value, which renders as <OptimizedOut>, rather
			// than fail the whole frame.
			c.finishVariable(&value.Value{})
			return Outcome{Done: true}, nil
		}
		if !covered {
			// A location list covers this variable elsewhere in the
			// function, but not at the current pc.
			c.finishVariable(&value.Value{OutOfRange: true})
			return Outcome{Done: true}, nil
		}
		ev := expr.New(code, c.mem)
		ev.SetFrameBase(c.frameBase)
		c.varEval = ev
	}

	if c.varPieces == nil {
		out, err := c.varEval.Run()
		if err != nil {
			return Outcome{}, err
		}
		if !out.Done {
			return Outcome{Need: out.Need}, nil
		}
		c.varPieces = out.Pieces
	}

	typeDie, ok := c.prog.Type(die)
	if !ok {
		// A typeless variable DIE is malformed for our purposes; skip it
		// rather than aborting the whole stack trace.
		c.finishVariable(nil)
		return Outcome{Done: true}, nil
	}

	t, err := value.LoadType(c.prog, typeDie, c.typeCache)
	if err != nil {
		return Outcome{}, err
	}

	vout, err := value.Evaluate(t, c.varPieces, 0, c.mem)
	if err != nil {
		return Outcome{}, err
	}
	if !vout.Done {
		return Outcome{Need: vout.Need}, nil
	}

	c.finishVariable(&vout.Value)
	return Outcome{Done: true}, nil
}

func (c *Composer) finishVariable(v *value.Value) {
	name, _ := dwarfinfo.String(c.variables[c.varIndex], dwarf.AttrName)
	src := SourceInformation{}
	if dl, ok := dwarfinfo.Uint64(c.variables[c.varIndex], dwarf.AttrDeclLine); ok {
		src.Line = int(dl)
	}

	if v != nil {
		c.results = append(c.results, Variable{Name: name, Value: *v, Source: src})
	}

	c.varIndex++
	c.varEval = nil
	c.varPieces = nil
}

// collectVariables recurses die's children collecting variable,
// formal_parameter, and constant DIEs in scope at pc, pruning any
// lexical_block subtree whose own address range excludes pc.
//
// childrenOf and rangeOf are injected (rather than a *dwarfinfo.Program
// directly) so this traversal can be unit tested against a hand-built
// DIE tree without a full ELF/DWARF fixture; NewComposer wires them to
// prog.Children and prog.PCRange.
func collectVariables(
	childrenOf func(*dwarf.Entry) []*dwarf.Entry,
	rangeOf func(*dwarf.Entry) (uint64, uint64, bool),
	die *dwarf.Entry,
	pc uint64,
) []*dwarf.Entry {
	var out []*dwarf.Entry
	for _, child := range childrenOf(die) {
		switch child.Tag {
		case dwarf.TagVariable, dwarf.TagFormalParameter, dwarf.TagConstant:
			out = append(out, child)
		case dwarf.TagLexDwarfBlock:
			if low, high, ok := rangeOf(child); ok {
				if pc < low || pc >= high {
					continue
				}
			}
			out = append(out, collectVariables(childrenOf, rangeOf, child, pc)...)
		}
	}
	return out
}
