package driver

import (
	"context"

	"cortexdbg/expr"
	"cortexdbg/frame"
	"cortexdbg/target"
	"cortexdbg/unwind"
	"cortexdbg/value"
)

// Expression drives an expr.Evaluator to completion, fetching whatever
// registers or memory it pauses on, and returns its resolved pieces.
func Expression(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, ev *expr.Evaluator) ([]expr.Piece, error) {
	return Run(ctx, probe, mem, func() ([]expr.Piece, bool, expr.Requirement, error) {
		out, err := ev.Run()
		return out.Pieces, out.Done, out.Need, err
	})
}

// Value drives value.Evaluate to completion. Evaluate itself is pure and
// stateless - everything it needs to resume lives in mem - so each retry
// simply calls it again with the same arguments.
func Value(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, t *value.Type, pieces []expr.Piece, bitOffset uint64) (value.Value, error) {
	return Run(ctx, probe, mem, func() (value.Value, bool, expr.Requirement, error) {
		out, err := value.Evaluate(t, pieces, bitOffset, mem)
		return out.Value, out.Done, out.Need, err
	})
}

// Unwind drives unwind.Unwind to completion, recovering the caller's call
// frame one register/memory fetch at a time.
func Unwind(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, fs *unwind.FrameSection, pc uint32) (unwind.CallFrame, error) {
	return Run(ctx, probe, mem, func() (unwind.CallFrame, bool, expr.Requirement, error) {
		out, err := unwind.Unwind(fs, pc, mem)
		return out.Frame, out.Done, out.Need, err
	})
}

// Frame drives a frame.Composer to completion, producing a fully
// populated stack frame including its in-scope variables.
func Frame(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, c *frame.Composer) (frame.StackFrame, error) {
	return Run(ctx, probe, mem, func() (frame.StackFrame, bool, expr.Requirement, error) {
		out, err := c.Run()
		return out.Frame, out.Done, out.Need, err
	})
}
