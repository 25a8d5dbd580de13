package driver

import (
	"context"

	"cortexdbg/cortexerr"
	"cortexdbg/expr"
	"cortexdbg/target"
)

// Step runs one pause/resume cycle of a pure evaluator (expr.Evaluator.Run,
// value.Evaluate, unwind.Unwind, frame.Composer.Run all fit this shape) and
// reports whether it finished, and if not, what it needs.
type Step[T any] func() (result T, done bool, need expr.Requirement, err error)

// Run drives step to completion against probe, satisfying every
// Requirement it pauses on by reading the target and caching the result in
// mem, then calling step again. It never calls probe for anything other
// than the register the evaluator asked for, or the aligned words that
// cover the memory range it asked for.
func Run[T any](ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, step Step[T]) (T, error) {
	for {
		result, done, need, err := step()
		if err != nil || done {
			return result, err
		}

		if err := satisfy(ctx, probe, mem, need); err != nil {
			var zero T
			return zero, err
		}
	}
}

// satisfy performs the single piece of target I/O a Requirement describes
// and writes the result into mem so the next call to step finds it cached.
func satisfy(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, need expr.Requirement) error {
	switch need.Reason {
	case expr.ReasonRegister:
		v, err := probe.ReadRegister(ctx, need.Register)
		if err != nil {
			return cortexerr.Coded(cortexerr.TargetCommunication, "reading register %d: %w", need.Register, err)
		}
		mem.PutRegister(need.Register, v)
		return nil

	case expr.ReasonMemory:
		return fillMemory(ctx, probe, mem, need.Address, need.Size)

	default:
		// ReasonFrameBase and ReasonEntryValue are resolved internally by
		// the frame composer before it ever evaluates a variable; a bare
		// expr.Evaluator or value.Evaluate driven straight from here
		// should never surface either one.
		return cortexerr.Coded(cortexerr.DwarfUnsupported, "driver cannot satisfy requirement reason %d directly", need.Reason)
	}
}

// fillMemory reads every 32-bit aligned word covering [addr, addr+size)
// and caches it. probe.ReadMemory32 only ever reads a whole aligned word,
// so a request for an unaligned or sub-word range still has to walk the
// aligned words that contain it.
func fillMemory(ctx context.Context, probe target.Probe, mem *target.MemoryAndRegisters, addr uint32, size int) error {
	if size <= 0 {
		return cortexerr.Coded(cortexerr.DwarfMalformed, "memory requirement at %#x has non-positive size %d", addr, size)
	}

	start := addr &^ 3
	end := (addr + uint32(size) - 1) &^ 3
	for word := start; ; word += 4 {
		v, err := probe.ReadMemory32(ctx, word)
		if err != nil {
			return cortexerr.Coded(cortexerr.TargetCommunication, "reading memory at %#x: %w", word, err)
		}
		mem.PutMemoryWord(word, v)
		if word == end {
			break
		}
	}
	return nil
}
