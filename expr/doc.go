// Package expr evaluates DWARF location expressions (C4): the
// stack-machine bytecode recorded in DW_AT_location/DW_AT_frame_base
// that describes where a variable's bytes live (a register, a memory
// address, a literal, or a composite of several "pieces").
//
// Evaluation is restartable rather than blocking. Run executes until it
// either finishes (Outcome.Done, carrying the resolved Pieces) or needs
// a register/memory value the caller hasn't supplied yet
// (Outcome.Need, a Requirement). The caller fetches that value, feeds
// it to the Evaluator's backing target.MemoryAndRegisters, and calls
// Run again; the Evaluator resumes from the instruction it paused on
// rather than restarting the expression from byte zero.
//
// This replaces the teacher's loclist package, which instead blocked
// synchronously inside CartCoProc.Peek()/Register() calls - the single
// largest architectural change this port makes to the teacher's DWARF
// engine, since a live probe connection in this system is never assumed
// to be available for a blocking round-trip mid-evaluation.
package expr
