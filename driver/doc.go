// Package driver implements the suspension driver (C9): the thin
// orchestration loop that repeatedly invokes a pure, suspend/resume
// evaluator (expr, value, unwind, or frame), and on a pause performs the
// actual target I/O the evaluator asked for - a register or a memory
// range - writing the result into target.MemoryAndRegisters before
// resuming.
//
// Among the reconstruction components (expr, value, unwind, frame),
// driver is the only one that calls target.Probe; the others only ever
// read through the MemoryAndRegisters cache. The session package also
// calls the probe directly, for run control, breakpoints and
// whole-register or single-word reads.
package driver
