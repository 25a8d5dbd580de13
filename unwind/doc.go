// Package unwind implements the call-stack unwinder (C6): it parses a
// program's .debug_frame call-frame-information (CFI) section into
// CIE/FDE records and replays each FDE's instruction stream to build
// the register-recovery rules in effect at a given program counter,
// then applies those rules against a target.MemoryAndRegisters cache to
// recover the caller's registers.
//
// Recovering a caller's registers can require stack memory the cache
// doesn't have yet (an Offset-rule register is read from [CFA+offset]),
// so Unwind pauses with the same Requirement shape expr and value use
// rather than blocking on target I/O.
package unwind
