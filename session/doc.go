// Package session owns everything one attached debug target needs: the
// probe connection, the loaded DWARF program, the C1 MemoryAndRegisters
// cache, the call-frame information used for unwinding, and the active
// breakpoint set. It is the M-SESSION orchestration layer a CLI or DAP
// front end drives - the only place in the engine besides driver that
// performs target I/O, and the only place that decides when the C1
// cache must be invalidated (every time the core resumes, per spec: "no
// stale caching leaks across execution epochs").
package session
