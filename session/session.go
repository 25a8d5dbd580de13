package session

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"cortexdbg/breakpoint"
	"cortexdbg/config"
	"cortexdbg/cortexerr"
	"cortexdbg/driver"
	"cortexdbg/dwarfinfo"
	"cortexdbg/frame"
	"cortexdbg/logging"
	"cortexdbg/target"
	"cortexdbg/unwind"
	"cortexdbg/value"
)

// Session is one attached debug target: a probe connection, its parsed
// DWARF program, the working register/memory cache, and the set of
// breakpoints installed on it.
type Session struct {
	Probe   target.Probe
	Program *dwarfinfo.Program
	Mem     *target.MemoryAndRegisters

	Breakpoints *breakpoint.Set

	frames *unwind.FrameSection
	log    *slog.Logger

	// stack is the most recently composed call stack, cached so a
	// "print" command issued right after a "stack-trace" command
	// doesn't need to re-derive it.
	stack []frame.StackFrame
}

// Open loads cfg.Binary's DWARF information, attaches probe to the
// configured chip and probe index, and installs any breakpoints named in
// cfg.Breakpoints ("file:line" strings). Missing Binary or Chip is a
// non-fatal cortexerr.ConfigurationMissing, matching spec.md's error
// handling design for session parameters.
func Open(ctx context.Context, cfg *config.Session, log *slog.Logger, probe target.Probe) (*Session, error) {
	if cfg.Binary == "" {
		return nil, cortexerr.Coded(cortexerr.ConfigurationMissing, "no binary configured")
	}
	if cfg.Chip == "" {
		return nil, cortexerr.Coded(cortexerr.ConfigurationMissing, "no chip configured")
	}

	if log == nil {
		log, _ = logging.Default()
	}

	prog, err := dwarfinfo.Load(cfg.Binary, logging.Component(log, "dwarf"))
	if err != nil {
		return nil, err
	}

	frameData, _ := prog.Section(".debug_frame")
	fs, err := unwind.LoadFrameSection(frameData, prog.ByteOrder)
	if err != nil {
		return nil, err
	}

	if _, err := probe.Open(ctx, cfg.ProbeNumber, cfg.Chip); err != nil {
		return nil, cortexerr.Coded(cortexerr.TargetCommunication, "attaching to probe %d (%s): %w", cfg.ProbeNumber, cfg.Chip, err)
	}

	units, err := probe.AvailableBreakpointUnits(ctx)
	if err != nil {
		return nil, cortexerr.Coded(cortexerr.TargetCommunication, "querying breakpoint units: %w", err)
	}

	s := &Session{
		Probe:       probe,
		Program:     prog,
		Mem:         target.NewMemoryAndRegisters(),
		Breakpoints: breakpoint.NewSet(units),
		frames:      fs,
		log:         logging.Component(log, "session"),
	}

	for _, spec := range cfg.Breakpoints {
		file, line, ok := parseFileLine(spec)
		if !ok {
			s.log.Warn("skipping malformed breakpoint spec", "spec", spec)
			continue
		}
		if _, err := s.SetBreakpoint(ctx, file, line, 0); err != nil {
			s.log.Warn("failed to set configured breakpoint", "spec", spec, "error", err)
		}
	}

	return s, nil
}

func parseFileLine(spec string) (string, int, bool) {
	i := strings.LastIndex(spec, ":")
	if i < 0 {
		return "", 0, false
	}
	line, err := strconv.Atoi(spec[i+1:])
	if err != nil {
		return "", 0, false
	}
	return spec[:i], line, true
}

// Close clears every installed hardware breakpoint and releases the
// probe, per spec.md's cancellation contract ("a Disconnect/Exit request
// aborts the handler thread, which first clears all hardware breakpoints
// it installed").
func (s *Session) Close(ctx context.Context) error {
	for _, bp := range s.Breakpoints.All() {
		if bp.Verified {
			_ = s.Probe.ClearHWBreakpoint(ctx, bp.Location.Address)
		}
	}
	return s.Probe.Close()
}

// invalidate clears the C1 cache and the cached stack trace, called on
// every transition that lets the core execute again.
func (s *Session) invalidate() {
	s.Mem.Clear()
	s.stack = nil
}

// Halt stops core execution.
func (s *Session) Halt(ctx context.Context) error {
	return s.Probe.Halt(ctx)
}

// Resume lets the core run free, invalidating the register/memory cache
// since everything cached from the last halt is now potentially stale.
func (s *Session) Resume(ctx context.Context) error {
	if err := s.Probe.Resume(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Step executes a single instruction and invalidates the cache the same
// way Resume does.
func (s *Session) Step(ctx context.Context) error {
	if err := s.Probe.Step(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reset resets the core, leaving it halted at its reset vector, and
// invalidates the cache.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.Probe.Reset(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Registers reads every core register straight from the probe and
// caches the results, for the "registers" CLI command and as the seed
// for StackTrace's frame 0.
func (s *Session) Registers(ctx context.Context) ([target.NumCoreRegisters]uint32, error) {
	var regs [target.NumCoreRegisters]uint32
	for i := 0; i < target.NumCoreRegisters; i++ {
		v, err := s.Probe.ReadRegister(ctx, i)
		if err != nil {
			return regs, cortexerr.Coded(cortexerr.TargetCommunication, "reading register %d: %w", i, err)
		}
		regs[i] = v
		s.Mem.PutRegister(i, v)
	}
	return regs, nil
}

// ReadMemory reads one 32-bit word directly from the probe (bypassing
// the lazily-populated C1 cache, since this command wants a fresh read)
// and also caches it.
func (s *Session) ReadMemory(ctx context.Context, addr uint32) (uint32, error) {
	v, err := s.Probe.ReadMemory32(ctx, addr)
	if err != nil {
		return 0, cortexerr.Coded(cortexerr.TargetCommunication, "reading memory at %#010x: %w", addr, err)
	}
	s.Mem.PutMemoryWord(addr, v)
	return v, nil
}

// SetBreakpoint resolves file:line(:column) to an address via the C8
// resolver, installs it as a hardware breakpoint if a slot is free, and
// records it either way.
func (s *Session) SetBreakpoint(ctx context.Context, file string, line int, column int) (*breakpoint.Breakpoint, error) {
	loc, ok := breakpoint.Resolve(s.Program.Source, file, line, column)
	if !ok {
		return nil, cortexerr.Coded(cortexerr.DwarfMalformed, "no line table entry for %s:%d", file, line)
	}

	bp := s.Breakpoints.Add(loc)
	if bp.Verified {
		if err := s.Probe.SetHWBreakpoint(ctx, loc.Address); err != nil {
			bp.Verified = false
		}
	}
	return bp, nil
}

// SetBreakpointAtAddress installs a breakpoint directly at a raw target
// address, for callers (the CLI's "set-breakpoint <hex>" command) that
// already have an address rather than a file:line to resolve through
// C8.
func (s *Session) SetBreakpointAtAddress(ctx context.Context, addr uint32) (*breakpoint.Breakpoint, error) {
	bp := s.Breakpoints.Add(breakpoint.Location{Address: addr})
	if bp.Verified {
		if err := s.Probe.SetHWBreakpoint(ctx, addr); err != nil {
			bp.Verified = false
		}
	}
	return bp, nil
}

// ClearBreakpoint removes any breakpoint at addr, clearing its hardware
// slot if one was installed.
func (s *Session) ClearBreakpoint(ctx context.Context, addr uint32) error {
	_ = s.Probe.ClearHWBreakpoint(ctx, addr)
	s.Breakpoints.Remove(addr)
	return nil
}

// ClearAllBreakpoints removes every active breakpoint.
func (s *Session) ClearAllBreakpoints(ctx context.Context) error {
	for _, bp := range s.Breakpoints.All() {
		if err := s.ClearBreakpoint(ctx, bp.Location.Address); err != nil {
			return err
		}
	}
	return nil
}

// StackTrace recovers up to maxDepth call frames starting at the core's
// current PC, composing each one's in-scope variables via C7 and
// walking callers via C6. Unwinding stops cleanly (not an error) once no
// call-frame information covers a PC, matching spec.md's "CFI absent for
// an address: stop unwinding cleanly".
func (s *Session) StackTrace(ctx context.Context, maxDepth int) ([]frame.StackFrame, error) {
	s.Mem.Clear()

	regs, err := s.Registers(ctx)
	if err != nil {
		return nil, err
	}

	var frames []frame.StackFrame
	pc := regs[target.PC]
	registers := regs
	mem := s.Mem

	for depth := 0; depth < maxDepth; depth++ {
		composer, err := frame.NewComposer(s.Program, mem, s.frames, pc, registers)
		if err != nil {
			if code, ok := cortexerr.CodeOf(err); ok && code == cortexerr.DwarfMalformed {
				// No subprogram DIE covers this pc: we've unwound past
				// the last frame DWARF knows about (e.g. into crt
				// startup code). Stop cleanly rather than failing the
				// whole stack trace.
				break
			}
			return frames, err
		}

		sf, err := driver.Frame(ctx, s.Probe, mem, composer)
		if err != nil {
			return frames, err
		}
		frames = append(frames, sf)

		caller, err := driver.Unwind(ctx, s.Probe, mem, s.frames, pc)
		if err != nil {
			// No CFI for this pc: this is the outermost frame we can
			// recover.
			break
		}

		pc = caller.PC
		registers = caller.Registers

		// The caller's frame reads its own recovered registers, not the
		// ones cached for the frame just composed.
		mem = target.NewMemoryAndRegisters()
		for reg, ok := range caller.Recovered {
			if ok {
				mem.PutRegister(reg, caller.Registers[reg])
			}
		}
	}

	s.stack = frames
	return frames, nil
}

// LastStackTrace returns the frames most recently produced by
// StackTrace, for a front end that needs to re-render them (DAP's
// "variables" request, which arrives after a separate "stackTrace"
// request already ran it) without recomputing.
func (s *Session) LastStackTrace() []frame.StackFrame {
	return s.stack
}

// Print looks up name in the most recently composed stack trace's
// frames, innermost first, and returns its reconstructed value.
func (s *Session) Print(name string) (value.Value, bool) {
	for _, sf := range s.stack {
		for _, v := range sf.Variables {
			if v.Name == name {
				return v.Value, true
			}
		}
	}
	return value.Value{}, false
}
