package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/breakpoint"
	"cortexdbg/dwarfinfo"
	"cortexdbg/session"
	"cortexdbg/target"
)

func openSession(t *testing.T) (*session.Session, *target.MockProbe) {
	t.Helper()
	probe := target.NewMockProbe()
	_, err := probe.Open(context.Background(), 0, "cortex-m4")
	require.NoError(t, err)

	prog := &dwarfinfo.Program{
		Source: dwarfinfo.NewSourceForTesting(map[string][]dwarfinfo.TestLine{
			"src/main.rs": {{Number: 10, Column: 1, Address: 0x1000}},
		}),
	}

	units, err := probe.AvailableBreakpointUnits(context.Background())
	require.NoError(t, err)

	s := &session.Session{
		Probe:       probe,
		Program:     prog,
		Mem:         target.NewMemoryAndRegisters(),
		Breakpoints: breakpoint.NewSet(units),
	}
	return s, probe
}

func TestResumeInvalidatesCache(t *testing.T) {
	s, _ := openSession(t)
	s.Mem.PutRegister(target.R0, 99)

	require.NoError(t, s.Resume(context.Background()))

	_, ok := s.Mem.GetRegister(target.R0)
	require.False(t, ok)
}

func TestStepInvalidatesCache(t *testing.T) {
	s, _ := openSession(t)
	s.Mem.PutMemoryWord(0x2000, 1)

	require.NoError(t, s.Step(context.Background()))

	_, ok := s.Mem.GetAddress(0x2000, 4)
	require.False(t, ok)
}

func TestRegistersReadsEveryCoreRegister(t *testing.T) {
	s, probe := openSession(t)
	probe.PresetRegister(target.PC, 0x800_0100)

	regs, err := s.Registers(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint32(0x800_0100), regs[target.PC])

	cached, ok := s.Mem.GetRegister(target.PC)
	require.True(t, ok)
	require.Equal(t, uint32(0x800_0100), cached)
}

func TestReadMemoryCachesTheWord(t *testing.T) {
	s, probe := openSession(t)
	probe.PresetMemory32(0x1000, 0xdeadbeef)

	v, err := s.ReadMemory(context.Background(), 0x1000)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), v)

	b, ok := s.Mem.GetAddress(0x1000, 4)
	require.True(t, ok)
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b)
}

func TestSetBreakpointInstallsHardwareBreakpointWhenVerified(t *testing.T) {
	s, _ := openSession(t)

	bp, err := s.SetBreakpoint(context.Background(), "src/main.rs", 10, 0)
	require.NoError(t, err)
	require.True(t, bp.Verified)
	require.True(t, s.Breakpoints.Check(bp.Location.Address))
}

func TestSetBreakpointUnresolvedLineReturnsError(t *testing.T) {
	s, _ := openSession(t)

	_, err := s.SetBreakpoint(context.Background(), "src/main.rs", 999, 0)
	require.Error(t, err)
}

func TestClearAllBreakpointsEmptiesTheSet(t *testing.T) {
	s, _ := openSession(t)

	bp, err := s.SetBreakpoint(context.Background(), "src/main.rs", 10, 0)
	require.NoError(t, err)

	require.NoError(t, s.ClearAllBreakpoints(context.Background()))
	require.False(t, s.Breakpoints.Check(bp.Location.Address))
	require.Empty(t, s.Breakpoints.All())
}

func TestPrintReturnsFalseWithNoStackTraceYet(t *testing.T) {
	s, _ := openSession(t)

	_, ok := s.Print("anything")
	require.False(t, ok)
}
