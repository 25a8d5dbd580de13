package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/cortexerr"
	"cortexdbg/driver"
	"cortexdbg/expr"
	"cortexdbg/target"
)

func openMockProbe(t *testing.T) *target.MockProbe {
	t.Helper()
	p := target.NewMockProbe()
	_, err := p.Open(context.Background(), 0, "cortex-m4")
	require.NoError(t, err)
	return p
}

func TestExpressionFetchesRegisterFromProbe(t *testing.T) {
	probe := openMockProbe(t)
	probe.PresetRegister(target.SP, 0x2000_0000)
	mem := target.NewMemoryAndRegisters()

	// DW_OP_breg13 (SP), offset 8
	code := []byte{0x70 + byte(target.SP), 0x08}
	ev := expr.New(code, mem)

	pieces, err := driver.Expression(context.Background(), probe, mem, ev)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	require.Equal(t, expr.PieceAddress, pieces[0].Kind)
	require.Equal(t, uint32(0x2000_0008), pieces[0].Address)

	v, ok := mem.GetRegister(target.SP)
	require.True(t, ok)
	require.Equal(t, uint32(0x2000_0000), v)
}

func TestExpressionDoesNotRefetchAnAlreadyCachedRegister(t *testing.T) {
	probe := openMockProbe(t)
	mem := target.NewMemoryAndRegisters()
	mem.PutRegister(target.R0, 7)

	// DW_OP_reg0
	ev := expr.New([]byte{0x50}, mem)

	pieces, err := driver.Expression(context.Background(), probe, mem, ev)
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	require.Equal(t, expr.PieceRegister, pieces[0].Kind)
}

func TestFillMemoryWalksEveryAlignedWordInAnUnalignedRange(t *testing.T) {
	probe := openMockProbe(t)
	probe.PresetMemory32(0x1000, 0xaabbccdd)
	probe.PresetMemory32(0x1004, 0x11223344)
	mem := target.NewMemoryAndRegisters()

	// A 4-byte requirement starting mid-word at 0x1002 straddles two
	// aligned words, so both 0x1000 and 0x1004 have to be read to cover it.
	need := expr.Requirement{Reason: expr.ReasonMemory, Address: 0x1002, Size: 4}
	_, err := driver.Run(context.Background(), probe, mem, func() (struct{}, bool, expr.Requirement, error) {
		if _, ok := mem.GetAddress(need.Address, need.Size); ok {
			return struct{}{}, true, expr.Requirement{}, nil
		}
		return struct{}{}, false, need, nil
	})
	require.NoError(t, err)

	b, ok := mem.GetAddress(0x1000, 8)
	require.True(t, ok)
	require.Equal(t, []byte{0xdd, 0xcc, 0xbb, 0xaa, 0x44, 0x33, 0x22, 0x11}, b)
}

func TestRunPropagatesEvaluatorError(t *testing.T) {
	probe := openMockProbe(t)
	mem := target.NewMemoryAndRegisters()

	_, err := driver.Run(context.Background(), probe, mem, func() (int, bool, expr.Requirement, error) {
		return 0, false, expr.Requirement{}, cortexerr.Errorf("boom")
	})
	require.Error(t, err)
}

func TestRunRejectsFrameBaseRequirement(t *testing.T) {
	probe := openMockProbe(t)
	mem := target.NewMemoryAndRegisters()

	asked := false
	_, err := driver.Run(context.Background(), probe, mem, func() (int, bool, expr.Requirement, error) {
		if asked {
			return 0, true, expr.Requirement{}, nil
		}
		asked = true
		return 0, false, expr.Requirement{Reason: expr.ReasonFrameBase}, nil
	})
	require.Error(t, err)
	code, ok := cortexerr.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, cortexerr.DwarfUnsupported, code)
}
