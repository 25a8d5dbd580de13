package dwarfinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFunctionContainingPrefersSmallest(t *testing.T) {
	outer := &SourceFunction{Name: "outer", LowPC: 0x1000, HighPC: 0x2000}
	inner := &SourceFunction{Name: "inner_inlined", LowPC: 0x1100, HighPC: 0x1200, Inline: true}

	src := &Source{
		Functions:      []*SourceFunction{outer, inner},
		linesByAddress: make(map[uint64]*SourceLine),
	}

	fn, ok := src.FunctionContaining(0x1150)
	require.True(t, ok)
	require.Equal(t, "inner_inlined", fn.Name)

	fn, ok = src.FunctionContaining(0x1050)
	require.True(t, ok)
	require.Equal(t, "outer", fn.Name)

	_, ok = src.FunctionContaining(0x5000)
	require.False(t, ok)
}

func TestFunctionsNamedAmbiguous(t *testing.T) {
	a := &SourceFunction{Name: "helper", LowPC: 0x1000, HighPC: 0x1010}
	b := &SourceFunction{Name: "helper", LowPC: 0x2000, HighPC: 0x2010}

	src := &Source{Functions: []*SourceFunction{a, b}}

	matches := src.FunctionsNamed("helper")
	require.Len(t, matches, 2)

	require.Empty(t, src.FunctionsNamed("missing"))
}

func TestLinesInFile(t *testing.T) {
	file := &SourceFile{Path: "main.c"}
	l1 := &SourceLine{File: file, Number: 10}
	l2 := &SourceLine{File: file, Number: 11}
	other := &SourceLine{File: &SourceFile{Path: "other.c"}, Number: 1}

	src := &Source{
		linesByAddress: map[uint64]*SourceLine{
			0x1000: l1,
			0x1004: l2,
			0x2000: other,
		},
	}

	lines := src.LinesInFile("main.c")
	require.Len(t, lines, 2)
}
