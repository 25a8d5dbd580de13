package cortexerr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/cortexerr"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestDuplicateErrors(t *testing.T) {
	e := cortexerr.Errorf(testError, "foo")
	require.Equal(t, "test error: foo", e.Error())

	// wrapping an error of the same pattern immediately above it collapses
	// the duplicate part
	f := cortexerr.Errorf(testError, e)
	require.Equal(t, "test error: foo", f.Error())
}

func TestIs(t *testing.T) {
	e := cortexerr.Errorf(testError, "foo")
	require.True(t, cortexerr.Is(e, testError))
	require.False(t, cortexerr.Has(e, testErrorB))

	f := cortexerr.Errorf(testErrorB, e)
	require.False(t, cortexerr.Is(f, testError))
	require.True(t, cortexerr.Is(f, testErrorB))
	require.True(t, cortexerr.Has(f, testError))
	require.True(t, cortexerr.Has(f, testErrorB))

	require.True(t, cortexerr.IsAny(e))
	require.True(t, cortexerr.IsAny(f))
}

func TestPlainErrors(t *testing.T) {
	e := fmt.Errorf("plain test error")
	require.False(t, cortexerr.IsAny(e))
	require.False(t, cortexerr.Has(e, testError))
}

func TestCoded(t *testing.T) {
	e := cortexerr.Coded(cortexerr.BreakpointsExhausted, "no free hardware breakpoint units")
	code, ok := cortexerr.CodeOf(e)
	require.True(t, ok)
	require.Equal(t, cortexerr.BreakpointsExhausted, code)
	require.False(t, code.Fatal())

	_, ok = cortexerr.CodeOf(cortexerr.Errorf("uncoded"))
	require.False(t, ok)
}
