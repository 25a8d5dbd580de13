package breakpoint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/breakpoint"
	"cortexdbg/cortexerr"
)

func TestSetAddVerifiesWithinSlotLimit(t *testing.T) {
	s := breakpoint.NewSet(2)

	a := s.Add(breakpoint.Location{Address: 0x1000})
	b := s.Add(breakpoint.Location{Address: 0x2000})
	require.True(t, a.Verified)
	require.True(t, b.Verified)

	c := s.Add(breakpoint.Location{Address: 0x3000})
	require.False(t, c.Verified)
}

func TestSetCheckOnlyTrueForVerified(t *testing.T) {
	s := breakpoint.NewSet(1)

	s.Add(breakpoint.Location{Address: 0x1000})
	s.Add(breakpoint.Location{Address: 0x2000}) // exceeds the single slot

	require.True(t, s.Check(0x1000))
	require.False(t, s.Check(0x2000))
	require.False(t, s.Check(0x9999))
}

func TestSetRemoveFreesSlotForStrictAdd(t *testing.T) {
	s := breakpoint.NewSet(1)

	_, err := s.AddStrict(breakpoint.Location{Address: 0x1000})
	require.NoError(t, err)

	_, err = s.AddStrict(breakpoint.Location{Address: 0x2000})
	require.Error(t, err)
	code, ok := cortexerr.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, cortexerr.BreakpointsExhausted, code)

	s.Remove(0x1000)
	_, err = s.AddStrict(breakpoint.Location{Address: 0x2000})
	require.NoError(t, err)
}
