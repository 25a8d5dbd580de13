package leb128_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/leb128"
)

func TestDecodeULEB128(t *testing.T) {
	v, n := leb128.DecodeULEB128([]byte{0xe5, 0x8e, 0x26})
	require.Equal(t, uint64(624485), v)
	require.Equal(t, 3, n)

	v, n = leb128.DecodeULEB128([]byte{0x02})
	require.Equal(t, uint64(2), v)
	require.Equal(t, 1, n)
}

func TestDecodeSLEB128(t *testing.T) {
	v, n := leb128.DecodeSLEB128([]byte{0x9b, 0xf1, 0x59})
	require.Equal(t, int64(-624485), v)
	require.Equal(t, 3, n)

	v, n = leb128.DecodeSLEB128([]byte{0x7f})
	require.Equal(t, int64(-1), v)
	require.Equal(t, 1, n)
}
