package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cortexdbg/render"
	"cortexdbg/value"
)

func TestValueFormatsSignedScalar(t *testing.T) {
	v := value.Value{
		Type:   &value.Type{Kind: value.KindBase, ByteSize: 4, Encoding: value.EncodingSigned},
		Scalar: &value.BaseValue{Signed: -7},
	}
	require.Equal(t, "-7", render.Value(v))
}

func TestValueFormatsPointerAsHex(t *testing.T) {
	v := value.Value{
		Type:   &value.Type{Kind: value.KindPointer, ByteSize: 4},
		Scalar: &value.BaseValue{Unsigned: 0x2000abcd},
	}
	require.Equal(t, "0x2000abcd", render.Value(v))
}

func TestValueFormatsEnumName(t *testing.T) {
	v := value.Value{
		Type:     &value.Type{Kind: value.KindEnum, ByteSize: 4},
		Scalar:   &value.BaseValue{Unsigned: 2},
		EnumName: "Ready",
	}
	require.Equal(t, "Ready", render.Value(v))
}

func TestValueFormatsStructWithMemberNames(t *testing.T) {
	tt := &value.Type{
		Kind: value.KindStruct,
		Members: []value.Member{
			{Name: "x"},
			{Name: "y"},
		},
	}
	v := value.Value{
		Type: tt,
		Children: []*value.Value{
			{Type: &value.Type{Kind: value.KindBase, ByteSize: 4, Encoding: value.EncodingSigned}, Scalar: &value.BaseValue{Signed: 1}},
			{Type: &value.Type{Kind: value.KindBase, ByteSize: 4, Encoding: value.EncodingSigned}, Scalar: &value.BaseValue{Signed: 2}},
		},
	}
	require.Equal(t, "{x=1, y=2}", render.Value(v))
}

func TestValueFormatsVariantPart(t *testing.T) {
	u16 := &value.Type{Kind: value.KindBase, ByteSize: 2, Encoding: value.EncodingUnsigned}
	payload := &value.Value{
		Type: &value.Type{
			Kind:    value.KindStruct,
			Members: []value.Member{{Name: "x"}, {Name: "y"}},
		},
		Children: []*value.Value{
			{Type: u16, Scalar: &value.BaseValue{Unsigned: 5}},
			{Type: u16, Scalar: &value.BaseValue{Unsigned: 9}},
		},
	}
	v := value.Value{
		Type:     &value.Type{Kind: value.KindVariantPart, Name: "E"},
		EnumName: "B",
		Children: []*value.Value{payload},
	}
	require.Equal(t, "B{x=5, y=9}", render.Value(v))
}

func TestValueFormatsOutOfRange(t *testing.T) {
	v := value.Value{
		Type:       &value.Type{Kind: value.KindBase, ByteSize: 4, Encoding: value.EncodingUnsigned},
		OutOfRange: true,
	}
	require.Equal(t, render.OutOfRange, render.Value(v))
}

func TestValueZeroSizeType(t *testing.T) {
	v := value.Value{Type: &value.Type{Kind: value.KindBase, ByteSize: 0}}
	require.Equal(t, render.ZeroSize, render.Value(v))
}

func TestValueOptimizedOutWhenUnresolved(t *testing.T) {
	v := value.Value{Type: &value.Type{Kind: value.KindStruct, ByteSize: 4}}
	require.Equal(t, render.OptimizedOut, render.Value(v))
}
