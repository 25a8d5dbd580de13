package render

import (
	"fmt"
	"strings"

	"cortexdbg/value"
)

const (
	// OptimizedOut is shown for a variable the engine could not fetch at
	// all (its DIE has no DW_AT_location, or it was pure debug metadata
	// with no storage): a value with neither a scalar nor children.
	OptimizedOut = "<OptimizedOut>"

	// OutOfRange is shown for a variable whose location list does cover
	// an address, but not the current PC - a scope whose storage is
	// only valid elsewhere in the function.
	OutOfRange = "<OutOfRange>"

	// ZeroSize is shown for a type that resolved to zero bytes, which
	// value.Evaluate cannot meaningfully render as a scalar or composite.
	ZeroSize = "<ZeroSize>"
)

// Value formats a successfully reconstructed value.Value for display.
func Value(v value.Value) string {
	if v.OutOfRange {
		return OutOfRange
	}

	if v.Type != nil && v.Type.ByteSize == 0 &&
		v.Type.Kind != value.KindStruct && v.Type.Kind != value.KindUnion && v.Type.Kind != value.KindVariantPart {
		return ZeroSize
	}

	switch {
	case v.Type != nil && v.Type.Kind == value.KindEnum && v.EnumName != "":
		return v.EnumName

	case v.Type != nil && v.Type.Kind == value.KindVariantPart && v.EnumName != "" && len(v.Children) == 1:
		return v.EnumName + Value(*v.Children[0])

	case v.Scalar != nil:
		return formatScalar(v)

	case v.Children != nil:
		return formatComposite(v)
	}

	return OptimizedOut
}

func formatScalar(v value.Value) string {
	if v.Type == nil {
		return fmt.Sprintf("%d", v.Scalar.Unsigned)
	}

	switch v.Type.Kind {
	case value.KindPointer:
		return fmt.Sprintf("0x%08x", v.Scalar.Unsigned)
	case value.KindBase:
		switch v.Type.Encoding {
		case value.EncodingSigned:
			return fmt.Sprintf("%d", v.Scalar.Signed)
		case value.EncodingFloat:
			return fmt.Sprintf("%g", v.Scalar.Float)
		case value.EncodingBoolean:
			return fmt.Sprintf("%t", v.Scalar.Bool)
		default:
			return fmt.Sprintf("%d", v.Scalar.Unsigned)
		}
	default:
		return fmt.Sprintf("%d", v.Scalar.Unsigned)
	}
}

func formatComposite(v value.Value) string {
	var b strings.Builder
	b.WriteByte('{')

	isArray := v.Type != nil && v.Type.Kind == value.KindArray

	for i, child := range v.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		if !isArray && v.Type != nil && i < len(v.Type.Members) {
			b.WriteString(v.Type.Members[i].Name)
			b.WriteByte('=')
		}
		if child == nil {
			b.WriteString(OptimizedOut)
			continue
		}
		b.WriteString(Value(*child))
	}

	b.WriteByte('}')
	return b.String()
}
