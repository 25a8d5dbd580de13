// Package leb128 decodes the LEB128 variable-length integer encoding
// DWARF uses throughout its bytecode (expression operands, abbreviation
// tables, line-number program operands).
package leb128

// DecodeULEB128 decodes an unsigned LEB128 value per the DWARF
// standard's decoding algorithm. It returns the decoded value and the
// number of bytes consumed from encoded.
func DecodeULEB128(encoded []uint8) (uint64, int) {
	var result uint64
	var shift uint64

	var n int
	for _, v := range encoded {
		n++
		result |= uint64(v&0x7f) << shift
		if v&0x80 == 0x00 {
			break
		}
		shift += 7
	}

	return result, n
}

// DecodeSLEB128 decodes a signed LEB128 value per the DWARF standard's
// decoding algorithm. It returns the decoded value and the number of
// bytes consumed from encoded.
func DecodeSLEB128(encoded []uint8) (int64, int) {
	const size = 64

	var result int64
	var shift uint64

	var v uint8
	var n int
	for _, v = range encoded {
		n++
		result |= int64(v&0x7f) << shift
		shift += 7
		if v&0x80 == 0x00 {
			break
		}
	}

	if shift < size && v&0x40 > 0 {
		result |= -(1 << shift)
	}

	return result, n
}
