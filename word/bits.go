package word

// Bit-range helpers for 32-bit words, generalized from a byte-oriented
// mask package to word width and to the nibble/payload splits the
// instruction codec actually needs.
//
// All bit indices here are 0-indexed from the least significant bit,
// the natural indexing for word-wide opcode/payload splits (unlike a
// 1-indexed, most-significant-first byte range scheme).

// bitIndex provides compile-time documentation for a bit position in a Word.
type bitIndex byte

func checkWordRange(start, end bitIndex) {
	if start > end {
		panic("word: invalid bit range -- start must <= end")
	}
}

// Last extracts the last (least significant) n bits of w.
func Last(w Word, n bitIndex) Word {
	return w & ((1 << n) - 1)
}

// Range extracts the inclusive bit range [start:end] of w, 0-indexed from
// the least significant bit, right-aligned in the result.
func Range(w Word, start, end bitIndex) Word {
	checkWordRange(start, end)
	return Last(w>>start, end-start+1)
}

// IsSet reports whether bit pos of w is 1.
func IsSet(w Word, pos bitIndex) bool {
	return w&(1<<pos) != 0
}

// Nibble extracts 4-bit group n (0 = least significant nibble) of w, used
// to pull the opcode and sub-opcode nibbles out of an instruction word.
func Nibble(w Word, n bitIndex) Word {
	return Range(w, n*4, n*4+3)
}
