package hexconv

// decodeTable stores the value of a hex digit plus one, so zero marks a non-hex byte.
var decodeTable = [256]byte{
	'0': 0x1, '1': 0x2, '2': 0x3, '3': 0x4, '4': 0x5,
	'5': 0x6, '6': 0x7, '7': 0x8, '8': 0x9, '9': 0xa,
	'a': 0xb, 'b': 0xc, 'c': 0xd, 'd': 0xe, 'e': 0xf, 'f': 0x10,
	'A': 0xb, 'B': 0xc, 'C': 0xd, 'D': 0xe, 'E': 0xf, 'F': 0x10,
}

// Halfbyte returns the value of a single hex digit.
func Halfbyte(char byte) (value byte, ok bool) {
	v := decodeTable[char]
	return v - 1, v != 0
}

// Uint decodes a hex string. Strings longer than 15 digits are rejected, as they may
// overflow.
func Uint(str string) (n uint64, ok bool) {
	if len(str) == 0 || len(str) > 15 {
		return 0, false
	}

	for i := 0; i < len(str); i++ {
		v := decodeTable[str[i]]
		if v == 0 {
			return 0, false
		}

		n = n<<4 | uint64(v-1)
	}

	return n, true
}
