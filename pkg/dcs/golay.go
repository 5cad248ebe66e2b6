package dcs

// Golay(23,12) encoder/decoder for DCS codewords.
//
// A DCS frame is a 23-bit systematic Golay codeword: data in bits 22..11,
// parity in bits 10..0. The generator polynomial is
// x^11 + x^10 + x^6 + x^5 + x^4 + x^2 + 1 (0xC75).

const (
	// golayGenerator is the Golay(23,12) generator polynomial.
	golayGenerator = 0xC75

	// codewordMask keeps a value inside the 23-bit codeword space.
	codewordMask = 0x7FFFFF

	// codewordBits is the frame length in bits.
	codewordBits = 23

	// dataBits is the payload width of a codeword.
	dataBits = 12
)

// errorPatterns maps each 11-bit syndrome to the lowest-weight error
// pattern producing it. Golay(23,12) is a perfect code, so every syndrome
// has exactly one pattern of weight <= 3: 1 + 23 + 253 + 1771 = 2048.
var errorPatterns [2048]uint32

func init() {
	filled := make([]bool, 2048)
	store := func(pattern uint32) {
		s := Syndrome(pattern)
		if !filled[s] {
			filled[s] = true
			errorPatterns[s] = pattern
		}
	}

	store(0)
	for a := 0; a < codewordBits; a++ {
		store(1 << a)
	}
	for a := 0; a < codewordBits; a++ {
		for b := a + 1; b < codewordBits; b++ {
			store(1<<a | 1<<b)
		}
	}
	for a := 0; a < codewordBits; a++ {
		for b := a + 1; b < codewordBits; b++ {
			for c := b + 1; c < codewordBits; c++ {
				store(1<<a | 1<<b | 1<<c)
			}
		}
	}
}

// Syndrome computes the 11-bit syndrome of a 23-bit word by polynomial
// division. A zero syndrome means the word is a valid codeword.
func Syndrome(word uint32) uint32 {
	reg := word & codewordMask
	for i := codewordBits - 1; i >= dataBits - 1; i-- {
		if reg&(1<<i) != 0 {
			reg ^= golayGenerator << (i - (dataBits - 1))
		}
	}
	return reg & 0x7FF
}

// Encode builds the 23-bit systematic codeword for 12-bit data.
func Encode(data uint32) uint32 {
	word := (data & 0xFFF) << 11
	return word | Syndrome(word)
}

// correct applies the table-driven error correction to a 23-bit word and
// returns the corrected codeword. Every syndrome is correctable, so the
// result is always a valid codeword, though with more than 3 channel
// errors it will be the wrong one.
func correct(word uint32) uint32 {
	word &= codewordMask
	return word ^ errorPatterns[Syndrome(word)]
}

// rotateLeft rotates a 23-bit word left by n positions.
func rotateLeft(word uint32, n int) uint32 {
	word &= codewordMask
	return ((word << n) | (word >> (codewordBits - n))) & codewordMask
}
