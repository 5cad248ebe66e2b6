package dcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSet(t *testing.T) {
	codes := Codes()
	assert.Len(t, codes, 105)

	for i := 1; i < len(codes); i++ {
		if codes[i] <= codes[i-1] {
			t.Errorf("code list not strictly ascending at index %d: %d, %d", i, codes[i-1], codes[i])
		}
	}

	for _, c := range codes {
		if !ValidCode(c) {
			t.Errorf("listed code %d not reported valid", c)
		}
		if c < 0 || c > 511 {
			t.Errorf("code %d outside 9-bit range", c)
		}
	}

	// Valid Golay data words that are not standard codes.
	for _, c := range []int{0, 7, 18, 20, 511} {
		assert.False(t, ValidCode(c), "code %d should not be in the standard set", c)
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		code     int
		inverted bool
		want     string
	}{
		{19, false, "D023"},
		{19, true, "D023N"},
		{21, false, "D025"},
		{170, false, "D252"},
		{492, true, "D754N"},
	}

	for _, tt := range tests {
		if got := FormatCode(tt.code, tt.inverted); got != tt.want {
			t.Errorf("FormatCode(%d, %v) = %q, want %q", tt.code, tt.inverted, got, tt.want)
		}
	}
}
