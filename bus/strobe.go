package bus

// StrobeMask is a 4-bit byte-lane write-enable mask. Bit i enables byte
// lane i.
type StrobeMask uint8

// Strobe masks for the defined transfer sizes.
const (
	StrobeByte     StrobeMask = 0b0001
	StrobeHalfword StrobeMask = 0b0011
	StrobeWord     StrobeMask = 0b1111
)

// Strobes maps a transfer size code to its byte-lane strobe mask.
// Reserved or unknown codes fall back to the full-word mask rather than
// reporting an error.
func Strobes(s Size) StrobeMask {
	switch s {
	case SizeByte:
		return StrobeByte
	case SizeHalfword:
		return StrobeHalfword
	case SizeWord:
		return StrobeWord
	default:
		return StrobeWord
	}
}

// Enabled returns true if byte lane i is write-enabled by the mask.
func (m StrobeMask) Enabled(lane int) bool {
	return m&(1<<lane) != 0
}
