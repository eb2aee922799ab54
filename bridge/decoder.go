package bridge

import (
	"fmt"

	"github.com/sarchlab/bridgesim/bus"
)

// AddressDecoder maps request addresses to target indices using the
// configured base+range windows.
type AddressDecoder struct {
	targets []bus.TargetConfig
}

// NewAddressDecoder creates a decoder over the given target windows.
// Overlapping windows are a configuration error and are rejected here
// rather than detected at runtime.
func NewAddressDecoder(targets []bus.TargetConfig) (*AddressDecoder, error) {
	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			if windowsOverlap(targets[i], targets[j]) {
				return nil, fmt.Errorf(
					"target windows %d and %d overlap: [0x%08X, 0x%08X) and [0x%08X, 0x%08X)",
					i, j,
					targets[i].BaseAddress, windowEnd(targets[i]),
					targets[j].BaseAddress, windowEnd(targets[j]))
			}
		}
	}

	return &AddressDecoder{targets: targets}, nil
}

// Decode returns the index of the first target window containing addr
// in ascending configuration order. The second return value is false
// when the address is unmapped.
func (d *AddressDecoder) Decode(addr uint32) (int, bool) {
	for i, t := range d.targets {
		if t.Contains(addr) {
			return i, true
		}
	}
	return 0, false
}

// TargetCount returns the number of configured targets.
func (d *AddressDecoder) TargetCount() int {
	return len(d.targets)
}

func windowEnd(t bus.TargetConfig) uint64 {
	return uint64(t.BaseAddress) + uint64(t.AddressRange)
}

func windowsOverlap(a, b bus.TargetConfig) bool {
	if a.AddressRange == 0 || b.AddressRange == 0 {
		return false
	}
	return uint64(a.BaseAddress) < windowEnd(b) &&
		uint64(b.BaseAddress) < windowEnd(a)
}
