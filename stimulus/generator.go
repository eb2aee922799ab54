// Package stimulus produces pseudo-random master-side request fields
// for closed-loop simulation runs.
package stimulus

import (
	"math/rand"

	"github.com/sarchlab/bridgesim/bus"
)

// Window is an address range requests are drawn from.
type Window struct {
	// Base is the first address of the window.
	Base uint32
	// Size is the window length in bytes.
	Size uint32
}

// Generator is a deterministic pseudo-random request source. The same
// seed and call sequence always produce the same requests.
type Generator struct {
	rng *rand.Rand

	windows     []Window
	requestProb float64
	writeProb   float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithAddressWindows sets the windows generated addresses are drawn
// from. Each request picks one window uniformly, so traffic spreads
// evenly across them.
func WithAddressWindows(ws ...Window) Option {
	return func(g *Generator) {
		g.windows = ws
	}
}

// WithRequestProbability sets the chance that Next produces an asserted
// request rather than an idle cycle.
func WithRequestProbability(p float64) Option {
	return func(g *Generator) {
		g.requestProb = p
	}
}

// WithWriteProbability sets the chance that an asserted request is a
// write.
func WithWriteProbability(p float64) Option {
	return func(g *Generator) {
		g.writeProb = p
	}
}

// NewGenerator creates a generator seeded for reproducible runs.
func NewGenerator(seed int64, opts ...Option) *Generator {
	g := &Generator{
		rng:         rand.New(rand.NewSource(seed)),
		windows:     []Window{{Base: 0x4000_0000, Size: 0x1_0000}},
		requestProb: 0.75,
		writeProb:   0.5,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next produces the next request fields for master i, given that the
// master is ready to transact. With probability 1-requestProb the
// returned request is idle (Select deasserted). Each master carries its
// index as its compartment ID so compartment policies can tell them
// apart.
func (g *Generator) Next(master int) bus.Request {
	if g.rng.Float64() >= g.requestProb {
		return bus.Request{}
	}

	w := g.windows[g.rng.Intn(len(g.windows))]

	// Word-align so every size code addresses lane 0.
	offset := uint32(g.rng.Intn(int(w.Size))) &^ 0x3

	return bus.Request{
		Address:     w.Base + offset,
		WriteData:   g.rng.Uint32(),
		Write:       g.rng.Float64() < g.writeProb,
		Size:        g.randomSize(),
		Burst:       uint8(g.rng.Intn(8)),
		Prot:        bus.Protection(g.rng.Intn(16)),
		Transfer:    uint8(g.rng.Intn(4)),
		Select:      true,
		Ready:       true,
		Lock:        g.rng.Float64() < 0.05,
		Compartment: uint8(master) & 0xF,
	}
}

// randomSize draws a size code, occasionally a reserved one so the
// strobe fallback path sees traffic.
func (g *Generator) randomSize() bus.Size {
	switch g.rng.Intn(8) {
	case 0, 1, 2:
		return bus.SizeByte
	case 3, 4:
		return bus.SizeHalfword
	case 5, 6:
		return bus.SizeWord
	default:
		return bus.SizeReserved
	}
}
