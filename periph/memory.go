// Package periph provides peripheral target models for the slow side of
// the bridge.
package periph

import "github.com/sarchlab/bridgesim/bus"

// Memory is a word-granular RAM target. It completes accesses
// synchronously, optionally after a programmable number of wait states,
// and reports an error flag for accesses falling inside a configured
// error window.
type Memory struct {
	words map[uint32]uint32

	waitStates uint32
	waitLeft   uint32

	errBase   uint32
	errRange  uint32
	errWindow bool
}

// Option configures a Memory.
type Option func(*Memory)

// WithWaitStates makes every access hold the bus not-ready for n
// target-bus ticks before completing.
func WithWaitStates(n uint32) Option {
	return func(m *Memory) {
		m.waitStates = n
		m.waitLeft = n
	}
}

// WithErrorWindow makes accesses inside [base, base+size) complete with
// the error flag set.
func WithErrorWindow(base, size uint32) Option {
	return func(m *Memory) {
		m.errBase = base
		m.errRange = size
		m.errWindow = true
	}
}

// NewMemory creates an empty memory target.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		words: make(map[uint32]uint32),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ready reports whether the pending access can complete on this tick.
// Each call while not ready consumes one configured wait state.
func (m *Memory) Ready() bool {
	if m.waitLeft > 0 {
		m.waitLeft--
		return false
	}
	return true
}

// Access performs a word-aligned transfer. Writes merge byte lanes
// according to the strobe mask; reads return the full word. The error
// flag is set when the address falls in the error window.
func (m *Memory) Access(addr, wdata uint32, write bool, strobes bus.StrobeMask) (uint32, bool) {
	// Re-arm the wait counter for the next transaction.
	m.waitLeft = m.waitStates

	word := addr >> 2
	fault := m.errWindow &&
		uint64(addr) >= uint64(m.errBase) &&
		uint64(addr) < uint64(m.errBase)+uint64(m.errRange)

	if write {
		value := m.words[word]
		for lane := 0; lane < 4; lane++ {
			if !strobes.Enabled(lane) {
				continue
			}
			shift := uint(lane) * 8
			value &^= 0xFF << shift
			value |= wdata & (0xFF << shift)
		}
		m.words[word] = value
		return 0, fault
	}

	return m.words[word], fault
}

// Read32 returns the word at the given address, bypassing the bus
// protocol. Intended for test setup and inspection.
func (m *Memory) Read32(addr uint32) uint32 {
	return m.words[addr>>2]
}

// Write32 stores a word at the given address, bypassing the bus
// protocol. Intended for test setup.
func (m *Memory) Write32(addr, value uint32) {
	m.words[addr>>2] = value
}
