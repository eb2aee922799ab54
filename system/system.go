// Package system composes stimulus masters, the bridge, and peripheral
// targets into a runnable simulation driven by the Akita event engine.
package system

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bridgesim/bridge"
	"github.com/sarchlab/bridgesim/bus"
	"github.com/sarchlab/bridgesim/periph"
	"github.com/sarchlab/bridgesim/stimulus"
)

// System owns one bridge instance together with its collaborators: a
// pseudo-random request source per master and one memory target per
// configured window. It implements sim.Ticker so the whole model
// advances as a single Akita ticking component, which keeps the
// per-cycle update atomic.
type System struct {
	engine sim.Engine
	comp   *sim.TickingComponent

	bridge  *bridge.Bridge
	gen     *stimulus.Generator
	targets []*periph.Memory

	requests  []bus.Request
	responses []bus.Response

	// consumed marks masters whose transaction completed last cycle;
	// they sit out one cycle before driving a fresh request.
	consumed []bool

	resetAsserted bool

	cycleBudget uint64
	cyclesRun   uint64
}

// Option configures a System.
type Option func(*builder)

type builder struct {
	seed            int64
	targetWait      uint32
	errWindowBase   uint32
	errWindowSize   uint32
	errWindowTarget int
	requestProb     float64
}

// WithSeed sets the stimulus seed.
func WithSeed(seed int64) Option {
	return func(b *builder) {
		b.seed = seed
	}
}

// WithTargetWaitStates inserts n wait states into every target access.
func WithTargetWaitStates(n uint32) Option {
	return func(b *builder) {
		b.targetWait = n
	}
}

// WithErrorWindow configures an error-reporting address window on the
// given target.
func WithErrorWindow(target int, base, size uint32) Option {
	return func(b *builder) {
		b.errWindowTarget = target
		b.errWindowBase = base
		b.errWindowSize = size
	}
}

// WithRequestProbability sets the per-cycle chance each idle master
// drives a new request.
func WithRequestProbability(p float64) Option {
	return func(b *builder) {
		b.requestProb = p
	}
}

// New builds a system from the bridge configuration.
func New(cfg *bridge.Config, opts ...Option) (*System, error) {
	b := &builder{
		seed:            1,
		errWindowTarget: -1,
		requestProb:     0.75,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system configuration: %w", err)
	}

	targets := make([]*periph.Memory, cfg.TargetCount)
	bridgeTargets := make([]bridge.Target, cfg.TargetCount)
	for i := range targets {
		memOpts := []periph.Option{}
		if b.targetWait > 0 {
			memOpts = append(memOpts, periph.WithWaitStates(b.targetWait))
		}
		if i == b.errWindowTarget {
			memOpts = append(memOpts,
				periph.WithErrorWindow(b.errWindowBase, b.errWindowSize))
		}
		targets[i] = periph.NewMemory(memOpts...)
		bridgeTargets[i] = targets[i]
	}

	br, err := bridge.New(cfg, bridgeTargets)
	if err != nil {
		return nil, err
	}

	s := &System{
		bridge: br,
		gen: stimulus.NewGenerator(b.seed,
			stimulus.WithAddressWindows(stimulusWindows(cfg.Targets)...),
			stimulus.WithRequestProbability(b.requestProb)),
		targets:   targets,
		requests:  make([]bus.Request, cfg.MasterCount),
		responses: make([]bus.Response, cfg.MasterCount),
		consumed:  make([]bool, cfg.MasterCount),
	}

	s.engine = sim.NewSerialEngine()
	s.comp = sim.NewTickingComponent(
		"BridgeSim.System", s.engine, 1*sim.GHz, s)

	return s, nil
}

// Tick advances the system by one master-clock cycle. It implements
// sim.Ticker; returning false stops the engine from rescheduling once
// the cycle budget is spent.
func (s *System) Tick() bool {
	if s.cyclesRun >= s.cycleBudget {
		return false
	}
	s.Step()
	return true
}

// Step advances exactly one master-clock cycle without involving the
// event engine.
func (s *System) Step() {
	s.cyclesRun++

	if s.resetAsserted {
		s.bridge.Reset()
		for i := range s.requests {
			s.requests[i] = bus.Request{}
			s.consumed[i] = false
		}
		s.responses = make([]bus.Response, len(s.requests))
		return
	}

	for i := range s.requests {
		switch {
		case s.consumed[i]:
			// The master's previous request was just served; it idles
			// one cycle before producing the next one.
			s.requests[i] = bus.Request{}
			s.consumed[i] = false
		case !s.requests[i].Select:
			s.requests[i] = s.gen.Next(i)
		}
	}

	s.responses = s.bridge.Tick(s.requests)

	if master, ok := s.bridge.Completed(); ok {
		s.consumed[master] = true
	}
}

// Run advances the system by the given number of cycles under the Akita
// engine.
func (s *System) Run(cycles uint64) error {
	s.cycleBudget = s.cyclesRun + cycles
	s.comp.TickLater()
	return s.engine.Run()
}

// RunCycles advances the system by the given number of cycles without
// the engine. Intended for tests that need cycle-exact control.
func (s *System) RunCycles(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		s.Step()
	}
}

// AssertReset drives the global reset line. While asserted, every Step
// restores all component state to its initial value; any in-flight
// transaction is dropped and its master receives no response.
func (s *System) AssertReset() {
	s.resetAsserted = true
}

// ReleaseReset releases the global reset line.
func (s *System) ReleaseReset() {
	s.resetAsserted = false
}

// Bridge returns the bridge under simulation.
func (s *System) Bridge() *bridge.Bridge {
	return s.bridge
}

// Target returns the memory model behind target index i.
func (s *System) Target(i int) *periph.Memory {
	return s.targets[i]
}

// Requests returns the request fields driven on the last cycle.
func (s *System) Requests() []bus.Request {
	return s.requests
}

// Responses returns the per-master responses of the last cycle.
func (s *System) Responses() []bus.Response {
	return s.responses
}

// Cycles returns the number of cycles stepped so far.
func (s *System) Cycles() uint64 {
	return s.cyclesRun
}

// stimulusWindows derives one stimulus window per target window, plus
// one window right past the highest target so the unmapped path sees
// traffic too.
func stimulusWindows(targets []bus.TargetConfig) []stimulus.Window {
	windows := make([]stimulus.Window, 0, len(targets)+1)
	hi := uint64(0)
	for _, t := range targets {
		windows = append(windows, stimulus.Window{
			Base: t.BaseAddress,
			Size: t.AddressRange,
		})
		if end := uint64(t.BaseAddress) + uint64(t.AddressRange); end > hi {
			hi = end
		}
	}

	if hi+0x1000 <= 1<<32 {
		windows = append(windows, stimulus.Window{
			Base: uint32(hi),
			Size: 0x1000,
		})
	}

	return windows
}
