// Package bridge implements the protocol bridge connecting several
// fast request sources to shared slower targets: arbitration, address
// decode, the phase state machine with wait states and a divided target
// clock, byte-lane strobes, security policy pulses, and response
// routing.
package bridge

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/bridgesim/arbiter"
	"github.com/sarchlab/bridgesim/bus"
)

// Phase is the protocol phase the bridge occupies on a target-bus tick.
type Phase uint8

// Protocol phases. The machine is cyclic: Idle is both the initial
// phase and the phase every transaction returns to.
const (
	PhaseIdle Phase = iota
	PhaseSelect
	PhaseSetup
	PhaseEnable
	PhaseResponse
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseSelect:
		return "SELECT"
	case PhaseSetup:
		return "SETUP"
	case PhaseEnable:
		return "ENABLE"
	case PhaseResponse:
		return "RESPONSE"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Target is the synchronous peripheral contract the bridge drives.
type Target interface {
	// Ready reports whether the target can complete an access on this
	// target-bus tick. A false value extends the Enable phase by one
	// wait state.
	Ready() bool

	// Access performs the transfer and returns the read data and the
	// target's error flag. It is called at most once per transaction,
	// on the tick Ready is true.
	Access(addr, wdata uint32, write bool, strobes bus.StrobeMask) (uint32, bool)
}

// Stats holds the bridge's running counters.
type Stats struct {
	// Cycles is the number of master-clock cycles ticked.
	Cycles uint64
	// TargetTicks is the number of target-bus ticks produced by the
	// clock divider.
	TargetTicks uint64
	// Transactions is the number of completed transactions.
	Transactions uint64
	// WaitStates is the total number of Enable-phase extensions.
	WaitStates uint64
	// UnmappedAccesses counts transactions whose address matched no
	// target window.
	UnmappedAccesses uint64
	// ErrorResponses counts transactions the target flagged an error
	// on.
	ErrorResponses uint64
	// SecureViolations, CompartmentViolations, and PrivilegeViolations
	// count violation pulses, one per target per cycle the pulse is
	// raised.
	SecureViolations      uint64
	CompartmentViolations uint64
	PrivilegeViolations   uint64
}

// TraceRecord describes one completed transaction.
type TraceRecord struct {
	// ID is a unique identifier for the transaction.
	ID string
	// Master is the index of the served master.
	Master int
	// Target is the decoded target index, or -1 for an unmapped
	// address.
	Target int
	// Address is the latched request address.
	Address uint32
	// Write is the latched write flag.
	Write bool
	// StartCycle and EndCycle are the master-clock cycles the
	// transaction left Idle and delivered its response.
	StartCycle uint64
	EndCycle   uint64
	// WaitStates is the number of Enable extensions the target caused.
	WaitStates uint64
	// Err is the target-reported error flag.
	Err bool
}

// Bridge is the protocol bridge state machine. All state advances
// inside Tick; the type is not safe for concurrent use and does not
// need to be, the model is single-threaded by construction.
type Bridge struct {
	arb     *arbiter.Arbiter
	decoder *AddressDecoder
	checker *PolicyChecker
	targets []Target

	masterCount  int
	clockDivisor uint32

	// phase is the protocol phase the next target-bus tick executes.
	phase Phase

	// divCount tracks progress toward the next target-bus tick.
	divCount uint32

	// enablePulse is true on cycles the divider completed, the only
	// cycles phase transitions may occur on.
	enablePulse bool

	// Transaction fields, latched at Setup and held through Response.
	served    int
	targetIdx int
	addr      uint32
	wdata     uint32
	write     bool
	strobes   bus.StrobeMask

	// Captured target response, valid between Enable completion and
	// Response delivery.
	rdata uint32
	rerr  bool

	selectLines []bool
	violations  Violations

	// completed pulses the served master index for the cycle a
	// response was delivered.
	completed      int
	completedValid bool

	startCycle uint64
	waitStates uint64

	stats Stats
	trace []TraceRecord
}

// New creates a bridge from the configuration and the target
// collaborators. len(targets) must equal cfg.TargetCount.
func New(cfg *Config, targets []Target) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(targets) != cfg.TargetCount {
		return nil, fmt.Errorf("bridge needs %d targets, got %d",
			cfg.TargetCount, len(targets))
	}

	policy, err := arbiter.ParsePolicy(cfg.Arbitration)
	if err != nil {
		return nil, err
	}

	decoder, err := NewAddressDecoder(cfg.Targets)
	if err != nil {
		return nil, err
	}

	return &Bridge{
		arb:          arbiter.New(policy, cfg.MasterCount, cfg.Weights),
		decoder:      decoder,
		checker:      NewPolicyChecker(cfg.Targets),
		targets:      targets,
		masterCount:  cfg.MasterCount,
		clockDivisor: cfg.ClockDivisor,
		targetIdx:    -1,
		selectLines:  make([]bool, cfg.TargetCount),
	}, nil
}

// Tick advances the bridge by one master-clock cycle. requests must
// hold one entry per master. The returned slice holds one response per
// master; it is the zero response everywhere except for the served
// master on the cycle its transaction completes.
func (b *Bridge) Tick(requests []bus.Request) []bus.Response {
	b.stats.Cycles++
	b.completedValid = false

	// The divider free-runs: it completes once every clockDivisor
	// master cycles regardless of protocol state.
	b.divCount++
	b.enablePulse = b.divCount >= b.clockDivisor
	if b.enablePulse {
		b.divCount = 0
		b.stats.TargetTicks++
	}

	granted, ok := b.arb.Select(requests)

	// Violation pulses follow the arbiter's selection every master
	// cycle, in flight or not, and are broadcast across all targets.
	b.violations = b.checker.Evaluate(requests[granted])
	b.countViolations()

	responses := make([]bus.Response, b.masterCount)

	if !b.enablePulse {
		return responses
	}

	// Leaving Idle happens on the same tick the grant is observed, so
	// that tick already executes the Select phase.
	if b.phase == PhaseIdle && ok {
		b.phase = PhaseSelect
		b.served = granted
		b.startCycle = b.stats.Cycles
		b.waitStates = 0
	}

	switch b.phase {
	case PhaseIdle:
		// No asserted-and-ready master; nothing proceeds.

	case PhaseSelect:
		req := requests[b.served]
		if idx, mapped := b.decoder.Decode(req.Address); mapped {
			b.targetIdx = idx
			b.selectLines[idx] = true
		} else {
			b.targetIdx = -1
			b.stats.UnmappedAccesses++
		}
		b.phase = PhaseSetup

	case PhaseSetup:
		req := requests[b.served]
		b.addr = req.Address
		b.wdata = req.WriteData
		b.write = req.Write
		b.strobes = bus.Strobes(req.Size)
		b.phase = PhaseEnable

	case PhaseEnable:
		switch {
		case b.targetIdx < 0:
			// Unmapped: no target is asserted, so the sequence
			// completes fail-soft with zero data and no error.
			b.rdata = 0
			b.rerr = false
			b.phase = PhaseResponse
		case b.targets[b.targetIdx].Ready():
			b.rdata, b.rerr = b.targets[b.targetIdx].Access(
				b.addr, b.wdata, b.write, b.strobes)
			b.phase = PhaseResponse
		default:
			b.waitStates++
			b.stats.WaitStates++
		}

	case PhaseResponse:
		responses = RouteResponse(
			bus.Response{ReadData: b.rdata, Err: b.rerr},
			b.served, b.masterCount)
		b.completed = b.served
		b.completedValid = true
		b.recordTransaction()
		b.endTransaction()
	}

	return responses
}

// Phase returns the protocol phase the next target-bus tick executes.
func (b *Bridge) Phase() Phase {
	return b.phase
}

// SelectLines returns the per-target select lines. Exactly the decoded
// target's line is asserted from Select through Response; none is for
// an unmapped address. The slice is valid until the next Tick.
func (b *Bridge) SelectLines() []bool {
	return b.selectLines
}

// Violations returns the violation pulses computed on the last Tick.
func (b *Bridge) Violations() Violations {
	return b.violations
}

// Completed pulses the index of the master whose transaction completed
// on the last Tick. ok is false on every other cycle.
func (b *Bridge) Completed() (int, bool) {
	return b.completed, b.completedValid
}

// Stats returns a copy of the running counters.
func (b *Bridge) Stats() Stats {
	return b.stats
}

// Trace returns the completed-transaction records in completion order.
func (b *Bridge) Trace() []TraceRecord {
	return b.trace
}

// Reset restores the bridge to its initial state at the tick boundary.
// An in-flight transaction is discarded and its master never receives a
// response. Statistics and the trace survive reset so an aborted run
// can still be reported.
func (b *Bridge) Reset() {
	b.phase = PhaseIdle
	b.divCount = 0
	b.enablePulse = false
	b.served = 0
	b.targetIdx = -1
	b.addr = 0
	b.wdata = 0
	b.write = false
	b.strobes = 0
	b.rdata = 0
	b.rerr = false
	b.completedValid = false
	b.waitStates = 0
	b.violations = Violations{}
	for i := range b.selectLines {
		b.selectLines[i] = false
	}
	b.arb.Reset()
}

func (b *Bridge) recordTransaction() {
	b.stats.Transactions++
	if b.rerr {
		b.stats.ErrorResponses++
	}

	b.trace = append(b.trace, TraceRecord{
		ID:         xid.New().String(),
		Master:     b.served,
		Target:     b.targetIdx,
		Address:    b.addr,
		Write:      b.write,
		StartCycle: b.startCycle,
		EndCycle:   b.stats.Cycles,
		WaitStates: b.waitStates,
		Err:        b.rerr,
	})
}

func (b *Bridge) endTransaction() {
	if b.targetIdx >= 0 {
		b.selectLines[b.targetIdx] = false
	}
	b.targetIdx = -1
	b.phase = PhaseIdle
}

func (b *Bridge) countViolations() {
	for i := range b.violations.Secure {
		if b.violations.Secure[i] {
			b.stats.SecureViolations++
		}
		if b.violations.Compartment[i] {
			b.stats.CompartmentViolations++
		}
		if b.violations.Privilege[i] {
			b.stats.PrivilegeViolations++
		}
	}
}
