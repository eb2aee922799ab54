// Package arbiter implements per-cycle arbitration among bus masters
// competing for the shared target bus.
package arbiter

import (
	"fmt"

	"github.com/sarchlab/bridgesim/bus"
)

// Policy selects the arbitration algorithm.
type Policy uint8

// Supported arbitration policies.
const (
	// RoundRobin keeps the current master while it is asserted and
	// ready, otherwise advances to the next index modulo the master
	// count.
	RoundRobin Policy = iota

	// FixedPriority always grants the lowest-index asserted-and-ready
	// master.
	FixedPriority

	// WeightedRoundRobin serves each master for up to its configured
	// weight of consecutive ready cycles before moving on.
	WeightedRoundRobin

	// DynamicPriority serves the current master for up to a fixed quota
	// of consecutive ready cycles, rotating immediately when the master
	// is not ready.
	DynamicPriority

	// TokenBased rotates a grant token among the masters. The rotation
	// rule matches RoundRobin; the policy is kept distinct so a token
	// scheme with different rotation can be configured separately.
	TokenBased
)

// dynamicPriorityQuota is the number of consecutive served cycles the
// DynamicPriority policy allows before forcing rotation.
const dynamicPriorityQuota = 4

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case RoundRobin:
		return "roundRobin"
	case FixedPriority:
		return "fixedPriority"
	case WeightedRoundRobin:
		return "weightedRoundRobin"
	case DynamicPriority:
		return "dynamicPriority"
	case TokenBased:
		return "tokenBased"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// ParsePolicy converts a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "roundRobin":
		return RoundRobin, nil
	case "fixedPriority":
		return FixedPriority, nil
	case "weightedRoundRobin":
		return WeightedRoundRobin, nil
	case "dynamicPriority":
		return DynamicPriority, nil
	case "tokenBased":
		return TokenBased, nil
	default:
		return RoundRobin, fmt.Errorf("unknown arbitration policy %q", s)
	}
}

// Arbiter grants the shared target bus to one master per cycle.
type Arbiter struct {
	policy      Policy
	masterCount int
	weights     []uint32

	// current is the index the grant pointer rests on.
	current int

	// served counts consecutive cycles the current master has been
	// granted, used by the weighted and dynamic policies.
	served uint32

	// token is the rotation pointer for the token-based policy.
	token int
}

// New creates an arbiter for masterCount masters under the given
// policy. Weights are consumed by WeightedRoundRobin only; masters
// beyond the supplied slice get weight 1.
func New(policy Policy, masterCount int, weights []uint32) *Arbiter {
	return &Arbiter{
		policy:      policy,
		masterCount: masterCount,
		weights:     weights,
	}
}

// Select makes the arbitration decision for one cycle. It mutates the
// arbiter state exactly once and returns the granted master index. The
// second return value is false when no master is asserted-and-ready, in
// which case no transaction may proceed this cycle.
func (a *Arbiter) Select(requests []bus.Request) (int, bool) {
	if a.masterCount == 0 {
		return 0, false
	}

	switch a.policy {
	case FixedPriority:
		return a.selectFixedPriority(requests)
	case WeightedRoundRobin:
		return a.selectQuota(requests, a.weightOf(a.current))
	case DynamicPriority:
		return a.selectQuota(requests, dynamicPriorityQuota)
	case TokenBased:
		return a.selectToken(requests)
	default:
		return a.selectRoundRobin(requests)
	}
}

// Current returns the index the grant pointer currently rests on. It is
// the selection the security checks follow cycle by cycle.
func (a *Arbiter) Current() int {
	return a.current
}

// Reset restores the arbiter to its initial state.
func (a *Arbiter) Reset() {
	a.current = 0
	a.served = 0
	a.token = 0
}

func (a *Arbiter) selectRoundRobin(requests []bus.Request) (int, bool) {
	if !requests[a.current].Asserted() {
		a.current = (a.current + 1) % a.masterCount
	}
	return a.current, requests[a.current].Asserted()
}

func (a *Arbiter) selectFixedPriority(requests []bus.Request) (int, bool) {
	for i := 0; i < a.masterCount; i++ {
		if requests[i].Asserted() {
			a.current = i
			return i, true
		}
	}
	return a.current, false
}

// selectQuota serves the current master for up to quota consecutive
// ready cycles, rotating immediately when the quota is spent or the
// master is not ready.
func (a *Arbiter) selectQuota(requests []bus.Request, quota uint32) (int, bool) {
	if a.served >= quota || !requests[a.current].Asserted() {
		a.current = (a.current + 1) % a.masterCount
		a.served = 0
	}
	if requests[a.current].Asserted() {
		a.served++
		return a.current, true
	}
	return a.current, false
}

func (a *Arbiter) selectToken(requests []bus.Request) (int, bool) {
	if !requests[a.token].Asserted() {
		a.token = (a.token + 1) % a.masterCount
	}
	a.current = a.token
	return a.token, requests[a.token].Asserted()
}

func (a *Arbiter) weightOf(master int) uint32 {
	if master < len(a.weights) && a.weights[master] > 0 {
		return a.weights[master]
	}
	return 1
}
