package bridge

import "github.com/sarchlab/bridgesim/bus"

// Violations holds the per-target security pulses for one cycle. Each
// slice has one entry per configured target. The flags are true for
// exactly the cycle the mismatch is observed, never sticky.
type Violations struct {
	// Secure flags targets that require secure access while the served
	// request is marked non-secure.
	Secure []bool

	// Compartment flags targets whose expected compartment ID differs
	// from the served request's.
	Compartment []bool

	// Privilege flags targets whose expected privilege level differs
	// from the served request's privilege bits.
	Privilege []bool
}

// Any returns true if any pulse in any category is set.
func (v Violations) Any() bool {
	for i := range v.Secure {
		if v.Secure[i] || v.Compartment[i] || v.Privilege[i] {
			return true
		}
	}
	return false
}

// PolicyChecker evaluates a request's security attributes against every
// configured target's policy.
//
// The checks are broadcast: each target is evaluated independently of
// whether it is the one the address actually selects. Violations are
// observational only and never alter the transaction outcome.
type PolicyChecker struct {
	targets []bus.TargetConfig
}

// NewPolicyChecker creates a checker over the given target policies.
func NewPolicyChecker(targets []bus.TargetConfig) *PolicyChecker {
	return &PolicyChecker{targets: targets}
}

// Evaluate recomputes the violation pulses for one cycle from the given
// request. It is a pure function of the request and the immutable
// target configuration.
func (c *PolicyChecker) Evaluate(req bus.Request) Violations {
	v := Violations{
		Secure:      make([]bool, len(c.targets)),
		Compartment: make([]bool, len(c.targets)),
		Privilege:   make([]bool, len(c.targets)),
	}

	for i, t := range c.targets {
		v.Secure[i] = t.Secure && req.Prot.NonSecure()
		v.Compartment[i] = req.Compartment != t.Compartment
		v.Privilege[i] = req.Prot.PrivilegeLevel() != t.Privilege
	}

	return v
}
