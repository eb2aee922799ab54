package bridge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bridgesim/bridge"
	"github.com/sarchlab/bridgesim/bus"
)

var _ = Describe("PolicyChecker", func() {
	targets := []bus.TargetConfig{
		{BaseAddress: 0x4000_0000, AddressRange: 0x1000,
			Secure: true, Compartment: 1, Privilege: 1},
		{BaseAddress: 0x5000_0000, AddressRange: 0x1000,
			Secure: false, Compartment: 2, Privilege: 0},
	}

	var checker *bridge.PolicyChecker

	BeforeEach(func() {
		checker = bridge.NewPolicyChecker(targets)
	})

	It("should flag secure targets on non-secure requests", func() {
		v := checker.Evaluate(bus.Request{
			Prot:        bus.ProtNonSecure | bus.ProtPrivileged,
			Compartment: 1,
		})

		Expect(v.Secure[0]).To(BeTrue())
		Expect(v.Secure[1]).To(BeFalse())
	})

	It("should not flag secure requests", func() {
		v := checker.Evaluate(bus.Request{
			Prot:        bus.ProtPrivileged,
			Compartment: 1,
		})

		Expect(v.Secure[0]).To(BeFalse())
		Expect(v.Secure[1]).To(BeFalse())
	})

	It("should flag compartment mismatches per target", func() {
		v := checker.Evaluate(bus.Request{Compartment: 2})

		Expect(v.Compartment[0]).To(BeTrue())
		Expect(v.Compartment[1]).To(BeFalse())
	})

	It("should flag privilege mismatches per target", func() {
		v := checker.Evaluate(bus.Request{Prot: bus.ProtPrivileged})

		// Privilege level 1 matches target 0, mismatches target 1.
		Expect(v.Privilege[0]).To(BeFalse())
		Expect(v.Privilege[1]).To(BeTrue())
	})

	It("should broadcast checks regardless of which target the address selects", func() {
		// The address falls in target 1's window, but target 0's
		// policies are still evaluated.
		v := checker.Evaluate(bus.Request{
			Address:     0x5000_0000,
			Prot:        bus.ProtNonSecure,
			Compartment: 2,
		})

		Expect(v.Secure[0]).To(BeTrue())
		Expect(v.Compartment[0]).To(BeTrue())
	})

	It("should be pure: the same request always evaluates the same", func() {
		req := bus.Request{Prot: bus.ProtNonSecure, Compartment: 9}
		first := checker.Evaluate(req)
		second := checker.Evaluate(req)
		Expect(second).To(Equal(first))
	})
})
