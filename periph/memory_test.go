package periph_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bridgesim/bus"
	"github.com/sarchlab/bridgesim/periph"
)

var _ = Describe("Memory", func() {
	var m *periph.Memory

	BeforeEach(func() {
		m = periph.NewMemory()
	})

	It("should be ready immediately without wait states", func() {
		Expect(m.Ready()).To(BeTrue())
	})

	It("should store and return full words", func() {
		_, fault := m.Access(0x100, 0xCAFE_F00D, true, bus.StrobeWord)
		Expect(fault).To(BeFalse())

		data, fault := m.Access(0x100, 0, false, bus.StrobeWord)
		Expect(fault).To(BeFalse())
		Expect(data).To(Equal(uint32(0xCAFE_F00D)))
	})

	It("should merge only the strobed byte lanes on writes", func() {
		m.Write32(0x40, 0xAAAA_AAAA)

		m.Access(0x40, 0x1122_3344, true, bus.StrobeHalfword)
		Expect(m.Read32(0x40)).To(Equal(uint32(0xAAAA_3344)))

		m.Access(0x40, 0xFFFF_FFFF, true, bus.StrobeByte)
		Expect(m.Read32(0x40)).To(Equal(uint32(0xAAAA_33FF)))
	})

	It("should read zero from untouched words", func() {
		data, _ := m.Access(0xF00, 0, false, bus.StrobeWord)
		Expect(data).To(BeZero())
	})

	Describe("wait states", func() {
		It("should hold not-ready for the configured count per access", func() {
			m = periph.NewMemory(periph.WithWaitStates(2))

			Expect(m.Ready()).To(BeFalse())
			Expect(m.Ready()).To(BeFalse())
			Expect(m.Ready()).To(BeTrue())

			m.Access(0x0, 0, false, bus.StrobeWord)

			// The counter re-arms for the next access.
			Expect(m.Ready()).To(BeFalse())
			Expect(m.Ready()).To(BeFalse())
			Expect(m.Ready()).To(BeTrue())
		})
	})

	Describe("error window", func() {
		BeforeEach(func() {
			m = periph.NewMemory(periph.WithErrorWindow(0x800, 0x100))
		})

		It("should flag accesses inside the window", func() {
			_, fault := m.Access(0x800, 0, false, bus.StrobeWord)
			Expect(fault).To(BeTrue())

			_, fault = m.Access(0x8FC, 1, true, bus.StrobeWord)
			Expect(fault).To(BeTrue())
		})

		It("should not flag accesses outside the window", func() {
			_, fault := m.Access(0x7FC, 0, false, bus.StrobeWord)
			Expect(fault).To(BeFalse())

			_, fault = m.Access(0x900, 0, false, bus.StrobeWord)
			Expect(fault).To(BeFalse())
		})

		It("should still perform the access", func() {
			m.Access(0x800, 0xBEEF, true, bus.StrobeWord)
			Expect(m.Read32(0x800)).To(Equal(uint32(0xBEEF)))
		})
	})
})
