package bridge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bridgesim/bridge"
	"github.com/sarchlab/bridgesim/bus"
)

var _ = Describe("AddressDecoder", func() {
	windows := []bus.TargetConfig{
		{BaseAddress: 0x4000_0000, AddressRange: 0x1000},
		{BaseAddress: 0x4000_1000, AddressRange: 0x1000},
		{BaseAddress: 0x8000_0000, AddressRange: 0x100},
	}

	var decoder *bridge.AddressDecoder

	BeforeEach(func() {
		var err error
		decoder, err = bridge.NewAddressDecoder(windows)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should map addresses to their window in configuration order", func() {
		idx, ok := decoder.Decode(0x4000_0000)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(0))

		idx, ok = decoder.Decode(0x4000_1FFF)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(1))

		idx, ok = decoder.Decode(0x8000_00FF)
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(2))
	})

	It("should report unmapped addresses", func() {
		_, ok := decoder.Decode(0x0000_0000)
		Expect(ok).To(BeFalse())

		_, ok = decoder.Decode(0x4000_2000)
		Expect(ok).To(BeFalse())

		_, ok = decoder.Decode(0x8000_0100)
		Expect(ok).To(BeFalse())
	})

	It("should be idempotent", func() {
		first, okFirst := decoder.Decode(0x4000_0800)
		for i := 0; i < 10; i++ {
			idx, ok := decoder.Decode(0x4000_0800)
			Expect(ok).To(Equal(okFirst))
			Expect(idx).To(Equal(first))
		}
	})

	It("should reject overlapping windows at construction", func() {
		_, err := bridge.NewAddressDecoder([]bus.TargetConfig{
			{BaseAddress: 0x4000_0000, AddressRange: 0x2000},
			{BaseAddress: 0x4000_1000, AddressRange: 0x1000},
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("overlap"))
	})

	It("should accept adjacent windows", func() {
		_, err := bridge.NewAddressDecoder([]bus.TargetConfig{
			{BaseAddress: 0x4000_0000, AddressRange: 0x1000},
			{BaseAddress: 0x4000_1000, AddressRange: 0x1000},
		})
		Expect(err).NotTo(HaveOccurred())
	})
})
