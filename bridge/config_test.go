package bridge_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bridgesim/bridge"
	"github.com/sarchlab/bridgesim/bus"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("should validate", func() {
			Expect(bridge.DefaultConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		var cfg *bridge.Config

		BeforeEach(func() {
			cfg = bridge.DefaultConfig()
		})

		It("should reject zero masters", func() {
			cfg.MasterCount = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a target count mismatch", func() {
			cfg.TargetCount = 3
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero clock divisor", func() {
			cfg.ClockDivisor = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown arbitration policy", func() {
			cfg.Arbitration = "lottery"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero-sized target window", func() {
			cfg.Targets[0].AddressRange = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject out-of-range privilege levels", func() {
			cfg.Targets[0].Privilege = 4
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject out-of-range compartment IDs", func() {
			cfg.Targets[0].Compartment = 16
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject overlapping target windows", func() {
			cfg.Targets = []bus.TargetConfig{
				{BaseAddress: 0x4000_0000, AddressRange: 0x2000},
				{BaseAddress: 0x4000_1000, AddressRange: 0x2000},
			}
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})

	Describe("LoadConfig / SaveConfig", func() {
		It("should round-trip through a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "bridge.json")

			cfg := bridge.DefaultConfig()
			cfg.Arbitration = "weightedRoundRobin"
			cfg.ClockDivisor = 4
			Expect(cfg.SaveConfig(path)).To(Succeed())

			loaded, err := bridge.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("should report missing files", func() {
			_, err := bridge.LoadConfig("/nonexistent/bridge.json")
			Expect(err).To(HaveOccurred())
		})
	})
})
