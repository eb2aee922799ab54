package bridge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/bridgesim/arbiter"
	"github.com/sarchlab/bridgesim/bus"
)

// Config holds the construction-time configuration of the bridge.
type Config struct {
	// MasterCount is the number of request sources on the fast side.
	MasterCount int `json:"master_count"`

	// TargetCount is the number of targets on the slow side. It must
	// match the length of Targets.
	TargetCount int `json:"target_count"`

	// Arbitration names the arbitration policy: roundRobin,
	// fixedPriority, weightedRoundRobin, dynamicPriority, or
	// tokenBased.
	Arbitration string `json:"arbitration"`

	// Weights are the per-master service weights, consumed only by the
	// weightedRoundRobin policy. Masters beyond the array get weight 1.
	Weights []uint32 `json:"weights"`

	// ClockDivisor is the ratio between the master-side clock and the
	// target-bus clock. Must be at least 1; 1 means the target bus
	// ticks every master cycle.
	ClockDivisor uint32 `json:"clock_divisor"`

	// Targets are the per-target address windows and security
	// policies, in decode priority order.
	Targets []bus.TargetConfig `json:"targets"`
}

// DefaultConfig returns a two-master, two-target configuration with
// round-robin arbitration and a halved target clock.
func DefaultConfig() *Config {
	return &Config{
		MasterCount:  2,
		TargetCount:  2,
		Arbitration:  "roundRobin",
		Weights:      []uint32{2, 1},
		ClockDivisor: 2,
		Targets: []bus.TargetConfig{
			{
				BaseAddress:  0x4000_0000,
				AddressRange: 0x1_0000,
				Secure:       false,
				Compartment:  0,
				Privilege:    1,
			},
			{
				BaseAddress:  0x5000_0000,
				AddressRange: 0x1_0000,
				Secure:       true,
				Compartment:  1,
				Privilege:    3,
			},
		},
	}
}

// LoadConfig reads a configuration from a JSON file. Fields absent from
// the file keep their zero values; callers should Validate the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bridge config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize bridge config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bridge config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a buildable bridge.
func (c *Config) Validate() error {
	if c.MasterCount < 1 {
		return fmt.Errorf("master_count must be >= 1")
	}
	if c.TargetCount < 1 {
		return fmt.Errorf("target_count must be >= 1")
	}
	if c.TargetCount != len(c.Targets) {
		return fmt.Errorf("target_count is %d but %d targets are configured",
			c.TargetCount, len(c.Targets))
	}
	if c.ClockDivisor < 1 {
		return fmt.Errorf("clock_divisor must be >= 1")
	}
	if _, err := arbiter.ParsePolicy(c.Arbitration); err != nil {
		return err
	}
	for i, t := range c.Targets {
		if t.AddressRange == 0 {
			return fmt.Errorf("target %d has zero address_range", i)
		}
		if t.Privilege > 3 {
			return fmt.Errorf("target %d privilege %d exceeds the 2-bit range",
				i, t.Privilege)
		}
		if t.Compartment > 15 {
			return fmt.Errorf("target %d compartment %d exceeds the 4-bit range",
				i, t.Compartment)
		}
	}

	// Window overlap is rejected with the same rule construction uses.
	if _, err := NewAddressDecoder(c.Targets); err != nil {
		return err
	}

	return nil
}
