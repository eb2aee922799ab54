// Package bus defines the request, response, and target configuration
// records shared by every layer of the bridge model.
package bus

// Size encodes the transfer size of a request.
type Size uint8

// Transfer size codes. Codes outside this set are reserved.
const (
	SizeByte Size = iota
	SizeHalfword
	SizeWord
	SizeReserved
)

// String returns the human-readable name of the size code.
func (s Size) String() string {
	switch s {
	case SizeByte:
		return "byte"
	case SizeHalfword:
		return "halfword"
	case SizeWord:
		return "word"
	default:
		return "reserved"
	}
}

// Protection carries the 4-bit protection attributes of a request.
type Protection uint8

// Protection attribute bits.
const (
	// ProtPrivileged marks the request as privileged.
	ProtPrivileged Protection = 1 << 0

	// ProtData marks the request as a data access rather than an
	// instruction-like fetch.
	ProtData Protection = 1 << 1

	// ProtNonSecure marks the request as non-secure.
	ProtNonSecure Protection = 1 << 3
)

// Privileged returns true if the request is marked privileged.
func (p Protection) Privileged() bool {
	return p&ProtPrivileged != 0
}

// DataAccess returns true if the request is a data access.
func (p Protection) DataAccess() bool {
	return p&ProtData != 0
}

// NonSecure returns true if the request is marked non-secure.
func (p Protection) NonSecure() bool {
	return p&ProtNonSecure != 0
}

// PrivilegeLevel returns the low two protection bits as a 2-bit
// privilege level, the form the per-target policy is configured in.
func (p Protection) PrivilegeLevel() uint8 {
	return uint8(p & 0x3)
}

// Request holds the per-cycle request fields a master drives toward the
// bridge. The bridge reads requests and never mutates them.
type Request struct {
	// Address is the 32-bit target address.
	Address uint32

	// WriteData is the data to store when Write is set.
	WriteData uint32

	// Write selects a write transfer; false selects a read.
	Write bool

	// Size is the transfer size code.
	Size Size

	// Burst is the 3-bit burst type field. Carried for completeness;
	// multi-beat bursts are not modeled.
	Burst uint8

	// Prot holds the 4-bit protection attributes.
	Prot Protection

	// Transfer is the 2-bit transfer type field.
	Transfer uint8

	// Select asserts that the master is driving a request this cycle.
	Select bool

	// Ready indicates the master is prepared to transact this cycle.
	Ready bool

	// Lock asserts a locked transfer.
	Lock bool

	// Compartment is the 4-bit compartment ID of the request.
	Compartment uint8
}

// Asserted returns true if the master is both driving a request and
// ready to transact, the condition arbitration grants on.
func (r Request) Asserted() bool {
	return r.Select && r.Ready
}

// Response holds the per-cycle response fields the bridge drives back to
// one master. The zero value is the idle response every non-served
// master receives.
type Response struct {
	// ReadData is the data returned by the target for a read.
	ReadData uint32

	// Err is the target-reported error flag.
	Err bool
}

// TargetConfig is the static configuration of one target on the shared
// bus. It is supplied at construction and immutable thereafter.
type TargetConfig struct {
	// BaseAddress is the start of the target's address window.
	BaseAddress uint32 `json:"base_address"`

	// AddressRange is the size of the address window in bytes. The
	// window is [BaseAddress, BaseAddress+AddressRange).
	AddressRange uint32 `json:"address_range"`

	// Secure requires accesses to this target to be marked secure.
	Secure bool `json:"secure"`

	// Compartment is the compartment ID accesses are expected to carry.
	Compartment uint8 `json:"compartment"`

	// Privilege is the 2-bit privilege level accesses are expected to
	// carry.
	Privilege uint8 `json:"privilege"`
}

// Contains returns true if addr falls inside the target's window.
func (t TargetConfig) Contains(addr uint32) bool {
	return uint64(addr) >= uint64(t.BaseAddress) &&
		uint64(addr) < uint64(t.BaseAddress)+uint64(t.AddressRange)
}
