// Package vm implements the Wasm host ABI of spec §4.4: the memory region
// protocol, host import registration, the compiled-module cache, and
// instance construction/execution, grounded on the teacher's HeavyVM /
// registerHost in core/virtual_machine.go and wasmer-go's API surface.
package vm

import "corechain/internal/apperror"

// Region describes a byte range inside a Wasm instance's linear memory, per
// spec §4.4's "memory region protocol": offset/capacity/length, laid out the
// way the guest and host exchange values across the FFI boundary.
type Region struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

// UncheckedRegion is the raw triple read out of guest memory before its
// invariants have been validated, mirroring the original's distinction
// between UncheckedRegion and the validated Region (region.rs).
type UncheckedRegion struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

// Validate checks the invariants spec §4.4 requires of every region crossing
// the FFI boundary: length ≤ capacity; offset+capacity ≤ 2^32; offset != 0.
func (u UncheckedRegion) Validate() (Region, error) {
	if u.Offset == 0 {
		return Region{}, apperror.VM("region has zero offset")
	}
	if u.Length > u.Capacity {
		return Region{}, apperror.VM("region length %d exceeds capacity %d", u.Length, u.Capacity)
	}
	if u.Capacity > ^uint32(0)-u.Offset {
		return Region{}, apperror.VM("region offset %d capacity %d out of range", u.Offset, u.Capacity)
	}
	return Region{Offset: u.Offset, Capacity: u.Capacity, Length: u.Length}, nil
}

// regionSize is the byte size of the three-u32 Region struct as laid out in
// guest memory (offset, capacity, length), used when reading/writing a
// Region value itself rather than the bytes it describes.
const regionSize = 12
