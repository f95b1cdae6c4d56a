package vm

import (
	"encoding/binary"

	"github.com/wasmerio/wasmer-go/wasmer"

	"corechain/internal/apperror"
)

// guestMemory bridges the Region protocol to a live Wasm instance's linear
// memory, grounded on the teacher's LinearMemory/Memory split in
// core/virtual_machine.go (lines 351-382, 770): a thin read/write wrapper
// plus the region marshalling the teacher's host functions inline by hand.
type guestMemory struct {
	mem *wasmer.Memory
}

func newGuestMemory(mem *wasmer.Memory) *guestMemory {
	return &guestMemory{mem: mem}
}

func (g *guestMemory) data() []byte {
	return g.mem.Data()
}

// readRegion loads the Region triple stored at ptr (the value the guest's
// allocate() returned, or any other pointer to a Region struct) and
// validates it.
func (g *guestMemory) readRegion(ptr uint32) (Region, error) {
	buf := g.data()
	if uint64(ptr)+regionSize > uint64(len(buf)) {
		return Region{}, apperror.VM("region pointer %d out of bounds", ptr)
	}
	raw := buf[ptr : ptr+regionSize]
	u := UncheckedRegion{
		Offset:   binary.LittleEndian.Uint32(raw[0:4]),
		Capacity: binary.LittleEndian.Uint32(raw[4:8]),
		Length:   binary.LittleEndian.Uint32(raw[8:12]),
	}
	return u.Validate()
}

// writeRegionLength rewrites the length field of the Region struct at ptr, used
// after the host has copied bytes into a guest-allocated buffer.
func (g *guestMemory) writeRegionLength(ptr uint32, length uint32) error {
	buf := g.data()
	if uint64(ptr)+regionSize > uint64(len(buf)) {
		return apperror.VM("region pointer %d out of bounds", ptr)
	}
	binary.LittleEndian.PutUint32(buf[ptr+8:ptr+12], length)
	return nil
}

// readBytes copies out the bytes described by a validated Region.
func (g *guestMemory) readBytes(r Region) ([]byte, error) {
	buf := g.data()
	end := uint64(r.Offset) + uint64(r.Length)
	if end > uint64(len(buf)) {
		return nil, apperror.VM("region [%d:%d) out of bounds (memory size %d)", r.Offset, end, len(buf))
	}
	out := make([]byte, r.Length)
	copy(out, buf[r.Offset:end])
	return out, nil
}

// readRegionBytes is the common case of a host import taking a single
// region pointer argument: read the Region header, then the bytes it
// describes.
func (g *guestMemory) readRegionBytes(ptr uint32) ([]byte, error) {
	r, err := g.readRegion(ptr)
	if err != nil {
		return nil, err
	}
	return g.readBytes(r)
}

// writeIntoRegion copies data into the guest buffer described by the Region
// at ptr, failing if data does not fit within the region's capacity, then
// updates the region's length field to reflect what was written.
func (g *guestMemory) writeIntoRegion(ptr uint32, data []byte) error {
	r, err := g.readRegion(ptr)
	if err != nil {
		return err
	}
	if uint32(len(data)) > r.Capacity {
		return apperror.VM("data of length %d exceeds region capacity %d", len(data), r.Capacity)
	}
	buf := g.data()
	end := uint64(r.Offset) + uint64(len(data))
	if end > uint64(len(buf)) {
		return apperror.VM("region write [%d:%d) out of bounds (memory size %d)", r.Offset, end, len(buf))
	}
	copy(buf[r.Offset:end], data)
	return g.writeRegionLength(ptr, uint32(len(data)))
}
