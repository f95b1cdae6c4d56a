package primitives

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Address is a 160-bit identifier for a sender or a deployed contract. It
// renders as 40 lowercase hex characters, per spec §6.4.
type Address Hash160

// GenesisSender is the synthetic sender used to apply genesis messages
// (spec §6.1), a fixed zero-index mock address.
var GenesisSender = MockAddress(0)

func (a Address) String() string { return hex.EncodeToString(a[:]) }
func (a Address) Bytes() []byte  { return a[:] }
func (a Address) IsZero() bool   { return a == Address{} }
func (a Address) Compare(b Address) int {
	return Hash160(a).Compare(Hash160(b))
}

// ParseAddress decodes a 40-character lowercase hex string.
func ParseAddress(s string) (Address, error) {
	h, err := ParseHash160(s)
	return Address(h), err
}

// MockAddress derives a deterministic test address from a small integer
// index, used for genesis accounts and unit tests (spec §4.2's "numeric
// index" derivation, simplified to a direct encoding rather than a KDF since
// no entropy is required for a mock identity).
func MockAddress(index uint64) Address {
	var a Address
	binary.BigEndian.PutUint64(a[12:], index)
	return a
}

// DeriveGenesisAddress derives an address at genesis from the sender and a
// numeric index (spec §3.1): blake3(sender ‖ index) truncated to 20 bytes.
// Using the sender in the preimage (rather than the index alone) keeps two
// different genesis senders from ever colliding on the same derived address.
func DeriveGenesisAddress(sender Address, index uint64) Address {
	h := blake3.New(32, nil)
	h.Write(sender[:])
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	h.Write(idx[:])
	sum := h.Sum(nil)
	var a Address
	copy(a[:], sum[12:32])
	return a
}

// DeriveContractAddress computes a deployed contract's address as
// blake3(deployer ‖ code_hash ‖ salt)[..20], per spec §3.1.
func DeriveContractAddress(deployer Address, codeHash Hash256, salt []byte) Address {
	h := blake3.New(32, nil)
	h.Write(deployer[:])
	h.Write(codeHash[:])
	h.Write(salt)
	sum := h.Sum(nil)
	var a Address
	copy(a[:], sum[:20])
	return a
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Address) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("address: not a JSON string")
	}
	parsed, err := ParseAddress(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText/UnmarshalText let Address serve as a map key under
// encoding/json, which requires TextMarshaler for non-string key types
// (needed by Config.Cronjobs, keyed by Address).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
