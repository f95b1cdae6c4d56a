package gas

// LinearGasCost charges a flat base cost plus a per-item cost, e.g. a flat
// fee per host call plus one unit per input byte. Grounded on
// original_source/crates/vm/wasm/src/gas.rs.
type LinearGasCost struct {
	Base    uint64
	PerItem uint64
}

// Cost computes the total charge for processing n items (e.g. bytes).
func (c LinearGasCost) Cost(n int) uint64 {
	return c.Base + c.PerItem*uint64(n)
}

// Costs is the full host-import gas schedule (spec §6.5). The values in
// DefaultCosts are placeholders (1 everywhere, except a base of 2 for DBWrite
// and DBRemove) per the original crate's own TODO — the spec
// leaves exact tuning as an Open Question, deferred to a future governance
// proposal rather than fixed in code.
type Costs struct {
	DBRead                 LinearGasCost
	DBWrite                LinearGasCost
	DBRemove               LinearGasCost
	DBScanStep             LinearGasCost
	Secp256k1Verify        uint64
	Secp256r1Verify        uint64
	Secp256k1PubkeyRecover uint64
	Ed25519Verify          uint64
	Ed25519BatchVerify     LinearGasCost
	Sha2_256               LinearGasCost
	Sha2_512               LinearGasCost
	Sha2_512Trunc          LinearGasCost
	Sha3_256               LinearGasCost
	Sha3_512               LinearGasCost
	Sha3_512Trunc          LinearGasCost
	Keccak256              LinearGasCost
	Blake2s256             LinearGasCost
	Blake2b512             LinearGasCost
	Blake3                 LinearGasCost
	Debug                  uint64
	QueryChain             uint64
}

// DefaultCosts mirrors the original crate's GAS_COSTS constant: every
// linear cost is (base=1, per_item=1), every flat cost is 1. Write-heavy
// operations (DBWrite, DBRemove) use a base of 2 to reflect the spec's
// "higher than read" note in §6.5 while staying in the same illustrative
// placeholder register as the rest of the schedule.
var DefaultCosts = Costs{
	DBRead:     LinearGasCost{Base: 1, PerItem: 1},
	DBWrite:    LinearGasCost{Base: 2, PerItem: 1},
	DBRemove:   LinearGasCost{Base: 2, PerItem: 1},
	DBScanStep: LinearGasCost{Base: 1, PerItem: 1},

	Secp256k1Verify:        1,
	Secp256r1Verify:        1,
	Secp256k1PubkeyRecover: 1,
	Ed25519Verify:          1,
	Ed25519BatchVerify:     LinearGasCost{Base: 1, PerItem: 1},

	Sha2_256:      LinearGasCost{Base: 1, PerItem: 1},
	Sha2_512:      LinearGasCost{Base: 1, PerItem: 1},
	Sha2_512Trunc: LinearGasCost{Base: 1, PerItem: 1},
	Sha3_256:      LinearGasCost{Base: 1, PerItem: 1},
	Sha3_512:      LinearGasCost{Base: 1, PerItem: 1},
	Sha3_512Trunc: LinearGasCost{Base: 1, PerItem: 1},
	Keccak256:     LinearGasCost{Base: 1, PerItem: 1},
	Blake2s256:    LinearGasCost{Base: 1, PerItem: 1},
	Blake2b512:    LinearGasCost{Base: 1, PerItem: 1},
	Blake3:        LinearGasCost{Base: 1, PerItem: 1},

	Debug:      1,
	QueryChain: 1,
}
