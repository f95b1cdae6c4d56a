// Package app implements the state-transition engine of spec §4.7-4.9 and
// §6: message dispatch, the transaction pipeline, the block executor, and
// genesis, layered on top of internal/store's typed accessors rather than
// the teacher's package-level singletons (core/contracts.go's ContractRegistry,
// sync.Once-initialized and keyed by a process-wide map) — spec §9 calls for
// "typed views over a named key space" instead of global state, so every
// entity here is a store.Item/store.Map owned by a Keeper value.
package app

import (
	"corechain/internal/primitives"
	"corechain/internal/store"
)

// Config holds chain-level ownership, mirroring the teacher's notion of an
// "owner" address gating privileged Configure messages.
type Config struct {
	Owner       primitives.Address                         `json:"owner"`
	Bank        *primitives.Address                        `json:"bank,omitempty"`
	Taxman      *primitives.Address                        `json:"taxman,omitempty"`
	Cronjobs    map[primitives.Address]primitives.Duration `json:"cronjobs,omitempty"`
	Permissions Permissions                                `json:"permissions"`
}

// Permissions gates the chain's two permissioned message types (spec §3.2).
// The owner may always send either regardless of these settings.
type Permissions struct {
	Upload      Permission `json:"upload"`
	Instantiate Permission `json:"instantiate"`
}

// Permission names who, besides the owner, may send a permissioned message:
// everybody, or an explicit allowlist of senders.
type Permission struct {
	Everybody  bool                 `json:"everybody,omitempty"`
	Somebodies []primitives.Address `json:"somebodies,omitempty"`
}

func (p Permission) allows(addr primitives.Address) bool {
	if p.Everybody {
		return true
	}
	for _, a := range p.Somebodies {
		if a == addr {
			return true
		}
	}
	return false
}

// hasPermission reports whether sender may perform an action gated by p,
// given the chain's current owner. The owner always passes, independent of
// p (the original's has_permission owner-always-allowed override).
func hasPermission(p Permission, owner, sender primitives.Address) bool {
	return sender == owner || p.allows(sender)
}

// AppConfig holds application-defined key/value settings, opaque to the
// engine itself (spec §4.6's AppConfig query).
type AppConfig struct {
	Settings map[string]string `json:"settings"`
}

// CodeStatus reports a code hash's usage: Orphaned (uploaded but never
// instantiated) or InUse with a live-contract count (spec §8 scenario A).
type CodeStatus struct {
	InUseCount uint32 `json:"in_use_count"`
}

func (s CodeStatus) Orphaned() bool { return s.InUseCount == 0 }

// Code is an uploaded Wasm module, content-addressed by its sha2-256 hash.
type Code struct {
	Hash   primitives.Hash256 `json:"hash"`
	Bytes  []byte             `json:"bytes"`
	Status CodeStatus         `json:"status"`
}

// Contract is a single instantiated Wasm contract.
type Contract struct {
	Address  primitives.Address  `json:"address"`
	CodeHash primitives.Hash256  `json:"code_hash"`
	Admin    *primitives.Address `json:"admin,omitempty"`
	Label    string              `json:"label"`
}

// ScheduledJob is a cronjob's next-run bookkeeping (spec §4.9 / §8 scenario D).
type ScheduledJob struct {
	Contract primitives.Address   `json:"contract"`
	Interval primitives.Duration  `json:"interval"`
	Next     primitives.Timestamp `json:"next"`
}

// NextUpgrade schedules a halt-and-upgrade at a future height (spec §3.2,
// §4.9 step 4).
type NextUpgrade struct {
	Height       uint64 `json:"height"`
	CargoVersion string `json:"cargo_version"`
}

// Keeper bundles every typed storage accessor the engine touches, scoped to
// one prefixed partition of the raw KV store. Constructing a fresh Keeper
// per buffer (tx/message/block) is how isolation and rollback (spec §4.7
// steps 4-7) are achieved: discarding a BufferedStore discards everything
// written through the Keeper built on top of it.
type Keeper struct {
	Storage store.Storage

	Config       *store.Item[Config]
	AppConfig    *store.Item[AppConfig]
	Codes        *store.Map[store.RawKey, Code]
	Contracts    *store.Map[store.RawKey, Contract]
	ScheduledJob *store.Map[store.RawKey, ScheduledJob]
	NextUpgrade  *store.Item[NextUpgrade]
	Balances     *store.Map[store.Pair2[store.RawKey, store.RawKey], primitives.Uint]
	Supplies     *store.Map[store.RawKey, primitives.Uint]
}

var (
	nsConfig          = []byte{0x10}
	nsAppConfig       = []byte{0x11}
	nsCodes           = []byte{0x12}
	nsContracts       = []byte{0x13}
	nsCron            = []byte{0x14}
	nsNextUpgrade     = []byte{0x15}
	nsBalances        = []byte{0x16}
	nsSupplies        = []byte{0x17}
	nsContractStorage = []byte{0x18}
)

// NewKeeper builds a Keeper over s, the buffer (or root store) for one
// block/tx/message scope.
func NewKeeper(s store.Storage) *Keeper {
	return &Keeper{
		Storage:      s,
		Config:       store.NewItem[Config]("config", nsConfig, store.JSONCodec[Config]{}),
		AppConfig:    store.NewItem[AppConfig]("app_config", nsAppConfig, store.JSONCodec[AppConfig]{}),
		Codes:        store.NewMap[store.RawKey, Code]("codes", nsCodes, store.JSONCodec[Code]{}),
		Contracts:    store.NewMap[store.RawKey, Contract]("contracts", nsContracts, store.JSONCodec[Contract]{}),
		ScheduledJob: store.NewMap[store.RawKey, ScheduledJob]("scheduled_jobs", nsCron, store.JSONCodec[ScheduledJob]{}),
		NextUpgrade:  store.NewItem[NextUpgrade]("next_upgrade", nsNextUpgrade, store.JSONCodec[NextUpgrade]{}),
		Balances:     store.NewMap[store.Pair2[store.RawKey, store.RawKey], primitives.Uint]("balances", nsBalances, store.JSONCodec[primitives.Uint]{}),
		Supplies:     store.NewMap[store.RawKey, primitives.Uint]("supplies", nsSupplies, store.JSONCodec[primitives.Uint]{}),
	}
}

// ContractStorage returns the partitioned Storage view a Wasm instance for
// addr reads/writes through, isolated from every other contract's keyspace
// and from the engine's own Config/Codes/Contracts namespaces.
func (k *Keeper) ContractStorage(addr primitives.Address) store.Storage {
	return store.NewPrefixStore(k.Storage, append(append([]byte(nil), nsContractStorage...), addr.Bytes()...))
}
