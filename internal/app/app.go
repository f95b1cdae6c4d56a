package app

import (
	"crypto/sha256"
	"encoding/json"
	"sort"

	"corechain/internal/apperror"
	"corechain/internal/gas"
	"corechain/internal/merkle"
	"corechain/internal/primitives"
	"corechain/internal/query"
	"corechain/internal/store"
	"corechain/internal/vm"
)

// App is the facade spec §6 describes: init_chain, finalize_block, commit,
// query_app, query_store, simulate, check_tx, layered over one Engine and
// one committed root Storage. It is the single place a host process needs
// to hold state; everything else in this package is stateless given an
// execCtx.
//
// The root storage is split into three disjoint prefixes so the Merkle
// tree's internal bookkeeping, application state, and App-level metadata
// never collide despite each sub-package choosing its own byte prefixes
// independently:
//
//	0x00  merkle tree nodes/roots/orphans (internal/merkle.New's own prefixes)
//	0x01  application state (everything a Keeper touches)
//	0x02  App metadata (reserved; unused for now beyond in-memory version)
type App struct {
	engine *Engine
	root   store.Storage
	state  store.Storage
	tree   *merkle.Tree
	router *query.Router

	version uint64

	pendingBuf    *store.BufferedStore
	pendingHeight uint64
	pendingHash   primitives.Hash256
}

// NewApp wires an App over root, the flat raw KV backing every partition
// (typically a *store.MemStore for the reference single-process node).
func NewApp(engine *Engine, root store.Storage, maxQueryDepth int) *App {
	a := &App{
		engine: engine,
		root:   root,
		state:  store.NewPrefixStore(root, []byte{0x01}),
		tree:   merkle.New(store.NewPrefixStore(root, []byte{0x00})),
	}
	a.router = query.NewRouter(a, maxQueryDepth)
	return a
}

func (a *App) blockExecCtx(block BlockInfo, buf store.Storage) *execCtx {
	return &execCtx{
		engine:     a.engine,
		keeper:     NewKeeper(buf),
		gasTracker: gas.NewUnlimited(),
		block:      block,
		mode:       vm.ModeFinalize,
	}
}

// FinalizeBlock runs one block's cronjobs and transactions, computes the
// resulting app hash, and stages (but does not yet persist) the block's
// writes — persistence happens in the following Commit call (spec §6.2).
// If height matches a scheduled upgrade, commit is refused: the returned
// NextUpgrade is non-nil and the caller must halt rather than call Commit.
func (a *App) FinalizeBlock(block Block) (BlockOutcome, *NextUpgrade, error) {
	buf := store.NewBufferedStore(a.state)
	ec := a.blockExecCtx(block.Info, buf)

	outcome, upgrade, err := ec.runBlock(block)
	if err != nil {
		return BlockOutcome{}, nil, err
	}
	if upgrade != nil {
		return outcome, upgrade, nil
	}

	batch := buildMerkleBatch(buf)
	appHash, err := a.tree.Apply(a.version, block.Info.Height, batch)
	if err != nil {
		return BlockOutcome{}, nil, err
	}

	a.pendingBuf = buf
	a.pendingHeight = block.Info.Height
	a.pendingHash = appHash
	outcome.AppHash = appHash
	return outcome, nil, nil
}

// Commit persists the batch staged by the prior FinalizeBlock. It must
// always follow exactly one FinalizeBlock call that did not signal an
// upgrade (spec §6.2).
func (a *App) Commit() error {
	if a.pendingBuf == nil {
		return apperror.Std("commit: no finalized block pending")
	}
	a.pendingBuf.Merge()
	a.version = a.pendingHeight
	a.pendingBuf = nil
	return nil
}

// Simulate runs the full transaction pipeline with an unlimited gas tracker
// against a disposable buffer, reporting gas_used without ever touching
// committed state (spec §6.3).
func (a *App) Simulate(tx Tx) Outcome {
	buf := store.NewBufferedStore(a.state)
	ec := a.blockExecCtx(BlockInfo{Height: a.version}, buf)
	return ec.runTxWithTracker(tx, gas.NewUnlimited())
}

// CheckTx runs the abbreviated mempool filter (authenticate + withhold_fee)
// against a disposable buffer that is always discarded.
func (a *App) CheckTx(tx Tx) error {
	buf := store.NewBufferedStore(a.state)
	ec := a.blockExecCtx(BlockInfo{Height: a.version}, buf)
	return ec.checkTx(tx)
}

// QueryApp dispatches a Query at the current committed height (spec §6.3);
// height-pinned historical queries are not yet supported by this reference
// implementation (height parameter is accepted by QueryStore only, where
// the tree's per-version roots make it cheap).
func (a *App) QueryApp(q query.Query) (query.Response, error) {
	return a.router.Dispatch(q, 0)
}

// QueryStore reads a single raw key directly from the current state,
// optionally with a Merkle proof (spec §6.3). height only selects the tree
// version whose root the proof is built against; the value itself is always
// read from the current state, not from that past version.
func (a *App) QueryStore(key []byte, height *uint64, prove bool) ([]byte, *merkle.MerkleProof, error) {
	version := a.version
	if height != nil {
		version = *height
	}
	value := a.state.Read(key)
	if !prove {
		return value, nil, nil
	}
	keyHash := primitives.Hash256(sha256.Sum256(key))
	proof, err := a.tree.Prove(keyHash, version)
	if err != nil {
		return value, nil, err
	}
	return value, proof, nil
}

func (a *App) readOnlyExecCtx() *execCtx {
	return a.blockExecCtx(BlockInfo{Height: a.version}, a.state)
}

// Config implements query.Backend.
func (a *App) Config() (json.RawMessage, error) {
	ec := a.readOnlyExecCtx()
	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cfg)
}

// AppConfig implements query.Backend.
func (a *App) AppConfig() (json.RawMessage, error) {
	ec := a.readOnlyExecCtx()
	cfg, err := ec.keeper.AppConfig.Load(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cfg)
}

type balanceEntry struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Balance implements query.Backend; an unset balance reports zero rather
// than erroring, matching ordinary bank-query semantics.
func (a *App) Balance(address, denom string) (json.RawMessage, error) {
	addr, err := primitives.ParseAddress(address)
	if err != nil {
		return nil, apperror.StdWrap(err, "balance query: address")
	}
	d, err := primitives.ParseDenom(denom)
	if err != nil {
		return nil, apperror.StdWrap(err, "balance query: denom")
	}
	ec := a.readOnlyExecCtx()
	key := store.Pair2[store.RawKey, store.RawKey]{
		A: store.RawKey(addr.Bytes()),
		B: store.RawKey([]byte(d.String())),
	}
	amt, ok, err := ec.keeper.Balances.MayLoad(ec.keeper.Storage, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		amt = primitives.NewUint(primitives.Bits128)
	}
	return json.Marshal(balanceEntry{Denom: d.String(), Amount: amt.String()})
}

// Balances implements query.Backend, paginating every denom held by
// address in ascending denom order.
func (a *App) Balances(address, startAfter string, limit uint32) (json.RawMessage, error) {
	addr, err := primitives.ParseAddress(address)
	if err != nil {
		return nil, apperror.StdWrap(err, "balances query: address")
	}
	ec := a.readOnlyExecCtx()
	prefix := store.Pair2Prefix[store.RawKey](store.RawKey(addr.Bytes()))
	entries, err := ec.keeper.Balances.Range(ec.keeper.Storage, prefix, store.Ascending)
	if err != nil {
		return nil, err
	}

	out := make([]balanceEntry, 0, len(entries))
	for _, e := range entries {
		denom := decodePair2SecondSegment(e.KeySuffix)
		if denom <= startAfter {
			continue
		}
		out = append(out, balanceEntry{Denom: denom, Amount: e.Value.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	if limit > 0 && uint32(len(out)) > limit {
		out = out[:limit]
	}
	return json.Marshal(out)
}

// decodePair2SecondSegment extracts the B segment of a Pair2[RawKey,RawKey]
// key's encoded bytes: a 1-byte length prefix for A, A's bytes, a 1-byte
// length prefix for B, then B's bytes (see store.Pair2.KeyBytes).
func decodePair2SecondSegment(keySuffix []byte) string {
	if len(keySuffix) == 0 {
		return ""
	}
	lenA := int(keySuffix[0])
	rest := keySuffix[1+lenA:]
	if len(rest) == 0 {
		return ""
	}
	lenB := int(rest[0])
	return string(rest[1 : 1+lenB])
}

// Supply implements query.Backend.
func (a *App) Supply(denom string) (json.RawMessage, error) {
	d, err := primitives.ParseDenom(denom)
	if err != nil {
		return nil, apperror.StdWrap(err, "supply query: denom")
	}
	ec := a.readOnlyExecCtx()
	amt, ok, err := ec.keeper.Supplies.MayLoad(ec.keeper.Storage, store.RawKey([]byte(d.String())))
	if err != nil {
		return nil, err
	}
	if !ok {
		amt = primitives.NewUint(primitives.Bits128)
	}
	return json.Marshal(balanceEntry{Denom: d.String(), Amount: amt.String()})
}

// Supplies implements query.Backend, paginating every denom with a
// recorded supply in ascending order.
func (a *App) Supplies(startAfter string, limit uint32) (json.RawMessage, error) {
	ec := a.readOnlyExecCtx()
	entries, err := ec.keeper.Supplies.Range(ec.keeper.Storage, nil, store.Ascending)
	if err != nil {
		return nil, err
	}
	out := make([]balanceEntry, 0, len(entries))
	for _, e := range entries {
		denom := string(e.KeySuffix)
		if denom <= startAfter {
			continue
		}
		out = append(out, balanceEntry{Denom: denom, Amount: e.Value.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	if limit > 0 && uint32(len(out)) > limit {
		out = out[:limit]
	}
	return json.Marshal(out)
}

// WasmRaw implements query.Backend: a direct key read against contract's
// own storage partition, base64-encoded by the default []byte JSON codec.
func (a *App) WasmRaw(contract string, key []byte) (json.RawMessage, error) {
	addr, err := primitives.ParseAddress(contract)
	if err != nil {
		return nil, apperror.StdWrap(err, "wasm_raw query: contract")
	}
	ec := a.readOnlyExecCtx()
	value := ec.keeper.ContractStorage(addr).Read(key)
	return json.Marshal(value)
}

// WasmSmart implements query.Backend: invokes contract's query export
// read-only, under Mode Query, with the router's recursion depth threaded
// through so a nested query_chain call continues counting from here.
func (a *App) WasmSmart(contract string, msg json.RawMessage, depth int) (json.RawMessage, error) {
	addr, err := primitives.ParseAddress(contract)
	if err != nil {
		return nil, apperror.StdWrap(err, "wasm_smart query: contract")
	}
	ec := a.readOnlyExecCtx()
	entity, err := ec.keeper.Contracts.Load(ec.keeper.Storage, store.RawKey(addr.Bytes()))
	if err != nil {
		return nil, err
	}
	code, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(entity.CodeHash.Bytes()))
	if err != nil {
		return nil, err
	}

	ib := &vm.InstanceBuilder{
		Cache:         ec.engine.ModuleCache,
		Storage:       ec.keeper.ContractStorage(addr),
		ReadOnly:      true,
		Gas:           gas.NewUnlimited(),
		Costs:         ec.engine.GasCosts,
		Querier:       query.AsQuerier{Router: a.router},
		QueryDepth:    depth,
		MaxQueryDepth: ec.engine.MaxQueryDepth,
		DebugSink:     ec.engine.DebugSink,
	}
	vctx := vm.Context{
		ChainID:        ec.engine.ChainID,
		BlockHeight:    ec.block.Height,
		BlockTimestamp: ec.block.Timestamp,
		Contract:       addr,
		Mode:           vm.ModeQuery,
	}
	out, err := ib.Call(entity.CodeHash, code.Bytes, "query", vctx, [][]byte{msg})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}
