package app

import (
	"corechain/internal/gas"
	"corechain/internal/primitives"
	"corechain/internal/store"
	"corechain/internal/vm"
)

// Engine holds the configuration shared by every execution entry point:
// genesis, finalize_block, simulate, check_tx, query_app. It owns no
// mutable per-call state itself — gas trackers and storage buffers are
// created fresh for each call (spec §9: "no hidden process state").
type Engine struct {
	ChainID       string
	ModuleCache   *vm.ModuleCache
	GasCosts      gas.Costs
	MaxReplyDepth int
	MaxQueryDepth int
	DebugSink     func(string)
}

// NewEngine builds an Engine with the given compiled-module cache capacity
// (spec §4.4: "0 = disabled").
func NewEngine(chainID string, cacheCapacity int, maxReplyDepth, maxQueryDepth int, debug func(string)) (*Engine, error) {
	cache, err := vm.NewModuleCache(cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Engine{
		ChainID:       chainID,
		ModuleCache:   cache,
		GasCosts:      gas.DefaultCosts,
		MaxReplyDepth: maxReplyDepth,
		MaxQueryDepth: maxQueryDepth,
		DebugSink:     debug,
	}, nil
}

// execCtx threads the state a single message/sub-message/query execution
// needs through dispatch and sub-message recursion: the buffer it runs
// against, the shared gas tracker, block metadata, and the current reply
// recursion depth.
type execCtx struct {
	engine     *Engine
	keeper     *Keeper
	gasTracker *gas.Tracker
	block      BlockInfo
	mode       vm.Mode
	replyDepth int
}

// instanceBuilder builds a vm.InstanceBuilder bound to this execCtx's
// buffer and tracker, scoped to one contract's storage partition.
func (ec *execCtx) instanceBuilder(contract primitives.Address, readOnly bool) *vm.InstanceBuilder {
	return &vm.InstanceBuilder{
		Cache:         ec.engine.ModuleCache,
		Storage:       ec.keeper.ContractStorage(contract),
		ReadOnly:      readOnly,
		Gas:           ec.gasTracker,
		Costs:         ec.engine.GasCosts,
		QueryDepth:    0,
		MaxQueryDepth: ec.engine.MaxQueryDepth,
		DebugSink:     ec.engine.DebugSink,
	}
}

// forked returns a new execCtx sharing everything except its buffer, which
// is a fresh BufferedStore layered over ec's own storage — the "nested
// message buffer" of spec §4.7 step 4.
func (ec *execCtx) forked() (*execCtx, *store.BufferedStore) {
	buf := store.NewBufferedStore(ec.keeper.Storage)
	child := &execCtx{
		engine:     ec.engine,
		keeper:     NewKeeper(buf),
		gasTracker: ec.gasTracker,
		block:      ec.block,
		mode:       ec.mode,
		replyDepth: ec.replyDepth,
	}
	return child, buf
}
