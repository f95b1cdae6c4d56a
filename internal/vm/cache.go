package vm

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/wasmerio/wasmer-go/wasmer"

	"corechain/internal/primitives"
)

// ModuleCache holds compiled Wasm modules keyed by code hash, amortizing
// compilation across blocks (spec §4.4: "a compiled-module cache of
// configurable capacity (0 = disabled) is shared across blocks"). The
// teacher calls wasmer.NewEngine()/wasmer.NewModule() fresh inside every
// Execute (core/virtual_machine.go lines 137, 180, 225, 330, 416, 488,
// 1015-1019); this type generalizes that into a single shared, cached
// compilation path.
type ModuleCache struct {
	engine *wasmer.Engine
	store  *wasmer.Store
	cache  *lru.Cache[primitives.Hash256, *wasmer.Module]
}

// NewModuleCache builds a cache with the given capacity. A capacity of 0
// disables caching: every lookup is a miss and nothing is retained.
func NewModuleCache(capacity int) (*ModuleCache, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	mc := &ModuleCache{engine: engine, store: store}
	if capacity > 0 {
		c, err := lru.New[primitives.Hash256, *wasmer.Module](capacity)
		if err != nil {
			return nil, err
		}
		mc.cache = c
	}
	return mc, nil
}

// Engine returns the shared wasmer Engine backing every module and instance
// built through this cache; instances must be created against the same
// engine as the module they were compiled with.
func (mc *ModuleCache) Engine() *wasmer.Engine {
	return mc.engine
}

// Store returns the shared wasmer Store used for compilation.
func (mc *ModuleCache) Store() *wasmer.Store {
	return mc.store
}

// Get compiles code (or returns the cached module for codeHash) and reports
// whether it was already cached.
func (mc *ModuleCache) Get(codeHash primitives.Hash256, code []byte) (*wasmer.Module, bool, error) {
	if mc.cache != nil {
		if mod, ok := mc.cache.Get(codeHash); ok {
			return mod, true, nil
		}
	}
	mod, err := wasmer.NewModule(mc.store, code)
	if err != nil {
		return nil, false, err
	}
	if mc.cache != nil {
		mc.cache.Add(codeHash, mod)
	}
	return mod, false, nil
}

// Len reports the number of modules currently cached.
func (mc *ModuleCache) Len() int {
	if mc.cache == nil {
		return 0
	}
	return mc.cache.Len()
}
