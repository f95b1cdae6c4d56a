package vm

import (
	"encoding/json"

	"github.com/wasmerio/wasmer-go/wasmer"

	"corechain/internal/apperror"
	"corechain/internal/gas"
	"corechain/internal/primitives"
	"corechain/internal/store"
)

// entryArity is the number of message-specific input regions a given export
// takes, beyond the trailing Context region (spec §4.4's export table).
var entryArity = map[string]int{
	"instantiate":  1,
	"migrate":      1,
	"execute":      1,
	"receive":      0,
	"query":        1,
	"bank_query":   1,
	"reply":        2,
	"authenticate": 1,
	"backrun":      1,
	"withhold_fee": 1,
	"finalize_fee": 2,
	"bank_execute": 1,
	"cron_execute": 0,
}

// InstanceBuilder constructs a single-call Wasm instance for one contract
// invocation, grounded on HeavyVM.Execute (core/virtual_machine.go
// lines 1012-1047): compile/fetch the module, register host imports,
// instantiate, locate memory and allocate, then call the named export.
type InstanceBuilder struct {
	Cache         *ModuleCache
	Storage       store.Storage
	ReadOnly      bool
	Gas           *gas.Tracker
	Costs         gas.Costs
	Querier       Querier
	QueryDepth    int
	MaxQueryDepth int
	DebugSink     func(string)
}

// Call compiles codeHash/code if needed, builds a fresh instance bound to
// this call's storage view and gas tracker, and invokes export with ctx and
// the given argument payloads (already-encoded bytes, one per input
// region). It returns the raw bytes of the export's single output region.
func (b *InstanceBuilder) Call(codeHash primitives.Hash256, code []byte, export string, ctx Context, args [][]byte) ([]byte, error) {
	arity, known := entryArity[export]
	if !known {
		return nil, apperror.VM("unknown export %q", export)
	}
	if len(args) != arity {
		return nil, apperror.VM("export %q takes %d input regions, got %d", export, arity, len(args))
	}

	mod, _, err := b.Cache.Get(codeHash, code)
	if err != nil {
		return nil, apperror.VMWrap(err, "compiling wasm module")
	}

	env := newHostEnv(b.Storage, b.ReadOnly, b.Gas, b.Costs, b.Querier, b.QueryDepth, b.MaxQueryDepth, b.DebugSink)
	imports := registerHost(b.Cache.Store(), env)

	instance, err := wasmer.NewInstance(mod, imports)
	if err != nil {
		return nil, apperror.VMWrap(err, "instantiating wasm module")
	}
	defer instance.Close()

	if err := env.bindInstance(instance); err != nil {
		return nil, err
	}
	defer env.closeIterators()

	ctxBytes, err := json.Marshal(ctx)
	if err != nil {
		return nil, apperror.VMWrap(err, "marshalling context")
	}
	ctxPtr, err := env.writeToGuest(ctxBytes)
	if err != nil {
		return nil, err
	}

	callArgs := make([]interface{}, 0, arity+1)
	for _, a := range args {
		ptr, err := env.writeToGuest(a)
		if err != nil {
			return nil, err
		}
		callArgs = append(callArgs, int32(ptr))
	}
	callArgs = append(callArgs, int32(ctxPtr))

	exportFn, err := instance.Exports.GetFunction(export)
	if err != nil {
		return nil, apperror.VM("export %q not found: %v", export, err)
	}
	res, err := exportFn(callArgs...)
	if err != nil {
		return nil, apperror.VMWrap(err, "wasm trap in "+export)
	}
	outPtr, ok := res.(int32)
	if !ok {
		return nil, apperror.VM("export %q returned non-i32 result", export)
	}
	return env.mem.readRegionBytes(uint32(outPtr))
}

// HasExport reports whether a compiled module exports the given name,
// used by the dispatcher to decide whether an optional hook (reply,
// migrate, authenticate, ...) exists before calling it.
func (b *InstanceBuilder) HasExport(codeHash primitives.Hash256, code []byte, export string) (bool, error) {
	mod, _, err := b.Cache.Get(codeHash, code)
	if err != nil {
		return false, apperror.VMWrap(err, "compiling wasm module")
	}
	for _, e := range mod.Exports() {
		if e.Name() == export {
			return true, nil
		}
	}
	return false, nil
}
