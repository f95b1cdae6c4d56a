package vm

import (
	"encoding/binary"

	"github.com/wasmerio/wasmer-go/wasmer"

	"corechain/internal/apperror"
	"corechain/internal/cryptohost"
	"corechain/internal/gas"
	"corechain/internal/store"
)

// Querier lets query_chain perform a nested read-only query without vm
// importing the query router package (which itself builds vm instances for
// WasmSmart, and would otherwise create an import cycle).
type Querier interface {
	Query(depth int, requestJSON []byte) ([]byte, error)
}

// HostEnv is the state every host import closes over, grounded on the
// teacher's hostCtx in core/virtual_machine.go (store, gas, tx, rec) but
// widened to the full ABI: a read-only flag for query instances, a querier
// for query_chain, and an iterator registry for db_scan/db_next.
type HostEnv struct {
	Storage       store.Storage
	ReadOnly      bool
	Gas           *gas.Tracker
	Costs         gas.Costs
	Querier       Querier
	QueryDepth    int
	MaxQueryDepth int
	DebugSink     func(msg string)

	mem       *guestMemory
	allocate  wasmer.NativeFunction
	iterators map[uint32]store.Iterator
	nextIter  uint32
}

func newHostEnv(s store.Storage, readOnly bool, tracker *gas.Tracker, costs gas.Costs, q Querier, depth, maxDepth int, debug func(string)) *HostEnv {
	return &HostEnv{
		Storage:       s,
		ReadOnly:      readOnly,
		Gas:           tracker,
		Costs:         costs,
		Querier:       q,
		QueryDepth:    depth,
		MaxQueryDepth: maxDepth,
		DebugSink:     debug,
		iterators:     make(map[uint32]store.Iterator),
	}
}

func (h *HostEnv) bindInstance(instance *wasmer.Instance) error {
	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return apperror.VM("wasm memory export missing: %v", err)
	}
	h.mem = newGuestMemory(mem)
	alloc, err := instance.Exports.GetFunction("allocate")
	if err != nil {
		return apperror.VM("wasm allocate export missing: %v", err)
	}
	h.allocate = alloc
	return nil
}

// closeIterators releases every still-open iterator, run when the instance
// that opened them is dropped (spec §4.4: "iterator id is freed when
// exhausted or on instance drop").
func (h *HostEnv) closeIterators() {
	for _, it := range h.iterators {
		it.Close()
	}
	h.iterators = nil
}

// allocateRegion calls the guest's allocate(n) export and returns the
// region pointer it hands back, per the host->guest half of the memory
// region protocol (spec §4.4).
func (h *HostEnv) allocateRegion(n int) (uint32, error) {
	res, err := h.allocate(int32(n))
	if err != nil {
		return 0, apperror.VMWrap(err, "guest allocate() call failed")
	}
	ptr, ok := res.(int32)
	if !ok {
		return 0, apperror.VM("guest allocate() returned non-i32 result")
	}
	if ptr <= 0 {
		return 0, apperror.VM("guest allocate() returned invalid pointer %d", ptr)
	}
	return uint32(ptr), nil
}

// writeToGuest allocates a guest buffer sized to data and copies it in,
// returning the region pointer to hand back as an import's result.
func (h *HostEnv) writeToGuest(data []byte) (uint32, error) {
	ptr, err := h.allocateRegion(len(data))
	if err != nil {
		return 0, err
	}
	if err := h.mem.writeIntoRegion(ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}

func encodeKV(key, value []byte) []byte {
	out := make([]byte, 4+len(key)+4+len(value))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(key)))
	copy(out[4:], key)
	off := 4 + len(key)
	binary.LittleEndian.PutUint32(out[off:off+4], uint32(len(value)))
	copy(out[off+4:], value)
	return out
}

func i32(v int32) wasmer.Value { return wasmer.NewI32(v) }

func fn(st *wasmer.Store, params, results []wasmer.ValueKind, body func(args []wasmer.Value) ([]wasmer.Value, error)) *wasmer.Function {
	return wasmer.NewFunction(
		st,
		wasmer.NewFunctionType(wasmer.NewValueTypes(params...), wasmer.NewValueTypes(results...)),
		body,
	)
}

var i32k = wasmer.ValueKind(wasmer.I32)

// registerHost builds the "env" import object every contract module links
// against, one host function per spec §4.4 entry. Grounded on the teacher's
// registerHost (core/virtual_machine.go lines 1051-1180): the same
// NewFunction/NewFunctionType/NewValueTypes idiom, generalized from four
// host calls to the full ABI table.
func registerHost(wstore *wasmer.Store, h *HostEnv) *wasmer.ImportObject {
	imports := wasmer.NewImportObject()

	exts := map[string]wasmer.IntoExtern{
		"db_read":                  fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostDBRead),
		"db_scan":                  fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostDBScan),
		"db_next":                  fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostDBNext),
		"db_next_key":              fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostDBNextKey),
		"db_next_value":            fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostDBNextValue),
		"db_write":                 fn(wstore, []wasmer.ValueKind{i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostDBWrite),
		"db_remove":                fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostDBRemove),
		"db_remove_range":          fn(wstore, []wasmer.ValueKind{i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostDBRemoveRange),
		"secp256k1_verify":         fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostSecp256k1Verify),
		"secp256r1_verify":         fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostSecp256r1Verify),
		"ed25519_verify":           fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostEd25519Verify),
		"ed25519_batch_verify":     fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostEd25519BatchVerify),
		"secp256k1_pubkey_recover": fn(wstore, []wasmer.ValueKind{i32k, i32k, i32k, i32k}, []wasmer.ValueKind{i32k}, h.hostSecp256k1Recover),
		"sha2_256":                 fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha2_256, func(b []byte) []byte { x := cryptohost.Sha2_256(b); return x[:] })),
		"sha2_512":                 fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha2_512, func(b []byte) []byte { x := cryptohost.Sha2_512(b); return x[:] })),
		"sha2_512_truncated":       fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha2_512Trunc, func(b []byte) []byte { x := cryptohost.Sha2_512Truncated(b); return x[:] })),
		"sha3_256":                 fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha3_256, func(b []byte) []byte { x := cryptohost.Sha3_256(b); return x[:] })),
		"sha3_512":                 fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha3_512, func(b []byte) []byte { x := cryptohost.Sha3_512(b); return x[:] })),
		"sha3_512_truncated":       fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Sha3_512Trunc, func(b []byte) []byte { x := cryptohost.Sha3_512Truncated(b); return x[:] })),
		"keccak256":                fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Keccak256, func(b []byte) []byte { x := cryptohost.Keccak256(b); return x[:] })),
		"blake2s":                  fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Blake2s256, func(b []byte) []byte { x := cryptohost.Blake2s256(b); return x[:] })),
		"blake2b":                  fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Blake2b512, func(b []byte) []byte { x := cryptohost.Blake2b512(b); return x[:] })),
		"blake3":                   fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hasherImport(h.Costs.Blake3, func(b []byte) []byte { x := cryptohost.Blake3(b); return x[:] })),
		"debug":                    fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{}, h.hostDebug),
		"query_chain":              fn(wstore, []wasmer.ValueKind{i32k}, []wasmer.ValueKind{i32k}, h.hostQueryChain),
	}
	imports.Register("env", exts)
	return imports
}

func (h *HostEnv) hostDBRead(args []wasmer.Value) ([]wasmer.Value, error) {
	key, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.DBRead.Cost(len(key))); err != nil {
		return nil, err
	}
	val := h.Storage.Read(key)
	if val == nil {
		return []wasmer.Value{i32(0)}, nil
	}
	if err := h.Gas.Consume(h.Costs.DBRead.Cost(len(val))); err != nil {
		return nil, err
	}
	ptr, err := h.writeToGuest(val)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}

func (h *HostEnv) hostDBScan(args []wasmer.Value) ([]wasmer.Value, error) {
	minPtr, maxPtr, order := args[0].I32(), args[1].I32(), args[2].I32()
	var min, max []byte
	var err error
	if minPtr != 0 {
		if min, err = h.mem.readRegionBytes(uint32(minPtr)); err != nil {
			return nil, err
		}
	}
	if maxPtr != 0 {
		if max, err = h.mem.readRegionBytes(uint32(maxPtr)); err != nil {
			return nil, err
		}
	}
	if err := h.Gas.Consume(h.Costs.DBScanStep.Base); err != nil {
		return nil, err
	}
	ord := store.Ascending
	if order != 0 {
		ord = store.Descending
	}
	it := h.Storage.Scan(min, max, ord)
	h.nextIter++
	id := h.nextIter
	h.iterators[id] = it
	return []wasmer.Value{i32(int32(id))}, nil
}

func (h *HostEnv) iterFor(args []wasmer.Value) (store.Iterator, uint32, error) {
	id := uint32(args[0].I32())
	it, ok := h.iterators[id]
	if !ok {
		return nil, 0, apperror.VM("db_next: unknown iterator id %d", id)
	}
	return it, id, nil
}

func (h *HostEnv) releaseIfExhausted(it store.Iterator, id uint32, more bool) {
	if !more {
		it.Close()
		delete(h.iterators, id)
	}
}

func (h *HostEnv) hostDBNext(args []wasmer.Value) ([]wasmer.Value, error) {
	it, id, err := h.iterFor(args)
	if err != nil {
		return nil, err
	}
	more := it.Next()
	if !more {
		h.releaseIfExhausted(it, id, more)
		return []wasmer.Value{i32(0)}, nil
	}
	kv := encodeKV(it.Key(), it.Value())
	if err := h.Gas.Consume(h.Costs.DBScanStep.Cost(len(kv))); err != nil {
		return nil, err
	}
	ptr, err := h.writeToGuest(kv)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}

func (h *HostEnv) hostDBNextKey(args []wasmer.Value) ([]wasmer.Value, error) {
	it, id, err := h.iterFor(args)
	if err != nil {
		return nil, err
	}
	more := it.Next()
	if !more {
		h.releaseIfExhausted(it, id, more)
		return []wasmer.Value{i32(0)}, nil
	}
	key := append([]byte(nil), it.Key()...)
	if err := h.Gas.Consume(h.Costs.DBScanStep.Cost(len(key))); err != nil {
		return nil, err
	}
	ptr, err := h.writeToGuest(key)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}

func (h *HostEnv) hostDBNextValue(args []wasmer.Value) ([]wasmer.Value, error) {
	it, id, err := h.iterFor(args)
	if err != nil {
		return nil, err
	}
	more := it.Next()
	if !more {
		h.releaseIfExhausted(it, id, more)
		return []wasmer.Value{i32(0)}, nil
	}
	val := append([]byte(nil), it.Value()...)
	if err := h.Gas.Consume(h.Costs.DBScanStep.Cost(len(val))); err != nil {
		return nil, err
	}
	ptr, err := h.writeToGuest(val)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}

func (h *HostEnv) requireMutable() error {
	if h.ReadOnly {
		return apperror.VM("db_write/db_remove: instance is read-only")
	}
	return nil
}

func (h *HostEnv) hostDBWrite(args []wasmer.Value) ([]wasmer.Value, error) {
	if err := h.requireMutable(); err != nil {
		return nil, err
	}
	key, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	value, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.DBWrite.Cost(len(key) + len(value))); err != nil {
		return nil, err
	}
	h.Storage.Write(key, value)
	return []wasmer.Value{i32(0)}, nil
}

func (h *HostEnv) hostDBRemove(args []wasmer.Value) ([]wasmer.Value, error) {
	if err := h.requireMutable(); err != nil {
		return nil, err
	}
	key, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.DBRemove.Cost(len(key))); err != nil {
		return nil, err
	}
	h.Storage.Remove(key)
	return []wasmer.Value{i32(0)}, nil
}

func (h *HostEnv) hostDBRemoveRange(args []wasmer.Value) ([]wasmer.Value, error) {
	if err := h.requireMutable(); err != nil {
		return nil, err
	}
	minPtr, maxPtr := args[0].I32(), args[1].I32()
	var min, max []byte
	var err error
	if minPtr != 0 {
		if min, err = h.mem.readRegionBytes(uint32(minPtr)); err != nil {
			return nil, err
		}
	}
	if maxPtr != 0 {
		if max, err = h.mem.readRegionBytes(uint32(maxPtr)); err != nil {
			return nil, err
		}
	}
	if err := h.Gas.Consume(h.Costs.DBRemove.Base); err != nil {
		return nil, err
	}
	h.Storage.RemoveRange(min, max)
	return []wasmer.Value{i32(0)}, nil
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (h *HostEnv) hostSecp256k1Verify(args []wasmer.Value) ([]wasmer.Value, error) {
	hash, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	sig, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	pk, err := h.mem.readRegionBytes(uint32(args[2].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.Secp256k1Verify); err != nil {
		return nil, err
	}
	ok, err := cryptohost.Secp256k1Verify(hash, sig, pk)
	if err != nil {
		return nil, apperror.VMWrap(err, "secp256k1_verify")
	}
	return []wasmer.Value{i32(boolToI32(ok))}, nil
}

func (h *HostEnv) hostSecp256r1Verify(args []wasmer.Value) ([]wasmer.Value, error) {
	hash, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	sig, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	pk, err := h.mem.readRegionBytes(uint32(args[2].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.Secp256r1Verify); err != nil {
		return nil, err
	}
	ok, err := cryptohost.Secp256r1Verify(hash, sig, pk)
	if err != nil {
		return nil, apperror.VMWrap(err, "secp256r1_verify")
	}
	return []wasmer.Value{i32(boolToI32(ok))}, nil
}

func (h *HostEnv) hostEd25519Verify(args []wasmer.Value) ([]wasmer.Value, error) {
	msg, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	sig, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	pk, err := h.mem.readRegionBytes(uint32(args[2].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.Ed25519Verify); err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(boolToI32(cryptohost.Ed25519Verify(msg, sig, pk)))}, nil
}

// decodeSequence parses the Borsh-like "u32 count + repeated (u32 len +
// bytes)" layout spec §6.4 specifies for length-prefixed sequences, used to
// pack the variable-length argument lists ed25519_batch_verify needs.
func decodeSequence(b []byte) ([][]byte, error) {
	if len(b) < 4 {
		return nil, apperror.VM("sequence region too short")
	}
	count := binary.LittleEndian.Uint32(b[0:4])
	out := make([][]byte, 0, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+4 > len(b) {
			return nil, apperror.VM("sequence truncated at entry %d", i)
		}
		l := binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
		if off+int(l) > len(b) {
			return nil, apperror.VM("sequence truncated at entry %d", i)
		}
		out = append(out, b[off:off+int(l)])
		off += int(l)
	}
	return out, nil
}

func (h *HostEnv) hostEd25519BatchVerify(args []wasmer.Value) ([]wasmer.Value, error) {
	msgsRaw, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	sigsRaw, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	pksRaw, err := h.mem.readRegionBytes(uint32(args[2].I32()))
	if err != nil {
		return nil, err
	}
	msgs, err := decodeSequence(msgsRaw)
	if err != nil {
		return nil, err
	}
	sigs, err := decodeSequence(sigsRaw)
	if err != nil {
		return nil, err
	}
	pks, err := decodeSequence(pksRaw)
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.Ed25519BatchVerify.Cost(len(msgs))); err != nil {
		return nil, err
	}
	ok, err := cryptohost.Ed25519BatchVerify(msgs, sigs, pks)
	if err != nil {
		return nil, apperror.VMWrap(err, "ed25519_batch_verify")
	}
	return []wasmer.Value{i32(boolToI32(ok))}, nil
}

func (h *HostEnv) hostSecp256k1Recover(args []wasmer.Value) ([]wasmer.Value, error) {
	hash, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	sig, err := h.mem.readRegionBytes(uint32(args[1].I32()))
	if err != nil {
		return nil, err
	}
	recoveryID := byte(args[2].I32())
	compressed := args[3].I32() != 0
	if err := h.Gas.Consume(h.Costs.Secp256k1PubkeyRecover); err != nil {
		return nil, err
	}
	pk, err := cryptohost.Secp256k1PubkeyRecover(hash, sig, recoveryID, compressed)
	if err != nil {
		return nil, apperror.VMWrap(err, "secp256k1_pubkey_recover")
	}
	ptr, err := h.writeToGuest(pk)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}

// hasherImport builds a host import body shared by every fixed-digest
// hasher: read input region, meter, hash, write result into a fresh guest
// buffer.
func (h *HostEnv) hasherImport(cost gas.LinearGasCost, hashFn func([]byte) []byte) func([]wasmer.Value) ([]wasmer.Value, error) {
	return func(args []wasmer.Value) ([]wasmer.Value, error) {
		data, err := h.mem.readRegionBytes(uint32(args[0].I32()))
		if err != nil {
			return nil, err
		}
		if err := h.Gas.Consume(cost.Cost(len(data))); err != nil {
			return nil, err
		}
		ptr, err := h.writeToGuest(hashFn(data))
		if err != nil {
			return nil, err
		}
		return []wasmer.Value{i32(int32(ptr))}, nil
	}
}

func (h *HostEnv) hostDebug(args []wasmer.Value) ([]wasmer.Value, error) {
	msg, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.Debug); err != nil {
		return nil, err
	}
	if h.DebugSink != nil {
		h.DebugSink(string(msg))
	}
	return []wasmer.Value{}, nil
}

func (h *HostEnv) hostQueryChain(args []wasmer.Value) ([]wasmer.Value, error) {
	req, err := h.mem.readRegionBytes(uint32(args[0].I32()))
	if err != nil {
		return nil, err
	}
	if err := h.Gas.Consume(h.Costs.QueryChain); err != nil {
		return nil, err
	}
	if h.Querier == nil {
		return nil, apperror.VM("query_chain: no querier configured for this instance")
	}
	if h.QueryDepth+1 > h.MaxQueryDepth {
		return nil, apperror.ExceedMaxQueryDepth(h.MaxQueryDepth)
	}
	resp, err := h.Querier.Query(h.QueryDepth+1, req)
	if err != nil {
		return nil, apperror.VMWrap(err, "query_chain")
	}
	ptr, err := h.writeToGuest(resp)
	if err != nil {
		return nil, err
	}
	return []wasmer.Value{i32(int32(ptr))}, nil
}
