package app

import (
	"corechain/internal/gas"
	"corechain/internal/merkle"
	"corechain/internal/primitives"
	"corechain/internal/store"
	"corechain/internal/vm"
)

// InitGenesis initializes the tree at version 0, applies config, app_config,
// and every genesis message with an unlimited gas tracker and the synthetic
// GenesisSender, and returns the genesis app hash (spec §6.1).
func (a *App) InitGenesis(g GenesisState) (primitives.Hash256, error) {
	buf := store.NewBufferedStore(a.state)
	keeper := NewKeeper(buf)

	if err := keeper.Config.Save(keeper.Storage, g.Config); err != nil {
		return primitives.Hash256{}, err
	}
	if err := keeper.AppConfig.Save(keeper.Storage, g.AppConfig); err != nil {
		return primitives.Hash256{}, err
	}

	ec := &execCtx{
		engine:     a.engine,
		keeper:     keeper,
		gasTracker: gas.NewUnlimited(),
		block:      BlockInfo{Height: 0},
		mode:       vm.ModeFinalize,
	}

	for contract, interval := range g.Config.Cronjobs {
		job := ScheduledJob{Contract: contract, Interval: interval, Next: ec.block.Timestamp.Add(interval)}
		key := store.RawKey(contract.Bytes())
		if err := keeper.ScheduledJob.Save(keeper.Storage, key, job); err != nil {
			return primitives.Hash256{}, err
		}
	}

	for _, msg := range g.Msgs {
		if _, err := DispatchMessage(ec, primitives.GenesisSender, msg); err != nil {
			return primitives.Hash256{}, err
		}
	}

	batch := buildMerkleBatch(buf)
	buf.Merge()

	rootHash, err := a.tree.Apply(0, 0, batch)
	if err != nil {
		return primitives.Hash256{}, err
	}
	a.version = 0
	return rootHash, nil
}

// buildMerkleBatch turns a buffer's pending writes, explicit deletes, and
// ranged deletes into the flat (key -> op) batch the tree's Apply expects.
// Ranged deletes are expanded against the buffer's parent, since the buffer
// only records the [min, max) bounds passed to RemoveRange, not every key
// they covered.
func buildMerkleBatch(buf *store.BufferedStore) []merkle.Op {
	var batch []merkle.Op
	for _, kv := range buf.Pending() {
		batch = append(batch, merkle.Op{Key: kv.Key, Value: kv.Value})
	}
	for _, k := range buf.PendingDeletes() {
		batch = append(batch, merkle.Op{Key: k, Value: nil})
	}
	for _, r := range buf.DeletedRanges() {
		it := buf.Parent().Scan(r[0], r[1], store.Ascending)
		for it.Next() {
			batch = append(batch, merkle.Op{Key: append([]byte(nil), it.Key()...), Value: nil})
		}
		it.Close()
	}
	return batch
}
