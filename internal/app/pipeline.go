package app

import (
	"encoding/json"

	"corechain/internal/apperror"
	"corechain/internal/gas"
	"corechain/internal/primitives"
	"corechain/internal/store"
)

// runTx drives the transaction pipeline of spec §4.7: authenticate ->
// withhold_fee -> each message -> backrun -> finalize_fee. Steps 2-5 share a
// tx buffer that is discarded wholesale on any failure; finalize_fee runs
// unconditionally against the parent buffer so its writes survive even a
// discarded tx (step 7: "a failing tx still merges finalize_fee writes").
func (ec *execCtx) runTx(tx Tx) Outcome {
	return ec.runTxWithTracker(tx, gas.NewLimited(tx.GasLimit))
}

// runTxWithTracker is runTx parameterized on the gas tracker, so simulate
// (spec §6.3) can drive the identical pipeline with an unlimited tracker
// instead of one bounded by the tx's own gas_limit.
func (ec *execCtx) runTxWithTracker(tx Tx, tracker *gas.Tracker) Outcome {
	txCtx, txBuf := ec.forkWithGas(tracker)

	txBytes, err := json.Marshal(tx)
	if err != nil {
		return Outcome{Success: false, Error: err.Error()}
	}

	var events []Event
	fail := func(stageErr error) Outcome {
		txBuf.Discard()
		if ferr := ec.runFinalizeFee(tracker, tx, txBytes, false); ferr != nil {
			panic("finalize_fee failed on a failed tx: " + ferr.Error())
		}
		return Outcome{Success: false, GasUsed: tracker.Used(), Error: stageErr.Error()}
	}

	if _, err := txCtx.callHook(tx.Sender, "authenticate", [][]byte{txBytes}); err != nil {
		return fail(err)
	}

	taxman, err := ec.feeAddress()
	if err != nil {
		return fail(err)
	}
	if taxman != nil {
		if _, err := txCtx.callHook(*taxman, "withhold_fee", [][]byte{txBytes}); err != nil {
			return fail(err)
		}
	}

	for _, msg := range tx.Messages {
		msgCtx, msgBuf := txCtx.forked()
		msgEvents, err := DispatchMessage(msgCtx, tx.Sender, msg)
		if err != nil {
			msgBuf.Discard()
			return fail(err)
		}
		msgBuf.Merge()
		events = append(events, msgEvents...)
	}

	if _, err := txCtx.callHook(tx.Sender, "backrun", [][]byte{txBytes}); err != nil {
		return fail(err)
	}

	txBuf.Merge()
	outcome := Outcome{Success: true, GasUsed: tracker.Used(), Events: events}
	outcomeBytes, err := json.Marshal(outcome)
	if err != nil {
		panic("encoding tx outcome for finalize_fee: " + err.Error())
	}
	if ferr := ec.runFinalizeFee(tracker, tx, txBytes, true, outcomeBytes); ferr != nil {
		panic("finalize_fee failed on a successful tx: " + ferr.Error())
	}
	return outcome
}

// runFinalizeFee calls the taxman's finalize_fee(ctx, tx, outcome) export
// directly against ec's own buffer (not a child), merging its writes
// unconditionally. Spec §4.7 step 6 treats its failure as chain-halting.
func (ec *execCtx) runFinalizeFee(tracker *gas.Tracker, tx Tx, txBytes []byte, succeeded bool, outcomeBytes ...[]byte) error {
	taxman, err := ec.feeAddress()
	if err != nil {
		return err
	}
	if taxman == nil {
		return nil
	}
	var ob []byte
	if len(outcomeBytes) > 0 {
		ob = outcomeBytes[0]
	} else {
		failed, merr := json.Marshal(Outcome{Success: succeeded, GasUsed: tracker.Used()})
		if merr != nil {
			return merr
		}
		ob = failed
	}
	_, err = ec.callHook(*taxman, "finalize_fee", [][]byte{txBytes, ob})
	return err
}

// feeAddress returns the configured taxman address, or nil if Config is
// unset or carries no taxman (fee hooks are then simply skipped).
func (ec *execCtx) feeAddress() (*primitives.Address, error) {
	cfg, ok, err := ec.keeper.Config.MayLoad(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return cfg.Taxman, nil
}

// forkWithGas is like forked but binds a caller-supplied gas tracker instead
// of inheriting ec's own — used at the top of a tx, which gets its own
// gas_limit-bounded budget (spec §4.7 step 1).
func (ec *execCtx) forkWithGas(tracker *gas.Tracker) (*execCtx, *store.BufferedStore) {
	buf := store.NewBufferedStore(ec.keeper.Storage)
	child := &execCtx{
		engine:     ec.engine,
		keeper:     NewKeeper(buf),
		gasTracker: tracker,
		block:      ec.block,
		mode:       ec.mode,
		replyDepth: 0,
	}
	return child, buf
}

// callHook invokes an optional tx-lifecycle export (authenticate, backrun,
// withhold_fee, finalize_fee) on contract, if it has both a registered
// Contract entity and that export; a contract missing the hook entirely is
// not an error (spec §4.7 describes these as present "for account
// contracts"/"for the taxman role", implying ordinary accounts skip them).
func (ec *execCtx) callHook(contract primitives.Address, export string, args [][]byte) (ContractResponse, error) {
	key := store.RawKey(contract.Bytes())
	entity, ok, err := ec.keeper.Contracts.MayLoad(ec.keeper.Storage, key)
	if err != nil {
		return ContractResponse{}, err
	}
	if !ok {
		return ContractResponse{}, nil
	}
	code, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(entity.CodeHash.Bytes()))
	if err != nil {
		return ContractResponse{}, err
	}
	ib := ec.instanceBuilder(contract, false)
	has, err := ib.HasExport(entity.CodeHash, code.Bytes, export)
	if err != nil {
		return ContractResponse{}, err
	}
	if !has {
		return ContractResponse{}, nil
	}
	resp, err := ec.callContract(contract, code.Bytes, export, contract, nil, args)
	if err != nil {
		return ContractResponse{}, apperror.StdWrap(err, export)
	}
	sub, err := ec.processSubMessages(contract, resp.Messages)
	if err != nil {
		return resp, err
	}
	resp.Events = append(resp.Events, sub...)
	return resp, nil
}

// checkTx runs the abbreviated mempool filter of spec §4.9's "Suspension
// points" note: authenticate + withhold_fee only, against a disposable
// buffer that is always discarded.
func (ec *execCtx) checkTx(tx Tx) error {
	tracker := gas.NewLimited(tx.GasLimit)
	txCtx, txBuf := ec.forkWithGas(tracker)
	defer txBuf.Discard()

	txBytes, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	if _, err := txCtx.callHook(tx.Sender, "authenticate", [][]byte{txBytes}); err != nil {
		return err
	}
	taxman, err := ec.feeAddress()
	if err != nil {
		return err
	}
	if taxman != nil {
		if _, err := txCtx.callHook(*taxman, "withhold_fee", [][]byte{txBytes}); err != nil {
			return err
		}
	}
	return nil
}
