package app

import (
	"sort"

	"corechain/internal/gas"
	"corechain/internal/store"
)

// runBlock executes one block's cronjobs then transactions against ec's
// buffer, in the order spec §4.9 mandates, and reports whether a scheduled
// upgrade blocks commit of this height.
func (ec *execCtx) runBlock(block Block) (BlockOutcome, *NextUpgrade, error) {
	cronOutcomes := ec.runDueCronjobs(block)

	txOutcomes := make([]Outcome, 0, len(block.Txs))
	for _, tx := range block.Txs {
		txOutcomes = append(txOutcomes, ec.runTx(tx))
	}

	upgrade, ok, err := ec.keeper.NextUpgrade.MayLoad(ec.keeper.Storage)
	if err != nil {
		return BlockOutcome{}, nil, err
	}
	var pending *NextUpgrade
	if ok && upgrade.Height == block.Info.Height {
		pending = &upgrade
	}

	return BlockOutcome{CronOutcomes: cronOutcomes, TxOutcomes: txOutcomes}, pending, nil
}

// runDueCronjobs runs every ScheduledJob whose Next has arrived, in
// (next_time, contract_addr) order, each against its own discardable buffer
// with an unlimited gas tracker. A failing job does not halt the block; it
// simply is not rescheduled and will be retried (still due) next block.
func (ec *execCtx) runDueCronjobs(block Block) []Outcome {
	entries, err := ec.keeper.ScheduledJob.Range(ec.keeper.Storage, nil, store.Ascending)
	if err != nil {
		return []Outcome{{Success: false, Error: err.Error()}}
	}

	due := make([]ScheduledJob, 0, len(entries))
	for _, e := range entries {
		if e.Value.Next.AtOrBefore(block.Info.Timestamp) {
			due = append(due, e.Value)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Next != due[j].Next {
			return due[i].Next < due[j].Next
		}
		return due[i].Contract.Compare(due[j].Contract) < 0
	})

	outcomes := make([]Outcome, 0, len(due))
	for _, job := range due {
		outcomes = append(outcomes, ec.runCronjob(job))
	}
	return outcomes
}

func (ec *execCtx) runCronjob(job ScheduledJob) Outcome {
	tracker := gas.NewUnlimited()
	child, buf := ec.forkWithGas(tracker)
	resp, err := child.callHook(job.Contract, "cron_execute", nil)
	if err != nil {
		buf.Discard()
		return Outcome{Success: false, GasUsed: tracker.Used(), Error: err.Error()}
	}
	buf.Merge()

	job.Next = job.Next.Add(job.Interval)
	key := store.RawKey(job.Contract.Bytes())
	if err := ec.keeper.ScheduledJob.Save(ec.keeper.Storage, key, job); err != nil {
		return Outcome{Success: false, GasUsed: tracker.Used(), Error: err.Error()}
	}
	return Outcome{Success: true, GasUsed: tracker.Used(), Events: resp.Events}
}
