package app

import (
	"strconv"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
	"corechain/internal/store"
	"corechain/internal/vm"
)

// DispatchMessage routes a single Message to its handler, per spec §4.7
// step 4's six message types. Wasm-invoking handlers run inside a freshly
// forked buffer that is merged on success and dropped on failure, exactly
// as the nested "message buffer" step describes.
func DispatchMessage(ec *execCtx, sender primitives.Address, msg Message) ([]Event, error) {
	switch {
	case msg.Configure != nil:
		return dispatchConfigure(ec, sender, msg.Configure)
	case msg.Transfer != nil:
		return dispatchTransfer(ec, sender, msg.Transfer)
	case msg.Upload != nil:
		return dispatchUpload(ec, sender, msg.Upload)
	case msg.Instantiate != nil:
		return dispatchInstantiate(ec, sender, msg.Instantiate)
	case msg.Execute != nil:
		return dispatchExecute(ec, sender, msg.Execute)
	case msg.Migrate != nil:
		return dispatchMigrate(ec, sender, msg.Migrate)
	default:
		return nil, apperror.Std("empty message")
	}
}

func dispatchConfigure(ec *execCtx, sender primitives.Address, m *MsgConfigure) ([]Event, error) {
	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	if cfg.Owner != sender {
		return nil, apperror.NotOwner(sender.String())
	}
	if m.NewOwner != nil {
		cfg.Owner = *m.NewOwner
	}
	if m.NewBank != nil {
		cfg.Bank = m.NewBank
	}
	if m.NewTaxman != nil {
		cfg.Taxman = m.NewTaxman
	}
	if m.NewPermissions != nil {
		cfg.Permissions = *m.NewPermissions
	}
	if err := ec.keeper.Config.Save(ec.keeper.Storage, cfg); err != nil {
		return nil, err
	}

	events := []Event{NewEvent("configure", "sender", sender.String())}

	if m.SetCronjob != nil {
		evt, err := installCronjob(ec.keeper, ec.block, *m.SetCronjob)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if m.ScheduleUpgrade != nil {
		upgrade := NextUpgrade{Height: m.ScheduleUpgrade.Height, CargoVersion: m.ScheduleUpgrade.CargoVersion}
		if err := ec.keeper.NextUpgrade.Save(ec.keeper.Storage, upgrade); err != nil {
			return nil, err
		}
		events = append(events, NewEvent("schedule_upgrade", "height", strconv.FormatUint(upgrade.Height, 10), "cargo_version", upgrade.CargoVersion))
	}

	return events, nil
}

// installCronjob records interval in cfg.Cronjobs and (re)schedules the
// job's first run one interval after the current block.
func installCronjob(k *Keeper, block BlockInfo, m SetCronjob) (Event, error) {
	cfg, err := k.Config.Load(k.Storage)
	if err != nil {
		return Event{}, err
	}
	if cfg.Cronjobs == nil {
		cfg.Cronjobs = map[primitives.Address]primitives.Duration{}
	}
	cfg.Cronjobs[m.Contract] = m.Interval
	if err := k.Config.Save(k.Storage, cfg); err != nil {
		return Event{}, err
	}

	job := ScheduledJob{Contract: m.Contract, Interval: m.Interval, Next: block.Timestamp.Add(m.Interval)}
	key := store.RawKey(m.Contract.Bytes())
	if err := k.ScheduledJob.Save(k.Storage, key, job); err != nil {
		return Event{}, err
	}
	return NewEvent("set_cronjob", "contract", m.Contract.String()), nil
}

func dispatchTransfer(ec *execCtx, sender primitives.Address, m *MsgTransfer) ([]Event, error) {
	for _, c := range m.Coins {
		if err := moveCoin(ec.keeper, sender, m.To, c); err != nil {
			return nil, err
		}
	}
	return []Event{NewEvent("transfer", "from", sender.String(), "to", m.To.String())}, nil
}

// moveCoin debits from and credits to by amount, erroring if from's balance
// is insufficient.
func moveCoin(k *Keeper, from, to primitives.Address, c primitives.Coin) error {
	denomKey := store.RawKey([]byte(c.Denom.String()))
	fromKey := store.Pair2[store.RawKey, store.RawKey]{A: store.RawKey(from.Bytes()), B: denomKey}
	toKey := store.Pair2[store.RawKey, store.RawKey]{A: store.RawKey(to.Bytes()), B: denomKey}

	fromBal, ok, err := k.Balances.MayLoad(k.Storage, fromKey)
	if err != nil {
		return err
	}
	if !ok {
		fromBal = primitives.NewUint(c.Amount.Width())
	}
	newFrom, err := fromBal.CheckedSub(c.Amount)
	if err != nil {
		return apperror.Std("transfer: insufficient balance for %s: %v", c.Denom.String(), err)
	}
	if err := k.Balances.Save(k.Storage, fromKey, newFrom); err != nil {
		return err
	}

	toBal, ok, err := k.Balances.MayLoad(k.Storage, toKey)
	if err != nil {
		return err
	}
	if !ok {
		toBal = primitives.NewUint(c.Amount.Width())
	}
	newTo, err := toBal.CheckedAdd(c.Amount)
	if err != nil {
		return err
	}
	return k.Balances.Save(k.Storage, toKey, newTo)
}

func dispatchUpload(ec *execCtx, sender primitives.Address, m *MsgUpload) ([]Event, error) {
	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	if !hasPermission(cfg.Permissions.Upload, cfg.Owner, sender) {
		return nil, apperror.Unauthorized("upload: %s is not permitted to upload code", sender.String())
	}

	hash := primitives.HashCode(m.Code)
	key := store.RawKey(hash.Bytes())
	if ec.keeper.Codes.Has(ec.keeper.Storage, key) {
		return nil, apperror.CodeExists(hash.String())
	}
	code := Code{Hash: hash, Bytes: m.Code, Status: CodeStatus{InUseCount: 0}}
	if err := ec.keeper.Codes.Save(ec.keeper.Storage, key, code); err != nil {
		return nil, err
	}
	return []Event{NewEvent("upload", "code_hash", hash.String())}, nil
}

func dispatchInstantiate(ec *execCtx, sender primitives.Address, m *MsgInstantiate) ([]Event, error) {
	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		return nil, err
	}
	if !hasPermission(cfg.Permissions.Instantiate, cfg.Owner, sender) {
		return nil, apperror.Unauthorized("instantiate: %s is not permitted to instantiate contracts", sender.String())
	}

	codeKey := store.RawKey(m.CodeHash.Bytes())
	code, err := ec.keeper.Codes.Load(ec.keeper.Storage, codeKey)
	if err != nil {
		return nil, err
	}

	addr := primitives.DeriveContractAddress(sender, m.CodeHash, m.Salt)
	contractKey := store.RawKey(addr.Bytes())
	if ec.keeper.Contracts.Has(ec.keeper.Storage, contractKey) {
		return nil, apperror.AccountExists(addr.String())
	}

	contract := Contract{Address: addr, CodeHash: m.CodeHash, Admin: m.Admin, Label: m.Label}
	if err := ec.keeper.Contracts.Save(ec.keeper.Storage, contractKey, contract); err != nil {
		return nil, err
	}
	code.Status.InUseCount++
	if err := ec.keeper.Codes.Save(ec.keeper.Storage, codeKey, code); err != nil {
		return nil, err
	}

	resp, err := ec.callContract(addr, code.Bytes, "instantiate", sender, m.Funds, [][]byte{m.Msg})
	if err != nil {
		return nil, err
	}
	events := append([]Event{NewEvent("instantiate", "contract", addr.String(), "code_hash", m.CodeHash.String())}, resp.Events...)
	sub, err := ec.processSubMessages(addr, resp.Messages)
	if err != nil {
		return nil, err
	}
	return append(events, sub...), nil
}

func dispatchExecute(ec *execCtx, sender primitives.Address, m *MsgExecute) ([]Event, error) {
	contractKey := store.RawKey(m.Contract.Bytes())
	contract, err := ec.keeper.Contracts.Load(ec.keeper.Storage, contractKey)
	if err != nil {
		return nil, err
	}
	code, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(contract.CodeHash.Bytes()))
	if err != nil {
		return nil, err
	}
	resp, err := ec.callContract(m.Contract, code.Bytes, "execute", sender, m.Funds, [][]byte{m.Msg})
	if err != nil {
		return nil, err
	}
	events := append([]Event{NewEvent("execute", "contract", m.Contract.String())}, resp.Events...)
	sub, err := ec.processSubMessages(m.Contract, resp.Messages)
	if err != nil {
		return nil, err
	}
	return append(events, sub...), nil
}

func dispatchMigrate(ec *execCtx, sender primitives.Address, m *MsgMigrate) ([]Event, error) {
	contractKey := store.RawKey(m.Contract.Bytes())
	contract, err := ec.keeper.Contracts.Load(ec.keeper.Storage, contractKey)
	if err != nil {
		return nil, err
	}
	if contract.Admin == nil || *contract.Admin != sender {
		return nil, apperror.NotAdmin(sender.String())
	}
	oldCode, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(contract.CodeHash.Bytes()))
	if err != nil {
		return nil, err
	}
	newCode, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(m.NewCodeHash.Bytes()))
	if err != nil {
		return nil, err
	}

	resp, err := ec.callContract(m.Contract, newCode.Bytes, "migrate", sender, nil, [][]byte{m.Msg})
	if err != nil {
		return nil, err
	}

	oldCode.Status.InUseCount--
	if err := ec.keeper.Codes.Save(ec.keeper.Storage, store.RawKey(oldCode.Hash.Bytes()), oldCode); err != nil {
		return nil, err
	}
	newCode.Status.InUseCount++
	if err := ec.keeper.Codes.Save(ec.keeper.Storage, store.RawKey(newCode.Hash.Bytes()), newCode); err != nil {
		return nil, err
	}
	contract.CodeHash = m.NewCodeHash
	if err := ec.keeper.Contracts.Save(ec.keeper.Storage, contractKey, contract); err != nil {
		return nil, err
	}

	events := append([]Event{NewEvent("migrate", "contract", m.Contract.String(), "new_code_hash", m.NewCodeHash.String())}, resp.Events...)
	sub, err := ec.processSubMessages(m.Contract, resp.Messages)
	if err != nil {
		return nil, err
	}
	return append(events, sub...), nil
}

// callContract forks a fresh message buffer, runs a Wasm export against it,
// and merges the buffer into ec's own on success (spec §4.7 step 4: "on
// success the buffer merges into the tx buffer, on failure the buffer is
// dropped and the entire tx aborts").
func (ec *execCtx) callContract(contract primitives.Address, code []byte, export string, sender primitives.Address, funds []primitives.Coin, args [][]byte) (ContractResponse, error) {
	child, buf := ec.forked()
	ib := child.instanceBuilder(contract, false)

	vctx := vm.Context{
		ChainID:        ec.engine.ChainID,
		BlockHeight:    ec.block.Height,
		BlockTimestamp: ec.block.Timestamp,
		Contract:       contract,
		Sender:         &sender,
		Funds:          funds,
		Mode:           ec.mode,
	}

	codeHash := primitives.HashCode(code)
	out, err := ib.Call(codeHash, code, export, vctx, args)
	if err != nil {
		buf.Discard()
		return ContractResponse{}, err
	}
	var resp ContractResponse
	if err := decodeJSON(out, &resp); err != nil {
		buf.Discard()
		return ContractResponse{}, err
	}
	buf.Merge()
	return resp, nil
}
