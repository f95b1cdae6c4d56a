package app

import (
	"testing"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
	"corechain/internal/store"
)

func newDispatchCtx(t *testing.T, owner primitives.Address) *execCtx {
	t.Helper()
	ec := newTestExecCtx(t, 8, 0)
	if err := ec.keeper.Config.Save(ec.keeper.Storage, Config{Owner: owner}); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	return ec
}

func TestDispatchMessageRejectsEmptyMessage(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	if _, err := DispatchMessage(ec, primitives.MockAddress(1), Message{}); !apperror.IsKind(err, apperror.KindStd) {
		t.Fatalf("expected a KindStd error for an empty message, got %v", err)
	}
}

func TestDispatchConfigureRequiresOwner(t *testing.T) {
	owner := primitives.MockAddress(1)
	intruder := primitives.MockAddress(2)
	ec := newDispatchCtx(t, owner)

	newOwner := primitives.MockAddress(3)
	_, err := DispatchMessage(ec, intruder, Message{Configure: &MsgConfigure{NewOwner: &newOwner}})
	if !apperror.IsKind(err, apperror.KindNotOwner) {
		t.Fatalf("expected KindNotOwner rejecting a non-owner's configure, got %v", err)
	}
}

func TestDispatchConfigureUpdatesOwner(t *testing.T) {
	owner := primitives.MockAddress(1)
	newOwner := primitives.MockAddress(2)
	ec := newDispatchCtx(t, owner)

	events, err := DispatchMessage(ec, owner, Message{Configure: &MsgConfigure{NewOwner: &newOwner}})
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if len(events) != 1 || events[0].Type != "configure" {
		t.Fatalf("events = %+v, want one configure event", events)
	}
	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Owner != newOwner {
		t.Fatalf("owner = %s, want %s", cfg.Owner, newOwner)
	}
}

func TestDispatchUploadRejectsNonPermittedSender(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	stranger := primitives.MockAddress(2)

	_, err := DispatchMessage(ec, stranger, Message{Upload: &MsgUpload{Code: []byte("code")}})
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Fatalf("expected KindUnauthorized uploading with no permission granted, got %v", err)
	}
}

func TestDispatchUploadAllowsExplicitlyPermittedSender(t *testing.T) {
	owner := primitives.MockAddress(1)
	permitted := primitives.MockAddress(2)
	ec := newTestExecCtx(t, 8, 0)
	cfg := Config{Owner: owner, Permissions: Permissions{Upload: Permission{Somebodies: []primitives.Address{permitted}}}}
	if err := ec.keeper.Config.Save(ec.keeper.Storage, cfg); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := DispatchMessage(ec, permitted, Message{Upload: &MsgUpload{Code: []byte("code")}}); err != nil {
		t.Fatalf("upload by an allowlisted sender should succeed: %v", err)
	}
}

func TestDispatchInstantiateRejectsNonPermittedSender(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	stranger := primitives.MockAddress(2)

	_, err := DispatchMessage(ec, stranger, Message{Instantiate: &MsgInstantiate{}})
	if !apperror.IsKind(err, apperror.KindUnauthorized) {
		t.Fatalf("expected KindUnauthorized instantiating with no permission granted, got %v", err)
	}
}

func TestDispatchConfigureInstallsCronjob(t *testing.T) {
	owner := primitives.MockAddress(1)
	contract := primitives.MockAddress(5)
	ec := newDispatchCtx(t, owner)
	ec.block = BlockInfo{Timestamp: 100}

	_, err := DispatchMessage(ec, owner, Message{Configure: &MsgConfigure{
		SetCronjob: &SetCronjob{Contract: contract, Interval: 10},
	}})
	if err != nil {
		t.Fatalf("configure with set_cronjob: %v", err)
	}

	cfg, err := ec.keeper.Config.Load(ec.keeper.Storage)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Cronjobs[contract] != 10 {
		t.Fatalf("cfg.Cronjobs[contract] = %v, want 10", cfg.Cronjobs[contract])
	}

	job, err := ec.keeper.ScheduledJob.Load(ec.keeper.Storage, store.RawKey(contract.Bytes()))
	if err != nil {
		t.Fatalf("load scheduled job: %v", err)
	}
	if job.Next != 110 {
		t.Fatalf("job.Next = %d, want 110 (block timestamp 100 + interval 10)", job.Next)
	}
}

func TestDispatchConfigureSchedulesUpgrade(t *testing.T) {
	owner := primitives.MockAddress(1)
	ec := newDispatchCtx(t, owner)

	_, err := DispatchMessage(ec, owner, Message{Configure: &MsgConfigure{
		ScheduleUpgrade: &ScheduleUpgrade{Height: 500, CargoVersion: "v2.0.0"},
	}})
	if err != nil {
		t.Fatalf("configure with schedule_upgrade: %v", err)
	}

	upgrade, err := ec.keeper.NextUpgrade.Load(ec.keeper.Storage)
	if err != nil {
		t.Fatalf("load next upgrade: %v", err)
	}
	if upgrade.Height != 500 || upgrade.CargoVersion != "v2.0.0" {
		t.Fatalf("upgrade = %+v, want {500 v2.0.0}", upgrade)
	}
}

func TestDispatchUploadRejectsDuplicateCode(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	code := []byte("\x00asm\x01\x00\x00\x00")

	if _, err := DispatchMessage(ec, primitives.MockAddress(1), Message{Upload: &MsgUpload{Code: code}}); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if _, err := DispatchMessage(ec, primitives.MockAddress(1), Message{Upload: &MsgUpload{Code: code}}); !apperror.IsKind(err, apperror.KindCodeExists) {
		t.Fatalf("expected KindCodeExists re-uploading identical bytecode, got %v", err)
	}
}

func TestDispatchTransferMovesBalanceBetweenAccounts(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	alice := primitives.MockAddress(10)
	bob := primitives.MockAddress(11)
	uatom := primitives.MustParseDenom("uatom")

	aliceKey := store.Pair2[store.RawKey, store.RawKey]{
		A: store.RawKey(alice.Bytes()),
		B: store.RawKey([]byte(uatom.String())),
	}
	if err := ec.keeper.Balances.Save(ec.keeper.Storage, aliceKey, primitives.UintFromUint64(primitives.Bits128, 100)); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	_, err := DispatchMessage(ec, alice, Message{Transfer: &MsgTransfer{
		To:    bob,
		Coins: []primitives.Coin{{Denom: uatom, Amount: primitives.UintFromUint64(primitives.Bits128, 40)}},
	}})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	aliceBal, err := ec.keeper.Balances.Load(ec.keeper.Storage, aliceKey)
	if err != nil {
		t.Fatalf("load alice balance: %v", err)
	}
	if aliceBal.String() != "60" {
		t.Fatalf("alice balance = %s, want 60", aliceBal.String())
	}

	bobKey := store.Pair2[store.RawKey, store.RawKey]{
		A: store.RawKey(bob.Bytes()),
		B: store.RawKey([]byte(uatom.String())),
	}
	bobBal, err := ec.keeper.Balances.Load(ec.keeper.Storage, bobKey)
	if err != nil {
		t.Fatalf("load bob balance: %v", err)
	}
	if bobBal.String() != "40" {
		t.Fatalf("bob balance = %s, want 40", bobBal.String())
	}
}

func TestDispatchTransferInsufficientBalanceErrors(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	alice := primitives.MockAddress(10)
	bob := primitives.MockAddress(11)
	uatom := primitives.MustParseDenom("uatom")

	_, err := DispatchMessage(ec, alice, Message{Transfer: &MsgTransfer{
		To:    bob,
		Coins: []primitives.Coin{{Denom: uatom, Amount: primitives.UintFromUint64(primitives.Bits128, 1)}},
	}})
	if err == nil {
		t.Fatal("expected an error transferring from an account with no balance")
	}
}

func TestDispatchExecuteRejectsUnknownContract(t *testing.T) {
	ec := newDispatchCtx(t, primitives.MockAddress(1))
	_, err := DispatchMessage(ec, primitives.MockAddress(1), Message{Execute: &MsgExecute{
		Contract: primitives.MockAddress(99),
	}})
	if !apperror.IsKind(err, apperror.KindStd) {
		t.Fatalf("expected a KindStd data-not-found error for an unknown contract, got %v", err)
	}
}
