package app

import (
	"testing"

	"corechain/internal/apperror"
	"corechain/internal/gas"
	"corechain/internal/primitives"
	"corechain/internal/store"
	"corechain/internal/vm"
)

func newTestExecCtx(t *testing.T, maxReplyDepth, replyDepth int) *execCtx {
	t.Helper()
	engine := &Engine{ChainID: "test", MaxReplyDepth: maxReplyDepth, MaxQueryDepth: 3}
	root := store.NewMemStore()
	return &execCtx{
		engine:     engine,
		keeper:     NewKeeper(root),
		gasTracker: gas.NewUnlimited(),
		mode:       vm.ModeFinalize,
		replyDepth: replyDepth,
	}
}

func TestProcessSubMessagesNoOpOnEmptyInput(t *testing.T) {
	ec := newTestExecCtx(t, 8, 0)
	events, err := ec.processSubMessages(primitives.MockAddress(1), nil)
	if err != nil {
		t.Fatalf("processSubMessages with no sub-messages: %v", err)
	}
	if events != nil {
		t.Fatalf("expected no events for an empty sub-message list, got %v", events)
	}
}

func TestProcessSubMessagesEnforcesMaxReplyDepth(t *testing.T) {
	// replyDepth is already at the cap, so even one sub-message must be
	// rejected before any dispatch is attempted.
	ec := newTestExecCtx(t, 2, 2)
	subs := []SubMessage{{ReplyOn: ReplyNever}}
	_, err := ec.processSubMessages(primitives.MockAddress(1), subs)
	if !apperror.IsKind(err, apperror.KindExceedMaxReplyDepth) {
		t.Fatalf("expected KindExceedMaxReplyDepth, got %v", err)
	}
}

func TestProcessSubMessagesAllowsExactlyOneMoreLevel(t *testing.T) {
	// replyDepth+1 == MaxReplyDepth is still within bounds; dispatch is
	// attempted (and fails for an unrelated reason: DispatchMessage rejects
	// the empty message), which proves the depth guard itself did not reject
	// it.
	ec := newTestExecCtx(t, 3, 2)
	subs := []SubMessage{{ReplyOn: ReplyNever, Msg: Message{}}}
	_, err := ec.processSubMessages(primitives.MockAddress(1), subs)
	if apperror.IsKind(err, apperror.KindExceedMaxReplyDepth) {
		t.Fatal("one level below the cap must not be rejected by the depth guard")
	}
}
