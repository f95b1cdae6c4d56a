package app

import (
	"encoding/json"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
	"corechain/internal/store"
	"corechain/internal/vm"
)

// processSubMessages executes each SubMessage a contract's response asked
// for, in order, and invokes the parent's reply export where reply_on
// demands it (spec §4.8). Total reply recursion is capped by
// ExceedMaxReplyDepth.
func (ec *execCtx) processSubMessages(parent primitives.Address, subs []SubMessage) ([]Event, error) {
	if len(subs) == 0 {
		return nil, nil
	}
	if ec.replyDepth+1 > ec.engine.MaxReplyDepth {
		return nil, apperror.ExceedMaxReplyDepth(ec.engine.MaxReplyDepth)
	}

	var events []Event
	for _, sub := range subs {
		child, buf := ec.forked()
		child.replyDepth = ec.replyDepth + 1

		subEvents, err := DispatchMessage(child, parent, sub.Msg)
		result := vm.Ok[[]Event](subEvents)
		if err != nil {
			result = vm.Err[[]Event](err.Error())
		}

		switch {
		case err == nil && (sub.ReplyOn == ReplyAlways || sub.ReplyOn == ReplyOnSuccess):
			buf.Merge()
			events = append(events, subEvents...)
			replyEvents, rerr := ec.invokeReply(parent, sub.Payload, result)
			if rerr != nil {
				return nil, rerr
			}
			events = append(events, replyEvents...)

		case err != nil && (sub.ReplyOn == ReplyAlways || sub.ReplyOn == ReplyOnError):
			buf.Discard()
			replyEvents, rerr := ec.invokeReply(parent, sub.Payload, result)
			if rerr != nil {
				return nil, rerr
			}
			events = append(events, replyEvents...)

		case err != nil:
			// OnSuccess/Never: no reply runs on failure, so the
			// sub-message's failure propagates to the caller (spec §4.8:
			// "OnSuccess failure propagates").
			buf.Discard()
			return nil, err

		default:
			buf.Merge()
			events = append(events, subEvents...)
		}
	}
	return events, nil
}

// invokeReply calls the parent contract's reply(ctx, payload, result)
// export, if the contract exports it; reply is optional (spec §4.4).
func (ec *execCtx) invokeReply(parent primitives.Address, payload json.RawMessage, result vm.GenericResult[[]Event]) ([]Event, error) {
	contract, err := ec.keeper.Contracts.Load(ec.keeper.Storage, store.RawKey(parent.Bytes()))
	if err != nil {
		return nil, err
	}
	code, err := ec.keeper.Codes.Load(ec.keeper.Storage, store.RawKey(contract.CodeHash.Bytes()))
	if err != nil {
		return nil, err
	}
	ib := ec.instanceBuilder(parent, false)
	has, err := ib.HasExport(contract.CodeHash, code.Bytes, "reply")
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.StdWrap(err, "encoding submessage result")
	}

	resp, err := ec.callContract(parent, code.Bytes, "reply", parent, nil, [][]byte{payload, resultBytes})
	if err != nil {
		return nil, err
	}
	events := append([]Event(nil), resp.Events...)
	sub, err := ec.processSubMessages(parent, resp.Messages)
	if err != nil {
		return nil, err
	}
	return append(events, sub...), nil
}
