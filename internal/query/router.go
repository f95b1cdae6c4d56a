package query

import (
	"encoding/json"

	"corechain/internal/apperror"
)

// Backend is the set of capabilities the router needs from the application
// layer, kept as an interface so this package never imports internal/app
// (which itself builds a Router to serve query_chain) — spec §9's
// "capability set" design note applied to break the cycle.
type Backend interface {
	Config() (json.RawMessage, error)
	AppConfig() (json.RawMessage, error)
	Balance(address, denom string) (json.RawMessage, error)
	Balances(address, startAfter string, limit uint32) (json.RawMessage, error)
	Supply(denom string) (json.RawMessage, error)
	Supplies(startAfter string, limit uint32) (json.RawMessage, error)
	WasmRaw(contract string, key []byte) (json.RawMessage, error)
	WasmSmart(contract string, msg json.RawMessage, depth int) (json.RawMessage, error)
}

// Router dispatches a Query against a Backend, enforcing spec §4.6's
// max_query_depth cap on recursive fanout through Multi and query_chain.
type Router struct {
	backend  Backend
	maxDepth int
}

// NewRouter builds a router with the given recursion cap (typically 3, per
// spec §4.6).
func NewRouter(backend Backend, maxDepth int) *Router {
	return &Router{backend: backend, maxDepth: maxDepth}
}

// Dispatch resolves a single Query at the given recursion depth (0 for a
// top-level call from query_app; depth+1 for each nested query_chain or
// Multi fanout).
func (r *Router) Dispatch(q Query, depth int) (Response, error) {
	if depth > r.maxDepth {
		return Response{}, apperror.ExceedMaxQueryDepth(r.maxDepth)
	}

	switch {
	case q.Config != nil:
		raw, err := r.backend.Config()
		return Response{Config: raw}, err

	case q.AppConfig != nil:
		raw, err := r.backend.AppConfig()
		return Response{AppConfig: raw}, err

	case q.Balance != nil:
		raw, err := r.backend.Balance(q.Balance.Address, q.Balance.Denom)
		return Response{Balance: raw}, err

	case q.Balances != nil:
		raw, err := r.backend.Balances(q.Balances.Address, q.Balances.StartAfter, q.Balances.Limit)
		return Response{Balances: raw}, err

	case q.Supply != nil:
		raw, err := r.backend.Supply(q.Supply.Denom)
		return Response{Supply: raw}, err

	case q.Supplies != nil:
		raw, err := r.backend.Supplies(q.Supplies.StartAfter, q.Supplies.Limit)
		return Response{Supplies: raw}, err

	case q.WasmRaw != nil:
		raw, err := r.backend.WasmRaw(q.WasmRaw.Contract, q.WasmRaw.Key)
		return Response{WasmRaw: raw}, err

	case q.WasmSmart != nil:
		raw, err := r.backend.WasmSmart(q.WasmSmart.Contract, q.WasmSmart.Msg, depth)
		return Response{WasmSmart: raw}, err

	case q.Multi != nil:
		out := make([]Response, len(q.Multi))
		for i, sub := range q.Multi {
			resp, err := r.Dispatch(sub, depth+1)
			if err != nil {
				return Response{}, err
			}
			out[i] = resp
		}
		return Response{Multi: out}, nil

	default:
		return Response{}, apperror.Std("empty query")
	}
}

// AsQuerier adapts the router to vm.Querier (satisfied structurally, no
// import of internal/vm needed here): query_chain calls land back in
// Dispatch at depth rather than depth-1, since the VM host import already
// incremented it before calling.
type AsQuerier struct {
	Router *Router
}

// Query implements vm.Querier by unmarshalling the request, dispatching it,
// and marshalling the response back to JSON — the wire format the Wasm
// ABI's query_chain import carries across the FFI boundary (spec §6.4: "on
// -chain JSON: canonical, sorted object keys").
func (a AsQuerier) Query(depth int, requestJSON []byte) ([]byte, error) {
	var q Query
	if err := json.Unmarshal(requestJSON, &q); err != nil {
		return nil, apperror.StdWrap(err, "decoding query_chain request")
	}
	resp, err := a.Router.Dispatch(q, depth)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
