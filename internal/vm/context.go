package vm

import (
	"encoding/json"

	"corechain/internal/primitives"
)

// Mode distinguishes the execution mode an export runs under (spec §4.7's
// "authenticate... under mode Finalize" and §6.3's simulate/query paths).
type Mode string

const (
	ModeFinalize Mode = "finalize"
	ModeSimulate Mode = "simulate"
	ModeQuery    Mode = "query"
)

// Context is serialized into the Context region every Wasm export receives
// alongside its message-specific input regions (spec §4.4). It carries the
// ambient facts a contract needs without threading them through every
// message payload: chain identity, block metadata, and the calling
// contract/sender pair.
type Context struct {
	ChainID         string               `json:"chain_id"`
	BlockHeight     uint64               `json:"block_height"`
	BlockTimestamp  primitives.Timestamp `json:"block_timestamp"`
	Contract        primitives.Address   `json:"contract"`
	Sender          *primitives.Address  `json:"sender,omitempty"`
	Funds           []primitives.Coin    `json:"funds,omitempty"`
	Mode            Mode                 `json:"mode"`
	SimulateAddress *primitives.Address  `json:"simulate_address,omitempty"`
}

// GenericResult is the tagged union every value crossing the Wasm FFI
// boundary is wrapped in (original_source crates/std/src/types/result.rs):
// Ok(T) | Err(string). Guest error types cannot survive the boundary, so
// failures are always stringified (spec §7).
type GenericResult[T any] struct {
	ok    T
	err   string
	isErr bool
}

// Ok builds a successful GenericResult.
func Ok[T any](v T) GenericResult[T] {
	return GenericResult[T]{ok: v}
}

// Err builds a failed GenericResult carrying a stringified error.
func Err[T any](msg string) GenericResult[T] {
	return GenericResult[T]{err: msg, isErr: true}
}

// IsErr reports whether this result carries an error.
func (r GenericResult[T]) IsErr() bool { return r.isErr }

// Unwrap returns the Ok value and the error string (empty if Ok).
func (r GenericResult[T]) Unwrap() (T, string) { return r.ok, r.err }

// MarshalJSON renders {"ok": ...} or {"err": "..."}, matching the original's
// serde(rename_all = "snake_case") enum encoding.
func (r GenericResult[T]) MarshalJSON() ([]byte, error) {
	if r.isErr {
		return json.Marshal(struct {
			Err string `json:"err"`
		}{r.err})
	}
	return json.Marshal(struct {
		Ok T `json:"ok"`
	}{r.ok})
}

// UnmarshalJSON parses either shape back into a GenericResult.
func (r *GenericResult[T]) UnmarshalJSON(data []byte) error {
	var probe struct {
		Ok  *T      `json:"ok"`
		Err *string `json:"err"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Err != nil {
		r.isErr = true
		r.err = *probe.Err
		return nil
	}
	if probe.Ok != nil {
		r.ok = *probe.Ok
	}
	return nil
}
