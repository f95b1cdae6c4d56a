// Package query implements the read-only query router of spec §4.6: a
// tagged-union request type dispatched either directly against storage or
// through a read-only Wasm instance.
package query

import "encoding/json"

// Query is the tagged union every read path accepts. Exactly one field is
// populated; the active one is determined by which pointer is non-nil,
// mirroring the original's serde-tagged Rust enum without needing a
// separate discriminant field.
type Query struct {
	Config    *ConfigQuery    `json:"config,omitempty"`
	AppConfig *AppConfigQuery `json:"app_config,omitempty"`
	Balance   *BalanceQuery   `json:"balance,omitempty"`
	Balances  *BalancesQuery  `json:"balances,omitempty"`
	Supply    *SupplyQuery    `json:"supply,omitempty"`
	Supplies  *SuppliesQuery  `json:"supplies,omitempty"`
	WasmRaw   *WasmRawQuery   `json:"wasm_raw,omitempty"`
	WasmSmart *WasmSmartQuery `json:"wasm_smart,omitempty"`
	Multi     []Query         `json:"multi,omitempty"`
}

type ConfigQuery struct{}
type AppConfigQuery struct{}

type BalanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

type BalancesQuery struct {
	Address    string `json:"address"`
	StartAfter string `json:"start_after,omitempty"`
	Limit      uint32 `json:"limit,omitempty"`
}

type SupplyQuery struct {
	Denom string `json:"denom"`
}

type SuppliesQuery struct {
	StartAfter string `json:"start_after,omitempty"`
	Limit      uint32 `json:"limit,omitempty"`
}

type WasmRawQuery struct {
	Contract string `json:"contract"`
	Key      []byte `json:"key"`
}

type WasmSmartQuery struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
}

// Response mirrors Query's shape: one populated field per query kind, plus
// Multi carrying one Response per input Query in the same order (spec
// §4.6: "the response preserves input order").
type Response struct {
	Config    json.RawMessage `json:"config,omitempty"`
	AppConfig json.RawMessage `json:"app_config,omitempty"`
	Balance   json.RawMessage `json:"balance,omitempty"`
	Balances  json.RawMessage `json:"balances,omitempty"`
	Supply    json.RawMessage `json:"supply,omitempty"`
	Supplies  json.RawMessage `json:"supplies,omitempty"`
	WasmRaw   json.RawMessage `json:"wasm_raw,omitempty"`
	WasmSmart json.RawMessage `json:"wasm_smart,omitempty"`
	Multi     []Response      `json:"multi,omitempty"`
}
