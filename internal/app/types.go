package app

import (
	"encoding/json"

	"corechain/internal/primitives"
)

// Message is a tagged union of the six message types spec §4.7 step 4
// dispatches: exactly one field is populated.
type Message struct {
	Configure   *MsgConfigure   `json:"configure,omitempty"`
	Transfer    *MsgTransfer    `json:"transfer,omitempty"`
	Upload      *MsgUpload      `json:"upload,omitempty"`
	Instantiate *MsgInstantiate `json:"instantiate,omitempty"`
	Execute     *MsgExecute     `json:"execute,omitempty"`
	Migrate     *MsgMigrate     `json:"migrate,omitempty"`
}

type MsgConfigure struct {
	NewOwner        *primitives.Address `json:"new_owner,omitempty"`
	NewBank         *primitives.Address `json:"new_bank,omitempty"`
	NewTaxman       *primitives.Address `json:"new_taxman,omitempty"`
	NewPermissions  *Permissions        `json:"new_permissions,omitempty"`
	SetCronjob      *SetCronjob         `json:"set_cronjob,omitempty"`
	ScheduleUpgrade *ScheduleUpgrade    `json:"schedule_upgrade,omitempty"`
}

// SetCronjob installs or replaces a contract's scheduled job (spec §8
// scenario D: "Config installs contract C with interval 10s"). The first
// run is scheduled one interval after the block this message lands in.
type SetCronjob struct {
	Contract primitives.Address  `json:"contract"`
	Interval primitives.Duration `json:"interval"`
}

// ScheduleUpgrade installs the halt-and-upgrade marker read by the block
// executor (spec §3.2's NextUpgrade, §4.9 step 4).
type ScheduleUpgrade struct {
	Height       uint64 `json:"height"`
	CargoVersion string `json:"cargo_version"`
}

type MsgTransfer struct {
	To    primitives.Address `json:"to"`
	Coins []primitives.Coin  `json:"coins"`
}

type MsgUpload struct {
	Code []byte `json:"code"`
}

type MsgInstantiate struct {
	CodeHash primitives.Hash256  `json:"code_hash"`
	Msg      json.RawMessage     `json:"msg"`
	Salt     []byte              `json:"salt"`
	Funds    []primitives.Coin   `json:"funds"`
	Admin    *primitives.Address `json:"admin,omitempty"`
	Label    string              `json:"label"`
}

type MsgExecute struct {
	Contract primitives.Address `json:"contract"`
	Msg      json.RawMessage    `json:"msg"`
	Funds    []primitives.Coin  `json:"funds"`
}

type MsgMigrate struct {
	Contract    primitives.Address `json:"contract"`
	NewCodeHash primitives.Hash256 `json:"new_code_hash"`
	Msg         json.RawMessage    `json:"msg"`
}

// Tx is a signed transaction: a sender, a gas budget/price, and an ordered
// list of messages executed sequentially (spec §4.7).
type Tx struct {
	Sender    primitives.Address `json:"sender"`
	GasLimit  uint64             `json:"gas_limit"`
	GasPrice  primitives.Dec     `json:"gas_price"`
	Messages  []Message          `json:"messages"`
	Signature []byte             `json:"signature"`
}

// Event is a single structured log record emitted during execution,
// attached to the message/sub-message that produced it.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// ContractEvent is an Event emitted by a contract's own response (spec
// §4.7 step 4: "events: list<ContractEvent>").
type ContractEvent = Event

// TxEvents groups every event a transaction produced, in emission order.
type TxEvents struct {
	Events []Event `json:"events"`
}

// Outcome is the result of executing one unit of work (a tx or a cronjob):
// either success with gas_used and events, or a failure message.
type Outcome struct {
	Success bool    `json:"success"`
	GasUsed uint64  `json:"gas_used"`
	Events  []Event `json:"events,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// TxOutcome is an Outcome keyed to a tx's position, used by finalize_block
// and simulate (spec §6.2, §6.3).
type TxOutcome = Outcome

// BlockInfo carries the ambient facts about the block being executed.
type BlockInfo struct {
	Height    uint64               `json:"height"`
	Timestamp primitives.Timestamp `json:"timestamp"`
	Hash      primitives.Hash256   `json:"hash"`
}

// Block is the finalize_block input (spec §6.2).
type Block struct {
	Info BlockInfo `json:"info"`
	Txs  []Tx      `json:"txs"`
}

// BlockOutcome is finalize_block's result.
type BlockOutcome struct {
	AppHash      primitives.Hash256 `json:"app_hash"`
	CronOutcomes []Outcome          `json:"cron_outcomes"`
	TxOutcomes   []Outcome          `json:"tx_outcomes"`
}

// GenesisState is the engine's init_chain input (spec §6.1).
type GenesisState struct {
	ChainID   string    `json:"chain_id"`
	Config    Config    `json:"config"`
	AppConfig AppConfig `json:"app_config"`
	Msgs      []Message `json:"msgs"`
}

// ReplyOn selects when a SubMessage's parent contract is re-entered via
// reply (spec §4.8).
type ReplyOn string

const (
	ReplyAlways    ReplyOn = "always"
	ReplyOnSuccess ReplyOn = "on_success"
	ReplyOnError   ReplyOn = "on_error"
	ReplyNever     ReplyOn = "never"
)

// SubMessage is a message a contract's response asks the engine to run on
// its behalf, optionally reporting the outcome back via reply (spec §4.8).
type SubMessage struct {
	Msg     Message         `json:"msg"`
	ReplyOn ReplyOn         `json:"reply_on"`
	Payload json.RawMessage `json:"payload"`
}

// ContractResponse is what a Wasm-invoking dispatch (execute, instantiate,
// migrate, reply, ...) returns (spec §4.7 step 4).
type ContractResponse struct {
	Attributes map[string]string `json:"attributes"`
	Events     []ContractEvent   `json:"events"`
	Messages   []SubMessage      `json:"messages"`
	Data       []byte            `json:"data,omitempty"`
}
