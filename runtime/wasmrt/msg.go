package wasmrt

import "fmt"

// CosmosMsg is an outgoing message; exactly one field is set. C is the
// chain-specific custom message type.
type CosmosMsg[C any] struct {
	Bank   *BankMsg `json:"bank,omitzero"`
	Wasm   *WasmMsg `json:"wasm,omitzero"`
	Custom *C       `json:"custom,omitzero"`
}

// BankMsg moves native tokens.
type BankMsg struct {
	Send *BankSend `json:"send,omitzero"`
}

type BankSend struct {
	ToAddress Addr   `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

// WasmMsg calls another contract; exactly one field is set.
type WasmMsg struct {
	Execute     *WasmExecute     `json:"execute,omitzero"`
	Instantiate *WasmInstantiate `json:"instantiate,omitzero"`
	Migrate     *WasmMigrate     `json:"migrate,omitzero"`
}

type WasmExecute struct {
	ContractAddr Addr   `json:"contract_addr"`
	Msg          Binary `json:"msg"`
	Funds        []Coin `json:"funds"`
}

type WasmInstantiate struct {
	Admin  *Addr  `json:"admin"`
	CodeID uint64 `json:"code_id"`
	Msg    Binary `json:"msg"`
	Funds  []Coin `json:"funds"`
	Label  string `json:"label"`
}

type WasmMigrate struct {
	ContractAddr Addr   `json:"contract_addr"`
	NewCodeID    uint64 `json:"new_code_id"`
	Msg          Binary `json:"msg"`
}

// Into wraps a contract call as a CosmosMsg of any custom type.
func Into[C any](m WasmMsg) CosmosMsg[C] {
	return CosmosMsg[C]{Wasm: &m}
}

// NewBankSend builds a native token transfer.
func NewBankSend[C any](to Addr, amount ...Coin) CosmosMsg[C] {
	return CosmosMsg[C]{Bank: &BankMsg{Send: &BankSend{ToAddress: to, Amount: amount}}}
}

// convertMsg re-types a message. Custom payloads cannot change type.
func convertMsg[To, From any](m CosmosMsg[From]) (CosmosMsg[To], error) {
	if m.Custom != nil {
		if c, ok := any(*m.Custom).(To); ok {
			return CosmosMsg[To]{Custom: &c}, nil
		}
		var want To
		return CosmosMsg[To]{}, fmt.Errorf("custom message %T cannot be converted to %T", *m.Custom, want)
	}
	return CosmosMsg[To]{Bank: m.Bank, Wasm: m.Wasm}, nil
}
