package wasmrt

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// wrap applies the composition alias of a remote: the message is nested
// under the alias tag when one is set.
func wrap(alias string, msg any) ([]byte, error) {
	if alias == "" {
		return Encode(msg)
	}
	return EncodeCase(alias, msg)
}

// ExecuteMsg builds the contract call for an exec message.
func ExecuteMsg(addr Addr, alias string, msg any, funds []Coin) (WasmMsg, error) {
	body, err := wrap(alias, msg)
	if err != nil {
		return WasmMsg{}, fmt.Errorf("execute %s: %w", addr, err)
	}
	return WasmMsg{Execute: &WasmExecute{ContractAddr: addr, Msg: body, Funds: nonNil(funds)}}, nil
}

// InstantiateMsg builds a contract instantiation.
func InstantiateMsg(codeID uint64, label string, admin *Addr, msg any, funds []Coin) (WasmMsg, error) {
	body, err := Encode(msg)
	if err != nil {
		return WasmMsg{}, fmt.Errorf("instantiate code %d: %w", codeID, err)
	}
	return WasmMsg{Instantiate: &WasmInstantiate{Admin: admin, CodeID: codeID, Msg: body, Funds: nonNil(funds), Label: label}}, nil
}

// MigrateMsg builds a migration to newCodeID.
func MigrateMsg(addr Addr, newCodeID uint64, msg any) (WasmMsg, error) {
	body, err := Encode(msg)
	if err != nil {
		return WasmMsg{}, fmt.Errorf("migrate %s: %w", addr, err)
	}
	return WasmMsg{Migrate: &WasmMigrate{ContractAddr: addr, NewCodeID: newCodeID, Msg: body}}, nil
}

// SudoMsg encodes a sudo message; sudo is invoked by the chain, not sent.
func SudoMsg(alias string, msg any) (Binary, error) {
	return wrap(alias, msg)
}

// QueryRequest is the host query envelope for smart contract queries.
type QueryRequest struct {
	Wasm *WasmQuery `json:"wasm,omitzero"`
}

type WasmQuery struct {
	Smart *SmartQuery `json:"smart,omitzero"`
}

type SmartQuery struct {
	ContractAddr Addr   `json:"contract_addr"`
	Msg          Binary `json:"msg"`
}

// QuerySmart sends msg to the contract at addr and decodes the response.
func QuerySmart[R any](q Querier, addr Addr, alias string, msg any) (R, error) {
	var out R
	body, err := wrap(alias, msg)
	if err != nil {
		return out, fmt.Errorf("query %s: %w", addr, err)
	}
	req, err := Encode(QueryRequest{Wasm: &WasmQuery{Smart: &SmartQuery{ContractAddr: addr, Msg: body}}})
	if err != nil {
		return out, fmt.Errorf("query %s: %w", addr, err)
	}
	raw, err := q.RawQuery(req)
	if err != nil {
		return out, fmt.Errorf("query %s: %w", addr, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("query %s: decode response: %w", addr, err)
	}
	return out, nil
}

func nonNil(funds []Coin) []Coin {
	if funds == nil {
		return []Coin{}
	}
	return funds
}
