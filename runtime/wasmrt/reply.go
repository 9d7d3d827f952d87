package wasmrt

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownReply is returned for a reply id no handler was registered for.
	ErrUnknownReply = errors.New("unknown reply id")
	// ErrUnhandledReply is returned when no method of a reply group accepts
	// the outcome.
	ErrUnhandledReply = errors.New("no reply handler for outcome")
)

// Reply is the result of a sub-message, routed back by ID.
type Reply struct {
	ID      uint64       `json:"id"`
	Payload Binary       `json:"payload,omitzero"`
	Result  SubMsgResult `json:"result"`
}

// SubMsgResult holds either Ok or Err.
type SubMsgResult struct {
	Ok  *SubMsgResponse `json:"ok,omitzero"`
	Err *string         `json:"error,omitzero"`
}

type SubMsgResponse struct {
	Events []Event `json:"events"`
	Data   Binary  `json:"data,omitzero"`
}

// Succeeded reports whether the sub-message completed without error.
func (r Reply) Succeeded() bool { return r.Result.Err == nil }

// Data returns the success data and whether any was set.
func (r Reply) Data() (Binary, bool) {
	if r.Result.Ok == nil || r.Result.Ok.Data == nil {
		return nil, false
	}
	return r.Result.Ok.Data, true
}

// Failure returns the error text, empty on success.
func (r Reply) Failure() string {
	if r.Result.Err == nil {
		return ""
	}
	return *r.Result.Err
}

func UnknownReply(contract string, id uint64) error {
	return fmt.Errorf("%s: %w %d", contract, ErrUnknownReply, id)
}

func UnhandledReply(handler string, r Reply) error {
	outcome := "success"
	if !r.Succeeded() {
		outcome = "failure"
	}
	return fmt.Errorf("%s: %w %s", handler, ErrUnhandledReply, outcome)
}

// DecodePayload decodes a JSON reply payload into T.
func DecodePayload[T any](b Binary) (T, error) {
	var out T
	if err := DecodeStrict(b, &out); err != nil {
		return out, fmt.Errorf("reply payload: %w", err)
	}
	return out, nil
}

// DecodeData decodes the success data of a reply into T. Missing data is
// an error; optional data is handled by the caller.
func DecodeData[T any](r Reply) (T, error) {
	var out T
	data, ok := r.Data()
	if !ok {
		return out, errors.New("reply data: missing")
	}
	if err := DecodeStrict(data, &out); err != nil {
		return out, fmt.Errorf("reply data: %w", err)
	}
	return out, nil
}

// DecodeOptData is DecodeData for optional parameters.
func DecodeOptData[T any](r Reply) (*T, error) {
	if _, ok := r.Data(); !ok {
		return nil, nil
	}
	v, err := DecodeData[T](r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// OptData returns the raw success data, nil when absent.
func OptData(r Reply) *Binary {
	data, ok := r.Data()
	if !ok {
		return nil
	}
	return &data
}

// RawData returns the success data; missing data is an error.
func RawData(r Reply) (Binary, error) {
	data, ok := r.Data()
	if !ok {
		return nil, errors.New("reply data: missing")
	}
	return data, nil
}
