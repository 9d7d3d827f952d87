package wasmrt

import "fmt"

// ReplyOn says when a sub-message result is routed back to the contract.
type ReplyOn string

const (
	ReplyAlways  ReplyOn = "always"
	ReplySuccess ReplyOn = "success"
	ReplyError   ReplyOn = "error"
	ReplyNever   ReplyOn = "never"
)

// SubMsg is a message whose result may come back as a Reply with ID.
type SubMsg[C any] struct {
	ID      uint64       `json:"id"`
	Payload Binary       `json:"payload,omitzero"`
	Msg     CosmosMsg[C] `json:"msg"`
	ReplyOn ReplyOn      `json:"reply_on"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Response is what exec, instantiate, sudo, migrate and reply handlers return.
type Response[C any] struct {
	Messages   []SubMsg[C] `json:"messages"`
	Attributes []Attribute `json:"attributes"`
	Events     []Event     `json:"events"`
	Data       Binary      `json:"data,omitzero"`
}

func NewResponse[C any]() Response[C] { return Response[C]{} }

// AddMessage appends a fire-and-forget message.
func (r Response[C]) AddMessage(m CosmosMsg[C]) Response[C] {
	r.Messages = append(r.Messages, SubMsg[C]{Msg: m, ReplyOn: ReplyNever})
	return r
}

// AddSubMessage appends a message whose result is replied to under id.
func (r Response[C]) AddSubMessage(id uint64, m CosmosMsg[C], on ReplyOn) Response[C] {
	r.Messages = append(r.Messages, SubMsg[C]{ID: id, Msg: m, ReplyOn: on})
	return r
}

func (r Response[C]) AddAttribute(key, value string) Response[C] {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r Response[C]) AddEvent(e Event) Response[C] {
	r.Events = append(r.Events, e)
	return r
}

func (r Response[C]) SetData(b Binary) Response[C] {
	r.Data = b
	return r
}

// ConvertResponse re-types the messages of a handler result. It lets a
// contract forward the result of an interface handler whose custom message
// was bound to a different type. Custom payloads must already be of type To.
func ConvertResponse[To, From any](resp Response[From], err error) (Response[To], error) {
	if err != nil {
		return Response[To]{}, err
	}
	out := Response[To]{Attributes: resp.Attributes, Events: resp.Events, Data: resp.Data}
	if resp.Messages != nil {
		out.Messages = make([]SubMsg[To], 0, len(resp.Messages))
	}
	for i, sm := range resp.Messages {
		m, err := convertMsg[To](sm.Msg)
		if err != nil {
			return Response[To]{}, fmt.Errorf("message %d: %w", i, err)
		}
		out.Messages = append(out.Messages, SubMsg[To]{ID: sm.ID, Payload: sm.Payload, Msg: m, ReplyOn: sm.ReplyOn})
	}
	return out, nil
}
