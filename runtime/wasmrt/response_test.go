package wasmrt

import (
	"errors"
	"testing"
)

type chainMsg struct {
	Mint uint64 `json:"mint"`
}

func TestConvertResponse(t *testing.T) {
	resp := NewResponse[Empty]().
		AddAttribute("action", "freeze").
		AddMessage(NewBankSend[Empty]("addr1", NewCoin(5, "atom"))).
		SetData(Binary("ok"))
	out, err := ConvertResponse[chainMsg](resp, nil)
	if err != nil {
		t.Fatalf("ConvertResponse: %v", err)
	}
	if len(out.Messages) != 1 || out.Messages[0].Msg.Bank == nil || out.Messages[0].ReplyOn != ReplyNever {
		t.Fatalf("messages = %+v", out.Messages)
	}
	if len(out.Attributes) != 1 || string(out.Data) != "ok" {
		t.Fatalf("response = %+v", out)
	}

	custom := NewResponse[chainMsg]().AddMessage(CosmosMsg[chainMsg]{Custom: &chainMsg{Mint: 1}})
	if _, err := ConvertResponse[Empty](custom, nil); err == nil {
		t.Fatalf("custom payload of another type must not convert")
	}
	same, err := ConvertResponse[chainMsg](custom, nil)
	if err != nil || same.Messages[0].Msg.Custom.Mint != 1 {
		t.Fatalf("same-type conversion: %+v, %v", same, err)
	}

	boom := errors.New("boom")
	if _, err := ConvertResponse[chainMsg](Response[Empty]{}, boom); !errors.Is(err, boom) {
		t.Fatalf("handler error must pass through")
	}
}

func TestReplyAccessors(t *testing.T) {
	failure := "out of gas"
	tests := []struct {
		name    string
		reply   Reply
		ok      bool
		data    bool
		failure string
	}{
		{"success with data", Reply{Result: SubMsgResult{Ok: &SubMsgResponse{Data: Binary("1")}}}, true, true, ""},
		{"success without data", Reply{Result: SubMsgResult{Ok: &SubMsgResponse{}}}, true, false, ""},
		{"failure", Reply{Result: SubMsgResult{Err: &failure}}, false, false, failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.reply.Succeeded() != tt.ok {
				t.Fatalf("Succeeded = %v", tt.reply.Succeeded())
			}
			if _, ok := tt.reply.Data(); ok != tt.data {
				t.Fatalf("Data present = %v", ok)
			}
			if tt.reply.Failure() != tt.failure {
				t.Fatalf("Failure = %q", tt.reply.Failure())
			}
			if opt := OptData(tt.reply); (opt != nil) != tt.data {
				t.Fatalf("OptData = %v", opt)
			}
		})
	}
}

func TestDecodeReplyData(t *testing.T) {
	r := Reply{Result: SubMsgResult{Ok: &SubMsgResponse{Data: Binary(`{"mint":9}`)}}}
	got, err := DecodeData[chainMsg](r)
	if err != nil || got.Mint != 9 {
		t.Fatalf("DecodeData = %+v, %v", got, err)
	}
	none, err := DecodeOptData[chainMsg](Reply{Result: SubMsgResult{Ok: &SubMsgResponse{}}})
	if err != nil || none != nil {
		t.Fatalf("DecodeOptData without data = %v, %v", none, err)
	}
	if _, err := DecodeData[chainMsg](Reply{}); err == nil {
		t.Fatalf("missing data must be an error")
	}
	if err := UnhandledReply("submit", Reply{Result: SubMsgResult{Err: new(string)}}); !errors.Is(err, ErrUnhandledReply) {
		t.Fatalf("UnhandledReply = %v", err)
	}
}
