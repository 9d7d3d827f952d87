package wasmrt

import (
	"testing"

	"github.com/go-json-experiment/json"
)

func TestExecuteMsgWrap(t *testing.T) {
	msg := execMsg{Freeze: &execMsgFreeze{}}
	tests := []struct {
		alias string
		want  string
	}{
		{"", `{"freeze":{}}`},
		{"cw1", `{"cw1":{"freeze":{}}}`},
	}
	for _, tt := range tests {
		wm, err := ExecuteMsg("contract1", tt.alias, msg, nil)
		if err != nil {
			t.Fatalf("ExecuteMsg: %v", err)
		}
		if wm.Execute == nil || string(wm.Execute.Msg) != tt.want {
			t.Fatalf("alias %q: body = %s, want %s", tt.alias, wm.Execute.Msg, tt.want)
		}
		if wm.Execute.ContractAddr != "contract1" || wm.Execute.Funds == nil {
			t.Fatalf("execute = %+v", wm.Execute)
		}
	}
}

func TestQuerySmart(t *testing.T) {
	var seen QueryRequest
	q := QuerierFunc(func(req []byte) ([]byte, error) {
		if err := json.Unmarshal(req, &seen); err != nil {
			return nil, err
		}
		return []byte(`{"limit":4}`), nil
	})
	got, err := QuerySmart[execMsgAdminList](q, "contract1", "cw1", execMsg{AdminList: &execMsgAdminList{}})
	if err != nil {
		t.Fatalf("QuerySmart: %v", err)
	}
	if got.Limit != 4 {
		t.Fatalf("response = %+v", got)
	}
	smart := seen.Wasm.Smart
	if smart.ContractAddr != "contract1" || string(smart.Msg) != `{"cw1":{"admin_list":{"limit":0}}}` {
		t.Fatalf("request = %+v (%s)", smart, smart.Msg)
	}
}

func TestInstantiateAndMigrate(t *testing.T) {
	admin := Addr("admin")
	wm, err := InstantiateMsg(7, "counter", &admin, execMsgAdminList{Limit: 1}, []Coin{NewCoin(1, "atom")})
	if err != nil {
		t.Fatalf("InstantiateMsg: %v", err)
	}
	in := wm.Instantiate
	if in.CodeID != 7 || in.Label != "counter" || *in.Admin != admin || string(in.Msg) != `{"limit":1}` {
		t.Fatalf("instantiate = %+v", in)
	}
	mm, err := MigrateMsg("contract1", 8, Empty{})
	if err != nil || mm.Migrate.NewCodeID != 8 || string(mm.Migrate.Msg) != `{}` {
		t.Fatalf("migrate = %+v, %v", mm.Migrate, err)
	}
}
