package vm

import (
	"testing"

	"github.com/go-json-experiment/json/jsontext"
)

func TestObjectMembersKeepsNamesAndValues(t *testing.T) {
	members, err := objectMembers(jsontext.Value(`{"by":3,"admin":"wasm1x","nested":{"a":[1,2]}}`))
	if err != nil {
		t.Fatalf("objectMembers: %v", err)
	}
	want := []member{
		{name: "by", value: jsontext.Value(`3`)},
		{name: "admin", value: jsontext.Value(`"wasm1x"`)},
		{name: "nested", value: jsontext.Value(`{"a":[1,2]}`)},
	}
	if len(members) != len(want) {
		t.Fatalf("members = %v", members)
	}
	for i := range want {
		if members[i].name != want[i].name || string(members[i].value) != string(want[i].value) {
			t.Fatalf("member[%d] = %s:%s, want %s:%s", i, members[i].name, members[i].value, want[i].name, want[i].value)
		}
	}

	back, err := object(members)
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	if string(back) != `{"by":3,"admin":"wasm1x","nested":{"a":[1,2]}}` {
		t.Fatalf("object = %s", back)
	}

	if _, err := objectMembers(jsontext.Value(`[1]`)); err == nil {
		t.Fatalf("array must be rejected")
	}
	if _, err := objectMembers(jsontext.Value(`{"a":1,"a":2}`)); err == nil {
		t.Fatalf("duplicate names must be rejected")
	}
}
