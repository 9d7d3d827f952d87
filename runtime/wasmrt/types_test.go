package wasmrt

import (
	"testing"

	"github.com/go-json-experiment/json"
)

func TestUint128(t *testing.T) {
	tests := []string{"0", "42", "18446744073709551615", "18446744073709551616", "340282366920938463463374607431768211455"}
	for _, s := range tests {
		u, err := ParseUint128(s)
		if err != nil {
			t.Fatalf("ParseUint128(%s): %v", s, err)
		}
		if u.String() != s {
			t.Fatalf("String() = %s, want %s", u, s)
		}
		data, err := json.Marshal(u)
		if err != nil || string(data) != `"`+s+`"` {
			t.Fatalf("Marshal = %s, %v", data, err)
		}
		var back Uint128
		if err := json.Unmarshal(data, &back); err != nil || back != u {
			t.Fatalf("Unmarshal = %v, %v", back, err)
		}
	}
	for _, bad := range []string{"-1", "340282366920938463463374607431768211456", "1e3", ""} {
		if _, err := ParseUint128(bad); err == nil {
			t.Fatalf("ParseUint128(%q) should fail", bad)
		}
	}
}

func TestUint128Add(t *testing.T) {
	top, _ := ParseUint128("340282366920938463463374607431768211455")
	if _, err := top.Add(NewUint128(1)); err == nil {
		t.Fatalf("overflow not detected")
	}
	a := NewUint128(^uint64(0))
	sum, err := a.Add(NewUint128(1))
	if err != nil || sum.String() != "18446744073709551616" {
		t.Fatalf("carry: %s, %v", sum, err)
	}
	if sum.Cmp(a) != 1 || a.Cmp(sum) != -1 || a.Cmp(a) != 0 {
		t.Fatalf("Cmp is inconsistent")
	}
}

func TestBinary(t *testing.T) {
	data, err := json.Marshal(Binary("hi"))
	if err != nil || string(data) != `"aGk="` {
		t.Fatalf("Marshal = %s, %v", data, err)
	}
	var b Binary
	if err := json.Unmarshal(data, &b); err != nil || string(b) != "hi" {
		t.Fatalf("Unmarshal = %q, %v", b, err)
	}
	if err := json.Unmarshal([]byte(`"%%%"`), &b); err == nil {
		t.Fatalf("invalid base64 accepted")
	}
}
