package wasmrt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"math/bits"
	"strconv"

	"github.com/go-json-experiment/json"
)

// Addr is a bech32 account or contract address. It is not validated here.
type Addr string

func (a Addr) String() string { return string(a) }

// Empty is the unit message type; it encodes as {}.
type Empty struct{}

// CustomMsg constrains generics that carry chain-specific messages.
type CustomMsg interface{}

// CustomQuery constrains generics that carry chain-specific queries.
type CustomQuery interface{}

// Binary is raw bytes; on the wire it is a base64 string.
type Binary []byte

func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

func (b *Binary) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("binary: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("binary: %w", err)
	}
	*b = raw
	return nil
}

func (b Binary) String() string { return base64.StdEncoding.EncodeToString(b) }

// Coin is an amount of one denomination.
type Coin struct {
	Denom  string  `json:"denom"`
	Amount Uint128 `json:"amount"`
}

// NewCoin is a shorthand for small amounts.
func NewCoin(amount uint64, denom string) Coin {
	return Coin{Denom: denom, Amount: NewUint128(amount)}
}

func (c Coin) String() string { return c.Amount.String() + c.Denom }

// Uint128 is an unsigned 128-bit integer; on the wire it is a decimal string.
type Uint128 struct {
	hi, lo uint64
}

var errUint128Range = errors.New("value out of uint128 range")

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func NewUint128(v uint64) Uint128 { return Uint128{lo: v} }

// ParseUint128 parses a base-10 string.
func ParseUint128(s string) (Uint128, error) {
	// быстрый путь для значений, помещающихся в uint64
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint128{lo: v}, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint128{}, fmt.Errorf("uint128: invalid number %q", s)
	}
	if n.Sign() < 0 || n.Cmp(maxUint128) > 0 {
		return Uint128{}, fmt.Errorf("uint128: %q: %w", s, errUint128Range)
	}
	lo := new(big.Int).And(n, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(n, 64)
	return Uint128{hi: hi.Uint64(), lo: lo.Uint64()}, nil
}

func (u Uint128) big() *big.Int {
	n := new(big.Int).SetUint64(u.hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(u.lo))
}

func (u Uint128) IsZero() bool { return u.hi == 0 && u.lo == 0 }

// Uint64 returns the value and whether it fits.
func (u Uint128) Uint64() (uint64, bool) { return u.lo, u.hi == 0 }

func (u Uint128) String() string {
	if u.hi == 0 {
		return strconv.FormatUint(u.lo, 10)
	}
	return u.big().String()
}

// Add returns u+v or an error on overflow.
func (u Uint128) Add(v Uint128) (Uint128, error) {
	lo, carry := bits.Add64(u.lo, v.lo, 0)
	hi, carry := bits.Add64(u.hi, v.hi, carry)
	if carry != 0 {
		return Uint128{}, fmt.Errorf("uint128: %s + %s: %w", u, v, errUint128Range)
	}
	return Uint128{hi: hi, lo: lo}, nil
}

func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.hi != v.hi:
		if u.hi < v.hi {
			return -1
		}
		return 1
	case u.lo < v.lo:
		return -1
	case u.lo > v.lo:
		return 1
	}
	return 0
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("uint128: expected a decimal string: %w", err)
	}
	v, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
