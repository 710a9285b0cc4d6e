package model

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// 金額。decimalをそのまま包む。
// DBへはdecimalのScan/Valueで保存する。
type Money struct {
	decimal.Decimal
}

var ZeroMoney = Money{Decimal: decimal.Zero}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromInt(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v)}
}

// 文字列から。数値でなければ0。
func ParseMoney(s string) Money {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ZeroMoney
	}
	return Money{Decimal: d}
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) MulQty(qty int64) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(qty))}
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// JSONは数値で出す
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// 数値・数値文字列・null・空文字を受け付ける。
// 読めない値は0にする（エラーにしない）。
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*m = ZeroMoney
		return nil
	}
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*m = ParseMoney(s)
	return nil
}

func (m Money) Format() string {
	return "¥" + m.Decimal.StringFixed(2)
}
