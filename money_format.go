package engine

import (
	"encoding/json"

	gomoney "github.com/Rhymond/go-money"
)

// formatMoney renders a decimal amount with the currency's conventional
// symbol and fraction digits, the same way the teacher repo formats Money:
// go-money owns currency metadata (symbol, fraction digits), decimal owns
// the exact arithmetic, and the two meet only at String().
func formatMoney(value Decimal, currency string) string {
	if currency == "" {
		return value.String()
	}
	cur := gomoney.New(0, currency).Currency()
	shifted := value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(shifted.IntPart())
}

func jsonMarshal(v any) ([]byte, error) { return json.Marshal(v) }
