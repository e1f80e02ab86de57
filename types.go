// Package engine implements a portfolio performance and rebalancing
// calculation engine: a pure, deterministic computational core that turns a
// time-ordered stream of investment activities and daily portfolio
// valuations into rate-of-return metrics, FIFO cost-basis and
// realized/unrealized gain tracking, and target-vs-actual allocation drift
// with rebalancing suggestions.
//
// The engine has no persistence and no network access of its own. The
// persistence collaborator and portfolio collaborator (see interfaces.go)
// are the only external dependencies; everything else is a pure function of
// its inputs, safe to call concurrently across users because no component
// shares mutable state across calls.
package engine

import "github.com/shopspring/decimal"

// Decimal is the arbitrary-precision decimal type used for every monetary or
// share quantity in the engine. It is shopspring/decimal's type directly: the
// engine never wraps it in another layer of indirection for plain scalar use
// (totals, percentages expressed as ratios, drift values before they are
// tagged as Money or Quantity).
type Decimal = decimal.Decimal

// D is a convenience constructor mirroring decimal.NewFromFloat, kept short
// for the places that turn a float64 ratio back into a Decimal.
func D(f float64) Decimal { return decimal.NewFromFloat(f) }

// Zero is the additive identity, exported for readability at call sites.
var Zero = decimal.Zero

// Quantity is a share count. It is a distinct type from Money so that the
// compiler rejects accidental arithmetic between shares and currency
// amounts; the two are only related through Money.Mul/Money.DivQuantity/
// Money.DivPrice.
type Quantity struct{ value Decimal }

// Q wraps a decimal as a Quantity.
func Q(v Decimal) Quantity { return Quantity{value: v} }

// QFloat wraps a float64 as a Quantity.
func QFloat(f float64) Quantity { return Quantity{value: decimal.NewFromFloat(f)} }

func (q Quantity) Decimal() Decimal                   { return q.value }
func (q Quantity) Add(p Quantity) Quantity            { return Quantity{q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity            { return Quantity{q.value.Sub(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity            { return Quantity{q.value.Mul(p.value)} }
func (q Quantity) Div(p Quantity) Quantity            { return Quantity{q.value.Div(p.value)} }
func (q Quantity) Equal(p Quantity) bool              { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool           { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool        { return q.value.GreaterThan(p.value) }
func (q Quantity) GreaterThanOrEqual(p Quantity) bool { return q.value.GreaterThanOrEqual(p.value) }
func (q Quantity) IsZero() bool                       { return q.value.IsZero() }
func (q Quantity) IsPositive() bool                   { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool                   { return q.value.IsNegative() }
func (q Quantity) Min(p Quantity) Quantity {
	if q.value.LessThan(p.value) {
		return q
	}
	return p
}
func (q Quantity) String() string { return q.value.String() }

func (q Quantity) MarshalJSON() ([]byte, error)    { return q.value.MarshalJSON() }
func (q *Quantity) UnmarshalJSON(bytes []byte) error { return q.value.UnmarshalJSON(bytes) }

// Money is a currency amount tagged with the engine's single reporting
// currency. The engine never converts between currencies (spec non-goal);
// the currency label exists purely so output formatting can show a symbol.
type Money struct {
	value    Decimal
	currency string
}

// M wraps a decimal as Money in the given currency.
func M(v Decimal, currency string) Money { return Money{value: v, currency: currency} }

// MFloat wraps a float64 as Money in the given currency.
func MFloat(f float64, currency string) Money {
	return Money{value: decimal.NewFromFloat(f), currency: currency}
}

func (m Money) Decimal() Decimal         { return m.value }
func (m Money) Currency() string         { return m.currency }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }

func (m Money) Add(n Money) Money            { return Money{m.value.Add(n.value), currencyOf(m, n)} }
func (m Money) Sub(n Money) Money            { return Money{m.value.Sub(n.value), currencyOf(m, n)} }
func (m Money) Neg() Money                   { return Money{m.value.Neg(), m.currency} }
func (m Money) Mul(q Quantity) Money         { return Money{m.value.Mul(q.value), m.currency} }
func (m Money) DivQuantity(q Quantity) Money { return Money{m.value.Div(q.value), m.currency} }
func (m Money) DivPrice(price Money) Quantity {
	if price.value.IsZero() {
		return Quantity{Zero}
	}
	return Quantity{m.value.Div(price.value)}
}

// currencyOf makes the "" currency weak so zero-valued Money composes freely.
func currencyOf(a, b Money) string {
	if a.currency == "" {
		return b.currency
	}
	return a.currency
}

func (m Money) String() string { return formatMoney(m.value, m.currency) }

func (m Money) MarshalJSON() ([]byte, error) {
	var w struct {
		Currency string  `json:"currency,omitempty"`
		Amount   Decimal `json:"amount"`
	}
	w.Currency = m.currency
	w.Amount = m.value
	return jsonMarshal(w)
}

// Percent is a percentage value used at the presentation boundary: drift
// percentages, target percentages, return rates expressed out of 100. It is
// a float64, not a Decimal, because it is either a configured target or
// threshold or the result of a division, and its precision requirements stop
// well short of exact decimal arithmetic (see DESIGN.md).
type Percent float64

func (p Percent) Equal(q Percent) bool {
	const precision = 1e-6
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) Abs() Percent {
	if p < 0 {
		return -p
	}
	return p
}
