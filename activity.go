package engine

import (
	"fmt"

	"github.com/kalmanoharan/rebalance-engine/date"
)

// ActivityType classifies an observed financial event (§3 Activity).
type ActivityType string

const (
	Buy       ActivityType = "BUY"
	Sell      ActivityType = "SELL"
	Dividend  ActivityType = "DIVIDEND"
	Interest  ActivityType = "INTEREST"
	Fee       ActivityType = "FEE"
	Item      ActivityType = "ITEM"
	Liability ActivityType = "LIABILITY"
)

// IsCashFlow reports whether activities of this type ever produce a signed
// cash flow for the IRR solver. ITEM and LIABILITY are bookkeeping-only: the
// activity taxonomy has no currency-neutral way to mark "this changes net
// worth but isn't a transfer of cash", so they are modeled as zero-flow.
func (t ActivityType) IsCashFlow() bool {
	switch t {
	case Item, Liability:
		return false
	default:
		return true
	}
}

// Activity is an observed, append-only financial event. The engine never
// mutates an Activity once constructed.
type Activity struct {
	Date      date.Date
	Type      ActivityType
	Symbol    string
	Quantity  Quantity
	UnitPrice Money
	Fee       Money
	Value     *Money // optional override; nil means derive from Quantity*UnitPrice
}

// EffectiveValue returns the Value override when present, else Quantity * UnitPrice.
func (a Activity) EffectiveValue() Money {
	if a.Value != nil {
		return *a.Value
	}
	return a.UnitPrice.Mul(a.Quantity)
}

// CashFlow converts the activity into a signed CashFlow, or false if this
// activity type never generates one. Sign convention (§3): BUY/FEE are
// outflows (negative), SELL/DIVIDEND/INTEREST are inflows (positive).
func (a Activity) CashFlow() (CashFlow, bool) {
	if !a.Type.IsCashFlow() {
		return CashFlow{}, false
	}
	value := a.EffectiveValue()
	fee := a.Fee
	switch a.Type {
	case Buy:
		return CashFlow{Date: a.Date, Amount: value.Add(fee).Neg(), Type: a.Type}, true
	case Fee:
		return CashFlow{Date: a.Date, Amount: fee.Neg(), Type: a.Type}, true
	case Sell:
		return CashFlow{Date: a.Date, Amount: value.Sub(fee), Type: a.Type}, true
	case Dividend, Interest:
		return CashFlow{Date: a.Date, Amount: value, Type: a.Type}, true
	default:
		return CashFlow{}, false
	}
}

// CashFlowType names the kinds of cash flow, including the synthetic
// deposit / withdrawal / terminal-value kinds. CashFlow.Type does not use it:
// it carries the ActivityType of the activity the flow came from.
type CashFlowType string

const (
	CashFlowBuy        CashFlowType = "BUY"
	CashFlowSell       CashFlowType = "SELL"
	CashFlowDividend   CashFlowType = "DIVIDEND"
	CashFlowInterest   CashFlowType = "INTEREST"
	CashFlowFee        CashFlowType = "FEE"
	CashFlowDeposit    CashFlowType = "DEPOSIT"
	CashFlowWithdrawal CashFlowType = "WITHDRAWAL"
	CashFlowTerminal   CashFlowType = "TERMINAL_VALUE"
)

// CashFlow is the internal, signed representation the IRR solver consumes.
type CashFlow struct {
	Date   date.Date
	Amount Money
	Type   ActivityType
}

func (c CashFlow) String() string {
	return fmt.Sprintf("%s %s %s", c.Date, c.Type, c.Amount)
}

// ActivitiesToCashFlows filters and converts a slice of activities into their
// signed cash-flow representation, dropping activity types that never
// generate one (ITEM, LIABILITY).
func ActivitiesToCashFlows(activities []Activity) []CashFlow {
	flows := make([]CashFlow, 0, len(activities))
	for _, a := range activities {
		if cf, ok := a.CashFlow(); ok {
			flows = append(flows, cf)
		}
	}
	return flows
}
