package domain

import "strings"

// Action represents the requested trade action after normalization.
type Action string

const (
	ActionBuy    Action = "Buy"
	ActionSell   Action = "Sell"
	ActionUpdate Action = "Update"
)

// ParseAction maps a raw action value (case-insensitive, synonyms allowed)
// to a canonical Action. "long" maps to Buy and "short" to Sell.
func ParseAction(raw string) (Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "LONG":
		return ActionBuy, true
	case "SELL", "SHORT":
		return ActionSell, true
	case "UPDATE":
		return ActionUpdate, true
	default:
		return "", false
	}
}

// OrderSide represents the side of an order on the exchange.
type OrderSide string

const (
	SideBuy  OrderSide = "Buy"
	SideSell OrderSide = "Sell"
)

// Side maps the action to the exchange order side. Update has no side.
func (a Action) Side() OrderSide {
	if a == ActionSell {
		return SideSell
	}
	return SideBuy
}

// symbolReplacer strips the perpetual-contract suffix and dash separators
// in a single pass. TradingView emits e.g. "BTCUSDT.P" or "BTC-USDT".
var symbolReplacer = strings.NewReplacer(".P", "", "-", "")

// NormalizeSymbol converts a raw symbol into the exchange's canonical form:
// upper-cased, no ".P" suffix, no dashes. Normalization is idempotent.
func NormalizeSymbol(raw string) string {
	return symbolReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
}

// TradeIntent is the canonical form of an inbound signal. It is derived per
// request and never persisted. Optional numeric fields use 0 as "absent";
// all of them are strictly positive when present.
type TradeIntent struct {
	Action       Action
	Symbol       string
	Quantity     float64 // 0 if the Sizer must compute it
	EntryPrice   float64 // required for Buy/Sell when Quantity is 0
	StopLoss     float64
	TakeProfit   float64
	TrailingStop float64
}

// HasQuantity reports whether a usable quantity was supplied.
func (t *TradeIntent) HasQuantity() bool { return t.Quantity > 0 }

// HasStops reports whether any protective-stop parameter was supplied.
func (t *TradeIntent) HasStops() bool {
	return t.StopLoss > 0 || t.TakeProfit > 0 || t.TrailingStop > 0
}
