package ports

import (
	"context"
	"time"

	"tradebridge/internal/domain"
)

// PlaceOrderResponse represents the essential details returned after placing
// a market order.
type PlaceOrderResponse struct {
	OrderID     string // Exchange's order ID
	OrderLinkID string // Client-supplied order link ID, echoed back
}

// TradingStopParams carries the protective-stop values for one combined
// trading-stop call. Fields are pre-formatted decimal strings; empty means
// "leave unchanged" (the field is omitted from the request, not cleared).
type TradingStopParams struct {
	StopLoss     string
	TakeProfit   string
	TrailingStop string
}

// ExchangeClient defines the interface for interacting with the
// perpetual-futures venue. This abstraction decouples the execution
// pipeline from the concrete REST implementation.
type ExchangeClient interface {
	// GetWalletBalance retrieves the wallet balance for an asset (e.g. "USDT")
	// on the unified account.
	GetWalletBalance(ctx context.Context, asset string) (float64, error)

	// GetInstrumentConstraints retrieves the lot-size filter for a symbol.
	GetInstrumentConstraints(ctx context.Context, symbol string) (*domain.InstrumentConstraints, error)

	// PlaceMarketOrder places a market order in one-way position mode,
	// non-reduce-only. Quantity is a pre-formatted decimal string.
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, orderLinkID string) (*PlaceOrderResponse, error)

	// SetTradingStop sets or modifies stop-loss/take-profit/trailing-stop on
	// the open position for symbol. Only non-empty fields are sent.
	SetTradingStop(ctx context.Context, symbol string, params TradingStopParams) error

	// GetLastExecutionPrice retrieves the price of the most recent execution
	// for a symbol.
	GetLastExecutionPrice(ctx context.Context, symbol string) (float64, error)

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)
}
