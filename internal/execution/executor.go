package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

// Executor places market orders and attaches protective stops. Order
// placement failures are terminal and never retried: without idempotency
// support a blind retry risks a duplicate fill. Failures in the enrichment
// steps (stop attachment, fill-price lookup) only degrade the outcome.
type Executor struct {
	exchange        ports.ExchangeClient
	logger          ports.Logger
	stopSettleDelay time.Duration
	fillLookupDelay time.Duration
}

// Config holds the executor's dependencies and settle delays.
type Config struct {
	Exchange        ports.ExchangeClient
	Logger          ports.Logger
	StopSettleDelay time.Duration // wait for the position to register before setting stops
	FillLookupDelay time.Duration // wait before reading back the execution price
}

// New creates a new order executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Exchange == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Executor")
	}
	return &Executor{
		exchange:        cfg.Exchange,
		logger:          cfg.Logger,
		stopSettleDelay: cfg.StopSettleDelay,
		fillLookupDelay: cfg.FillLookupDelay,
	}, nil
}

// Execute places a market order for the intent and, when requested, attaches
// stop-loss/take-profit/trailing-stop in one combined call. The returned
// outcome is never nil.
func (e *Executor) Execute(ctx context.Context, intent *domain.TradeIntent) *domain.OrderOutcome {
	side := intent.Action.Side()
	qtyStr := FormatDecimal(intent.Quantity)
	orderLinkID := uuid.NewString()

	e.logger.Info(ctx, "Placing market order", map[string]interface{}{
		"symbol": intent.Symbol, "side": side, "qty": qtyStr, "orderLinkID": orderLinkID,
	})

	resp, err := e.exchange.PlaceMarketOrder(ctx, intent.Symbol, side, qtyStr, orderLinkID)
	if err != nil {
		outcome := &domain.OrderOutcome{Success: false}
		outcome.ErrorCode, outcome.ErrorMsg = splitExchangeError(err)
		return outcome
	}

	outcome := &domain.OrderOutcome{
		Success:     true,
		OrderID:     resp.OrderID,
		OrderLinkID: resp.OrderLinkID,
	}

	if intent.HasStops() {
		// Give the venue time to register the position before modifying it.
		time.Sleep(e.stopSettleDelay)

		params := ports.TradingStopParams{}
		if intent.StopLoss > 0 {
			params.StopLoss = FormatDecimal(intent.StopLoss)
		}
		if intent.TakeProfit > 0 {
			params.TakeProfit = FormatDecimal(intent.TakeProfit)
		}
		if intent.TrailingStop > 0 {
			params.TrailingStop = FormatDecimal(intent.TrailingStop)
		}

		if err := e.exchange.SetTradingStop(ctx, intent.Symbol, params); err != nil {
			if ports.IsStopNotModified(err) {
				// Stops already at the requested values; nothing to report.
				e.logger.Debug(ctx, "Protective stops already set to requested values", map[string]interface{}{"symbol": intent.Symbol})
			} else {
				code, msg := splitExchangeError(err)
				outcome.Warning = fmt.Sprintf("order placed but protective stop setup failed (code %d): %s", code, msg)
				e.logger.Warn(ctx, "Protective stop setup failed", map[string]interface{}{
					"symbol": intent.Symbol, "orderID": outcome.OrderID, "retCode": code, "retMsg": msg,
				})
			}
		}
	}

	time.Sleep(e.fillLookupDelay)
	if price, err := e.exchange.GetLastExecutionPrice(ctx, intent.Symbol); err != nil {
		// Non-fatal: the caller falls back to the supplied entry price.
		e.logger.Warn(ctx, "Could not retrieve fill price", map[string]interface{}{"symbol": intent.Symbol, "error": err.Error()})
	} else {
		outcome.FillPrice = price
	}

	return outcome
}

// splitExchangeError extracts the venue's result code and message from an
// error chain, falling back to the plain error text.
func splitExchangeError(err error) (int, string) {
	if exErr, ok := ports.AsExchangeError(err); ok {
		return exErr.Code, exErr.Message
	}
	return 0, err.Error()
}
