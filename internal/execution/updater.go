package execution

import (
	"context"
	"fmt"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

// Updater modifies protective-stop parameters on an already-open position
// without placing a new order.
type Updater struct {
	exchange ports.ExchangeClient
	logger   ports.Logger
}

// NewUpdater creates a new position updater.
func NewUpdater(exchange ports.ExchangeClient, logger ports.Logger) (*Updater, error) {
	if exchange == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Updater")
	}
	return &Updater{exchange: exchange, logger: logger}, nil
}

// UpdateStops issues a single trading-stop call carrying only the supplied
// fields; omitted fields are left unchanged on the venue, not cleared. The
// venue's "not modified" rejection is treated as success with a warning.
func (u *Updater) UpdateStops(ctx context.Context, intent *domain.TradeIntent) *domain.UpdateOutcome {
	outcome := &domain.UpdateOutcome{
		StopLoss:     intent.StopLoss,
		TakeProfit:   intent.TakeProfit,
		TrailingStop: intent.TrailingStop,
	}

	if !intent.HasStops() {
		outcome.ErrorMsg = ports.ErrNoFieldsToUpdate.Error()
		return outcome
	}

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

	u.logger.Info(ctx, "Updating protective stops", map[string]interface{}{
		"symbol": intent.Symbol, "stopLoss": params.StopLoss, "takeProfit": params.TakeProfit, "trailingStop": params.TrailingStop,
	})

	if err := u.exchange.SetTradingStop(ctx, intent.Symbol, params); err != nil {
		if ports.IsStopNotModified(err) {
			outcome.Success = true
			outcome.Warning = "no change applied: stops already at the requested values"
			return outcome
		}
		outcome.ErrorCode, outcome.ErrorMsg = splitExchangeError(err)
		return outcome
	}

	outcome.Success = true
	return outcome
}
