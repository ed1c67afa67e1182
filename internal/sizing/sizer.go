package sizing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

// Sizer computes a constraint-compliant order quantity from account equity,
// risk percentage and entry price. Nothing is cached between calls: equity
// and instrument constraints are fetched fresh for every signal.
type Sizer struct {
	exchange   ports.ExchangeClient
	logger     ports.Logger
	quoteAsset string
}

// New creates a new position sizer.
func New(exchange ports.ExchangeClient, logger ports.Logger, quoteAsset string) (*Sizer, error) {
	if exchange == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Sizer")
	}
	if quoteAsset == "" {
		quoteAsset = "USDT"
	}
	return &Sizer{exchange: exchange, logger: logger, quoteAsset: quoteAsset}, nil
}

// Size returns the order quantity for risking riskPercent of equity at
// entryPrice. The raw quantity is snapped to the instrument's quantity step
// (round-half-to-even) and clamped to [minQty, maxQty]. When the constraint
// lookup fails the raw quantity is returned unrounded instead of failing
// the whole request.
func (s *Sizer) Size(ctx context.Context, symbol string, entryPrice, riskPercent float64) (float64, error) {
	if entryPrice <= 0 {
		return 0, fmt.Errorf("%w: entry price must be positive", ports.ErrSizingFailed)
	}
	if riskPercent <= 0 {
		return 0, fmt.Errorf("%w: risk percent must be positive", ports.ErrSizingFailed)
	}

	equity, err := s.exchange.GetWalletBalance(ctx, s.quoteAsset)
	if err != nil {
		return 0, fmt.Errorf("%w: no balance: %w", ports.ErrSizingFailed, err)
	}
	if equity <= 0 {
		return 0, fmt.Errorf("%w: no %s balance found in account", ports.ErrSizingFailed, s.quoteAsset)
	}
	s.logger.Info(ctx, "Account balance fetched", map[string]interface{}{"asset": s.quoteAsset, "equity": equity})

	rawQuantity := equity * riskPercent / entryPrice

	constraints, err := s.exchange.GetInstrumentConstraints(ctx, symbol)
	if err != nil {
		// Degrade gracefully: an unrounded quantity is better than no trade.
		s.logger.Warn(ctx, "Could not fetch instrument constraints, using unrounded position size", map[string]interface{}{"symbol": symbol, "error": err.Error()})
		return rawQuantity, nil
	}

	quantity := snapToConstraints(rawQuantity, constraints)
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: computed quantity %.8f is not positive for symbol %s", ports.ErrSizingFailed, quantity, symbol)
	}

	s.logger.Info(ctx, "Position size calculated", map[string]interface{}{
		"symbol": symbol, "rawQuantity": rawQuantity, "quantity": quantity,
		"minQty": constraints.MinQty, "maxQty": constraints.MaxQty, "qtyStep": constraints.QtyStep,
	})
	return quantity, nil
}

// snapToConstraints rounds the quantity to a multiple of the step using
// banker's rounding, then clamps to the instrument's min/max bounds.
func snapToConstraints(quantity float64, c *domain.InstrumentConstraints) float64 {
	result := decimal.NewFromFloat(quantity)

	if c.QtyStep > 0 {
		step := decimal.NewFromFloat(c.QtyStep)
		result = result.Div(step).RoundBank(0).Mul(step)
	}
	if c.MinQty > 0 {
		minQty := decimal.NewFromFloat(c.MinQty)
		if result.LessThan(minQty) {
			result = minQty
		}
	}
	if c.MaxQty > 0 {
		maxQty := decimal.NewFromFloat(c.MaxQty)
		if result.GreaterThan(maxQty) {
			result = maxQty
		}
	}

	out, _ := result.Float64()
	return out
}
