package execution

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockExchange struct {
	placeErr      error
	placeResp     *ports.PlaceOrderResponse
	stopErr       error
	fillPrice     float64
	fillErr       error
	placedQty     string
	placedSide    domain.OrderSide
	placedLinkIDs []string
	stopCalls     []ports.TradingStopParams
	fillLookups   int
}

func (m *mockExchange) GetWalletBalance(ctx context.Context, asset string) (float64, error) {
	return 0, errors.New("unexpected balance call")
}

func (m *mockExchange) GetInstrumentConstraints(ctx context.Context, symbol string) (*domain.InstrumentConstraints, error) {
	return nil, errors.New("unexpected constraints call")
}

func (m *mockExchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, orderLinkID string) (*ports.PlaceOrderResponse, error) {
	m.placedSide = side
	m.placedQty = quantity
	m.placedLinkIDs = append(m.placedLinkIDs, orderLinkID)
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	if m.placeResp != nil {
		return m.placeResp, nil
	}
	return &ports.PlaceOrderResponse{OrderID: "oid-1", OrderLinkID: orderLinkID}, nil
}

func (m *mockExchange) SetTradingStop(ctx context.Context, symbol string, params ports.TradingStopParams) error {
	m.stopCalls = append(m.stopCalls, params)
	return m.stopErr
}

func (m *mockExchange) GetLastExecutionPrice(ctx context.Context, symbol string) (float64, error) {
	m.fillLookups++
	return m.fillPrice, m.fillErr
}

func (m *mockExchange) GetServerTime(ctx context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func newTestExecutor(t *testing.T, exchange ports.ExchangeClient) *Executor {
	t.Helper()
	e, err := New(Config{Exchange: exchange, Logger: &mockLogger{}})
	require.NoError(t, err)
	return e
}

func rejectedErr(code int, msg string) error {
	return fmt.Errorf("place order failed: %w: %w", ports.ErrExchangeRejected, &ports.ExchangeError{Code: code, Message: msg})
}

func TestExecuteSuccessWithStops(t *testing.T) {
	exchange := &mockExchange{fillPrice: 57123.5}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:     domain.ActionBuy,
		Symbol:     "BTCUSDT",
		Quantity:   0.01,
		StopLoss:   55000,
		TakeProfit: 60000,
	})

	assert.True(t, outcome.Success)
	assert.Equal(t, "oid-1", outcome.OrderID)
	assert.Equal(t, 57123.5, outcome.FillPrice)
	assert.Empty(t, outcome.Warning)

	assert.Equal(t, domain.SideBuy, exchange.placedSide)
	assert.Equal(t, "0.01", exchange.placedQty)
	require.Len(t, exchange.placedLinkIDs, 1)
	assert.NotEmpty(t, exchange.placedLinkIDs[0])

	require.Len(t, exchange.stopCalls, 1)
	assert.Equal(t, "55000", exchange.stopCalls[0].StopLoss)
	assert.Equal(t, "60000", exchange.stopCalls[0].TakeProfit)
	assert.Empty(t, exchange.stopCalls[0].TrailingStop)
}

func TestExecuteSellSide(t *testing.T) {
	exchange := &mockExchange{}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:   domain.ActionSell,
		Symbol:   "ETHUSDT",
		Quantity: 1.5,
	})

	assert.True(t, outcome.Success)
	assert.Equal(t, domain.SideSell, exchange.placedSide)
	assert.Equal(t, "1.5", exchange.placedQty)
	assert.Empty(t, exchange.stopCalls, "no stops requested, no trading-stop call")
}

// Placement failures are terminal; no stop or fill-price calls follow.
func TestExecutePlacementRejected(t *testing.T) {
	exchange := &mockExchange{placeErr: rejectedErr(110007, "ab not enough for new order")}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:   domain.ActionBuy,
		Symbol:   "BTCUSDT",
		Quantity: 0.01,
		StopLoss: 55000,
	})

	assert.False(t, outcome.Success)
	assert.Equal(t, 110007, outcome.ErrorCode)
	assert.Equal(t, "ab not enough for new order", outcome.ErrorMsg)
	assert.Empty(t, exchange.stopCalls)
	assert.Zero(t, exchange.fillLookups)
}

func TestExecuteStopSetupFailureDegradesToWarning(t *testing.T) {
	exchange := &mockExchange{
		stopErr:   rejectedErr(10001, "params error"),
		fillPrice: 57000,
	}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:   domain.ActionBuy,
		Symbol:   "BTCUSDT",
		Quantity: 0.01,
		StopLoss: 55000,
	})

	assert.True(t, outcome.Success, "order is placed, stop failure must not fail the trade")
	assert.Contains(t, outcome.Warning, "code 10001")
	assert.Contains(t, outcome.Warning, "params error")
	assert.Equal(t, 57000.0, outcome.FillPrice)
}

func TestExecuteStopNotModifiedIsBenign(t *testing.T) {
	exchange := &mockExchange{
		stopErr:   rejectedErr(ports.RetCodeStopNotModified, "not modified"),
		fillPrice: 57000,
	}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:   domain.ActionBuy,
		Symbol:   "BTCUSDT",
		Quantity: 0.01,
		StopLoss: 55000,
	})

	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Warning)
}

// A failed fill-price lookup leaves FillPrice zero for the caller to fall back.
func TestExecuteFillLookupFailure(t *testing.T) {
	exchange := &mockExchange{fillErr: errors.New("no executions yet")}
	executor := newTestExecutor(t, exchange)

	outcome := executor.Execute(context.Background(), &domain.TradeIntent{
		Action:   domain.ActionBuy,
		Symbol:   "BTCUSDT",
		Quantity: 0.01,
	})

	assert.True(t, outcome.Success)
	assert.Zero(t, outcome.FillPrice)
	assert.Empty(t, outcome.Warning)
}

func TestExecuteFreshLinkIDPerOrder(t *testing.T) {
	exchange := &mockExchange{}
	executor := newTestExecutor(t, exchange)

	intent := &domain.TradeIntent{Action: domain.ActionBuy, Symbol: "BTCUSDT", Quantity: 0.01}
	executor.Execute(context.Background(), intent)
	executor.Execute(context.Background(), intent)

	require.Len(t, exchange.placedLinkIDs, 2)
	assert.NotEqual(t, exchange.placedLinkIDs[0], exchange.placedLinkIDs[1])
}
