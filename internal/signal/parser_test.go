package signal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

type mockLogger struct {
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(&mockLogger{})
	require.NoError(t, err)
	return p
}

func TestParseBasicBuySignal(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT.P","qty":0.01,"sl":49000,"tp":51000}`))
	require.NoError(t, err)

	assert.Equal(t, domain.ActionBuy, intent.Action)
	assert.Equal(t, "BTCUSDT", intent.Symbol)
	assert.Equal(t, 0.01, intent.Quantity)
	assert.Equal(t, 49000.0, intent.StopLoss)
	assert.Equal(t, 51000.0, intent.TakeProfit)
	assert.Zero(t, intent.TrailingStop)
}

func TestParseDoublyEncodedBody(t *testing.T) {
	p := newTestParser(t)

	inner := `{"action":"sell","symbol":"ETHUSDT","qty":1.5}`
	body, err := jsonString(inner)
	require.NoError(t, err)

	intent, err := p.Parse(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSell, intent.Action)
	assert.Equal(t, "ETHUSDT", intent.Symbol)
	assert.Equal(t, 1.5, intent.Quantity)
}

// jsonString wraps a JSON document in one extra level of string encoding.
func jsonString(inner string) ([]byte, error) {
	return []byte(fmt.Sprintf("%q", inner)), nil
}

func TestParseMalformedPayload(t *testing.T) {
	p := newTestParser(t)

	cases := [][]byte{
		[]byte(`not json at all`),
		[]byte(`[1,2,3]`),
		[]byte(`"still not an object"`),
	}
	for _, body := range cases {
		_, err := p.Parse(context.Background(), body)
		assert.ErrorIs(t, err, ports.ErrMalformedPayload, "body: %s", body)
	}
}

func TestParseMissingAction(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"symbol":"BTCUSDT","qty":1}`))
	require.ErrorIs(t, err, ports.ErrMissingField)
	assert.Contains(t, err.Error(), "action")
}

func TestParseMissingSymbol(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"action":"buy","qty":1}`))
	require.ErrorIs(t, err, ports.ErrMissingField)
	assert.Contains(t, err.Error(), "symbol")
}

func TestParseUnknownAction(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"action":"hold","symbol":"BTCUSDT"}`))
	assert.ErrorIs(t, err, ports.ErrInvalidAction)
}

// All supported case variants of a field must extract the same value.
func TestParseFieldVariants(t *testing.T) {
	p := newTestParser(t)

	variants := map[string][]string{
		"action": {"action", "Action", "ACTION"},
		"symbol": {"symbol", "Symbol", "SYMBOL"},
		"qty":    {"qty", "Qty", "QTY", "quantity"},
		"sl":     {"sl", "SL", "stopLoss"},
		"tp":     {"tp", "TP", "takeProfit"},
		"ts":     {"trailing_stop", "trailingStop", "ts"},
	}

	for _, actionKey := range variants["action"] {
		for _, symbolKey := range variants["symbol"] {
			body := fmt.Sprintf(`{"%s":"long","%s":"btc-usdt","qty":1}`, actionKey, symbolKey)
			intent, err := p.Parse(context.Background(), []byte(body))
			require.NoError(t, err, "body: %s", body)
			assert.Equal(t, domain.ActionBuy, intent.Action)
			assert.Equal(t, "BTCUSDT", intent.Symbol)
		}
	}

	for _, qtyKey := range variants["qty"] {
		body := fmt.Sprintf(`{"action":"buy","symbol":"BTCUSDT","%s":0.5}`, qtyKey)
		intent, err := p.Parse(context.Background(), []byte(body))
		require.NoError(t, err)
		assert.Equal(t, 0.5, intent.Quantity, "variant %s", qtyKey)
	}

	for field, keys := range map[string][]string{"sl": variants["sl"], "tp": variants["tp"], "ts": variants["ts"]} {
		for _, key := range keys {
			body := fmt.Sprintf(`{"action":"buy","symbol":"BTCUSDT","qty":1,"%s":123.45}`, key)
			intent, err := p.Parse(context.Background(), []byte(body))
			require.NoError(t, err)
			switch field {
			case "sl":
				assert.Equal(t, 123.45, intent.StopLoss, "variant %s", key)
			case "tp":
				assert.Equal(t, 123.45, intent.TakeProfit, "variant %s", key)
			case "ts":
				assert.Equal(t, 123.45, intent.TrailingStop, "variant %s", key)
			}
		}
	}
}

// When several variants are supplied, the highest-priority one wins and the
// rest are ignored.
func TestParseFirstVariantWins(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","qty":1,"sl":100,"SL":200,"stopLoss":300}`))
	require.NoError(t, err)
	assert.Equal(t, 100.0, intent.StopLoss)
}

// Empty strings do not count as present: probing continues to the next variant.
func TestParseEmptyVariantSkipped(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"","Action":"sell","symbol":"BTCUSDT","qty":1}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSell, intent.Action)
}

func TestParseNumericStringsAccepted(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","qty":"0.25","sl":"49000"}`))
	require.NoError(t, err)
	assert.Equal(t, 0.25, intent.Quantity)
	assert.Equal(t, 49000.0, intent.StopLoss)
}

// Unparsable optional numerics are dropped, not fatal. A dropped quantity
// falls back to price-based sizing, so price becomes required.
func TestParseInvalidOptionalNumericTreatedAsAbsent(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","qty":"abc","price":50000,"sl":"oops"}`))
	require.NoError(t, err)
	assert.False(t, intent.HasQuantity())
	assert.Equal(t, 50000.0, intent.EntryPrice)
	assert.Zero(t, intent.StopLoss)
}

// Zero or negative quantity is treated as absent (original behavior, kept).
func TestParseNonPositiveQuantityTreatedAsAbsent(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","qty":0,"price":50000}`))
	require.NoError(t, err)
	assert.False(t, intent.HasQuantity())
	assert.Equal(t, 50000.0, intent.EntryPrice)
}

func TestParsePriceRequiredWithoutQuantity(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT"}`))
	require.ErrorIs(t, err, ports.ErrMissingField)
	assert.Contains(t, err.Error(), "price")
}

func TestParseInvalidPriceFatalWithoutQuantity(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","price":"garbage"}`))
	assert.ErrorIs(t, err, ports.ErrInvalidPrice)
}

func TestParseInvalidPriceIgnoredWithQuantity(t *testing.T) {
	p := newTestParser(t)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"buy","symbol":"BTCUSDT","qty":1,"price":"garbage"}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, intent.Quantity)
	assert.Zero(t, intent.EntryPrice)
}

func TestParseUpdateRequiresStopFields(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse(context.Background(), []byte(`{"action":"update","symbol":"ETHUSDT"}`))
	assert.ErrorIs(t, err, ports.ErrNoFieldsToUpdate)

	intent, err := p.Parse(context.Background(), []byte(`{"action":"update","symbol":"ETHUSDT","ts":50}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ActionUpdate, intent.Action)
	assert.Equal(t, 50.0, intent.TrailingStop)
}

func TestParseErrorsAreValidationErrors(t *testing.T) {
	p := newTestParser(t)

	for _, body := range []string{
		`{"symbol":"BTCUSDT"}`,
		`{"action":"buy"}`,
		`{"action":"buy","symbol":"BTCUSDT"}`,
	} {
		_, err := p.Parse(context.Background(), []byte(body))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ports.ErrMissingField), "body: %s", body)
	}
}
