package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

// Field variant priority lists. The first present, non-empty variant wins;
// later variants are ignored even when also supplied. The order is a fixed
// contract with the alerting side; do not reorder.
var (
	actionKeys       = []string{"action", "Action", "ACTION"}
	symbolKeys       = []string{"symbol", "Symbol", "SYMBOL"}
	quantityKeys     = []string{"qty", "Qty", "QTY", "quantity"}
	priceKeys        = []string{"price", "Price", "entry"}
	stopLossKeys     = []string{"sl", "SL", "stopLoss"}
	takeProfitKeys   = []string{"tp", "TP", "takeProfit"}
	trailingStopKeys = []string{"trailing_stop", "trailingStop", "ts"}
)

// Parser turns loosely-structured webhook payloads into canonical trade
// intents. It is stateless; one instance serves all requests.
type Parser struct {
	logger ports.Logger
}

// NewParser creates a new payload parser.
func NewParser(logger ports.Logger) (*Parser, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for parser")
	}
	return &Parser{logger: logger}, nil
}

// Parse extracts and validates a TradeIntent from a raw webhook body. The
// body may be a JSON object or a JSON string containing a JSON object (the
// alerting service double-encodes under some configurations).
func (p *Parser) Parse(ctx context.Context, body []byte) (*domain.TradeIntent, error) {
	payload, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrMalformedPayload, err)
	}

	actionRaw, ok := firstPresent(payload, actionKeys)
	if !ok {
		return nil, fmt.Errorf("%w: action", ports.ErrMissingField)
	}
	action, ok := domain.ParseAction(asString(actionRaw))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ports.ErrInvalidAction, asString(actionRaw))
	}

	symbolRaw, ok := firstPresent(payload, symbolKeys)
	if !ok {
		return nil, fmt.Errorf("%w: symbol", ports.ErrMissingField)
	}
	symbol := domain.NormalizeSymbol(asString(symbolRaw))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol", ports.ErrMissingField)
	}

	intent := &domain.TradeIntent{
		Action:       action,
		Symbol:       symbol,
		Quantity:     p.optionalNumber(ctx, payload, quantityKeys, "qty"),
		StopLoss:     p.optionalNumber(ctx, payload, stopLossKeys, "stopLoss"),
		TakeProfit:   p.optionalNumber(ctx, payload, takeProfitKeys, "takeProfit"),
		TrailingStop: p.optionalNumber(ctx, payload, trailingStopKeys, "trailingStop"),
	}

	switch action {
	case domain.ActionUpdate:
		if !intent.HasStops() {
			return nil, fmt.Errorf("%w: at least one of sl/tp/trailing_stop is required for update", ports.ErrNoFieldsToUpdate)
		}
	default:
		// Buy/Sell: entry price is mandatory when no usable quantity was
		// supplied, since the sizer needs it. Unlike the other numeric
		// fields, an invalid value here is fatal.
		priceRaw, priceSupplied := firstPresent(payload, priceKeys)
		if priceSupplied {
			price, err := parsePositiveNumber(priceRaw)
			if err != nil {
				if !intent.HasQuantity() {
					return nil, fmt.Errorf("%w: %v", ports.ErrInvalidPrice, err)
				}
				p.logger.Warn(ctx, "Ignoring invalid price value", map[string]interface{}{"value": priceRaw})
			} else {
				intent.EntryPrice = price
			}
		} else if !intent.HasQuantity() {
			return nil, fmt.Errorf("%w: price is required when qty is not provided", ports.ErrMissingField)
		}
	}

	return intent, nil
}

// decodeObject unmarshals the body into a key-value map, unwrapping one
// level of string encoding if needed.
func decodeObject(body []byte) (map[string]interface{}, error) {
	var top interface{}
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, err
	}
	if inner, ok := top.(string); ok {
		if err := json.Unmarshal([]byte(inner), &top); err != nil {
			return nil, err
		}
	}
	payload, ok := top.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", top)
	}
	return payload, nil
}

// firstPresent probes the variant list in priority order and returns the
// first usable value. Missing keys, nulls and empty strings do not count as
// present; probing continues past them.
func firstPresent(payload map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok || value == nil {
			continue
		}
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return value, true
	}
	return nil, false
}

// optionalNumber extracts an optional positive decimal. Unparsable or
// non-positive values are logged and treated as absent rather than failing
// the whole request.
func (p *Parser) optionalNumber(ctx context.Context, payload map[string]interface{}, keys []string, name string) float64 {
	raw, ok := firstPresent(payload, keys)
	if !ok {
		return 0
	}
	value, err := parsePositiveNumber(raw)
	if err != nil {
		p.logger.Warn(ctx, "Ignoring invalid numeric field", map[string]interface{}{"field": name, "value": raw})
		return 0
	}
	return value
}

func parsePositiveNumber(raw interface{}) (float64, error) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("unparsable number %q", v)
		}
		value = parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("unparsable number %q", v.String())
		}
		value = parsed
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
	if value <= 0 {
		return 0, fmt.Errorf("non-positive value %v", value)
	}
	return value, nil
}

func asString(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
