package bybit

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tradebridge/internal/domain"
	"tradebridge/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://api.bybit.com"
	baseURLTestnet    = "https://api-testnet.bybit.com"

	categoryLinear  = "linear"
	orderTypeMarket = "Market"
	accountUnified  = "UNIFIED"
)

// Client implements the ports.ExchangeClient interface against the Bybit V5
// REST API. Requests are signed with HMAC-SHA256 per the V5 scheme.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	secretKey  string
	recvWindow string
	logger     ports.Logger
}

// Config holds configuration specific to the Bybit client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	RecvWindow int // milliseconds; defaults to 5000
	Timeout    time.Duration
	Logger     ports.Logger
}

// New creates a new Bybit client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Bybit client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	baseURL := baseURLProduction
	if cfg.UseTestnet {
		baseURL = baseURLTestnet
	}
	cfg.Logger.Info(context.Background(), "Bybit client configured", map[string]interface{}{"baseURL": baseURL, "testnet": cfg.UseTestnet})

	recvWindow := cfg.RecvWindow
	if recvWindow <= 0 {
		recvWindow = 5000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		recvWindow: strconv.Itoa(recvWindow),
		logger:     cfg.Logger,
	}, nil
}

// sign computes the V5 request signature over timestamp + apiKey +
// recvWindow + payload, where payload is the raw query string for GET and
// the JSON body for POST.
func (c *Client) sign(timestamp, payload string) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(timestamp + c.apiKey + c.recvWindow + payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// handleError translates transport and business failures into standardized
// ports errors. Non-zero retCode is always wrapped so callers can extract
// the code via ports.AsExchangeError.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var exErr *ports.ExchangeError
	if errors.As(err, &exErr) {
		fields["retCode"] = exErr.Code
		fields["retMsg"] = exErr.Message

		// Map well-known venue codes onto sentinel errors.
		var mappedErr error
		switch exErr.Code {
		case 10002: // Request not within the recv window
			mappedErr = ports.ErrTimeout
		case 10003, 10004, 10005: // Invalid API key / signature / permissions
			mappedErr = ports.ErrAuthenticationFailed
		case 10016: // Service unavailable
			mappedErr = ports.ErrExchangeUnavailable
		default:
			mappedErr = ports.ErrExchangeRejected
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, exErr)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with exchange error", operation), fields)
		return finalErr
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrExchangeUnavailable, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// do executes one signed request and decodes the result payload. A non-zero
// retCode is returned as *ports.ExchangeError even when HTTP reports 200.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var payload string
	var reqBody io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = string(raw)
		reqBody = bytes.NewReader(raw)
	} else if len(query) > 0 {
		payload = query.Encode()
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-BAPI-API-KEY", c.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", c.recvWindow)
	req.Header.Set("X-BAPI-SIGN", c.sign(timestamp, payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response envelope (HTTP %d): %w", resp.StatusCode, err)
	}

	if env.RetCode != 0 {
		return &ports.ExchangeError{Code: env.RetCode, Message: env.RetMsg}
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result payload: %w", err)
		}
	}
	return nil
}

// GetWalletBalance retrieves the unified-account wallet balance for one asset.
func (c *Client) GetWalletBalance(ctx context.Context, asset string) (float64, error) {
	op := "GetWalletBalance"
	query := url.Values{}
	query.Set("accountType", accountUnified)
	query.Set("coin", asset)

	var result walletBalanceResult
	if err := c.do(ctx, http.MethodGet, "/v5/account/wallet-balance", query, nil, &result); err != nil {
		return 0, c.handleError(ctx, err, op)
	}

	for _, account := range result.List {
		for _, coin := range account.Coin {
			if coin.Coin != asset {
				continue
			}
			balance, err := strconv.ParseFloat(coin.WalletBalance, 64)
			if err != nil {
				parseErr := fmt.Errorf("could not parse balance '%s' for asset %s: %w", coin.WalletBalance, asset, err)
				return 0, c.handleError(ctx, parseErr, op)
			}
			c.logger.Debug(ctx, op+" successful", map[string]interface{}{"asset": asset, "balance": balance})
			return balance, nil
		}
	}

	// Asset not present in the account details
	err := fmt.Errorf("asset %s not found in account balance", asset)
	return 0, c.handleError(ctx, err, op)
}

// GetInstrumentConstraints retrieves the lot-size filter for a linear symbol.
func (c *Client) GetInstrumentConstraints(ctx context.Context, symbol string) (*domain.InstrumentConstraints, error) {
	op := "GetInstrumentConstraints"
	query := url.Values{}
	query.Set("category", categoryLinear)
	query.Set("symbol", symbol)

	var result instrumentsInfoResult
	if err := c.do(ctx, http.MethodGet, "/v5/market/instruments-info", query, nil, &result); err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	if len(result.List) == 0 {
		err := fmt.Errorf("no instrument info returned for symbol %s", symbol)
		return nil, c.handleError(ctx, err, op)
	}

	filter := result.List[0].LotSizeFilter
	minQty, err := strconv.ParseFloat(filter.MinOrderQty, 64)
	if err != nil {
		return nil, c.handleError(ctx, fmt.Errorf("parsing minOrderQty '%s': %w", filter.MinOrderQty, err), op)
	}
	maxQty, err := strconv.ParseFloat(filter.MaxOrderQty, 64)
	if err != nil {
		return nil, c.handleError(ctx, fmt.Errorf("parsing maxOrderQty '%s': %w", filter.MaxOrderQty, err), op)
	}
	qtyStep, err := strconv.ParseFloat(filter.QtyStep, 64)
	if err != nil {
		return nil, c.handleError(ctx, fmt.Errorf("parsing qtyStep '%s': %w", filter.QtyStep, err), op)
	}

	constraints := &domain.InstrumentConstraints{MinQty: minQty, MaxQty: maxQty, QtyStep: qtyStep}
	c.logger.Debug(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "minQty": minQty, "maxQty": maxQty, "qtyStep": qtyStep})
	return constraints, nil
}

// PlaceMarketOrder places a market order in one-way position mode.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity string, orderLinkID string) (*ports.PlaceOrderResponse, error) {
	op := "PlaceMarketOrder"
	reqBody := createOrderRequest{
		Category:    categoryLinear,
		Symbol:      symbol,
		Side:        string(side),
		OrderType:   orderTypeMarket,
		Qty:         quantity,
		OrderLinkID: orderLinkID,
		PositionIdx: 0, // one-way mode
		ReduceOnly:  false,
	}

	var result createOrderResult
	if err := c.do(ctx, http.MethodPost, "/v5/order/create", nil, reqBody, &result); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	resp := &ports.PlaceOrderResponse{OrderID: result.OrderID, OrderLinkID: result.OrderLinkID}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{"symbol": symbol, "side": side, "quantity": quantity, "orderID": resp.OrderID})
	return resp, nil
}

// SetTradingStop sets or modifies protective stops on the open position.
func (c *Client) SetTradingStop(ctx context.Context, symbol string, params ports.TradingStopParams) error {
	op := "SetTradingStop"
	reqBody := tradingStopRequest{
		Category:     categoryLinear,
		Symbol:       symbol,
		PositionIdx:  0,
		StopLoss:     params.StopLoss,
		TakeProfit:   params.TakeProfit,
		TrailingStop: params.TrailingStop,
	}

	if err := c.do(ctx, http.MethodPost, "/v5/position/trading-stop", nil, reqBody, nil); err != nil {
		return c.handleError(ctx, err, op)
	}

	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol": symbol, "stopLoss": params.StopLoss, "takeProfit": params.TakeProfit, "trailingStop": params.TrailingStop,
	})
	return nil
}

// GetLastExecutionPrice retrieves the most recent execution price for a symbol.
func (c *Client) GetLastExecutionPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetLastExecutionPrice"
	query := url.Values{}
	query.Set("category", categoryLinear)
	query.Set("symbol", symbol)
	query.Set("limit", "1")

	var result executionListResult
	if err := c.do(ctx, http.MethodGet, "/v5/execution/list", query, nil, &result); err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(result.List) == 0 {
		err := fmt.Errorf("no executions returned for symbol %s", symbol)
		return 0, c.handleError(ctx, err, op)
	}

	price, err := strconv.ParseFloat(result.List[0].ExecPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse execPrice '%s': %w", result.List[0].ExecPrice, err)
		return 0, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// GetServerTime retrieves the current server time from the exchange.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	op := "GetServerTime"
	var result serverTimeResult
	if err := c.do(ctx, http.MethodGet, "/v5/market/time", nil, nil, &result); err != nil {
		return time.Time{}, c.handleError(ctx, err, op)
	}

	seconds, err := strconv.ParseInt(result.TimeSecond, 10, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse timeSecond '%s': %w", result.TimeSecond, err)
		return time.Time{}, c.handleError(ctx, parseErr, op)
	}
	return time.Unix(seconds, 0), nil
}
