package bybit

import "encoding/json"

// envelope is the common V5 response wrapper. Business-level success is
// signalled by RetCode == 0 regardless of the HTTP status.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    int64           `json:"time"`
}

type walletBalanceResult struct {
	List []struct {
		AccountType string `json:"accountType"`
		Coin        []struct {
			Coin          string `json:"coin"`
			WalletBalance string `json:"walletBalance"`
			Equity        string `json:"equity"`
		} `json:"coin"`
	} `json:"list"`
}

type instrumentsInfoResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol        string `json:"symbol"`
		LotSizeFilter struct {
			MinOrderQty string `json:"minOrderQty"`
			MaxOrderQty string `json:"maxOrderQty"`
			QtyStep     string `json:"qtyStep"`
		} `json:"lotSizeFilter"`
	} `json:"list"`
}

type createOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

type executionListResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol    string `json:"symbol"`
		ExecPrice string `json:"execPrice"`
		ExecQty   string `json:"execQty"`
		ExecTime  string `json:"execTime"`
	} `json:"list"`
}

type serverTimeResult struct {
	TimeSecond string `json:"timeSecond"`
	TimeNano   string `json:"timeNano"`
}

// createOrderRequest is the body for POST /v5/order/create.
type createOrderRequest struct {
	Category    string `json:"category"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	OrderLinkID string `json:"orderLinkId,omitempty"`
	PositionIdx int    `json:"positionIdx"` // 0 = one-way mode
	ReduceOnly  bool   `json:"reduceOnly"`
}

// tradingStopRequest is the body for POST /v5/position/trading-stop.
// Empty stop fields are omitted so the venue leaves them unchanged.
type tradingStopRequest struct {
	Category     string `json:"category"`
	Symbol       string `json:"symbol"`
	PositionIdx  int    `json:"positionIdx"`
	StopLoss     string `json:"stopLoss,omitempty"`
	TakeProfit   string `json:"takeProfit,omitempty"`
	TrailingStop string `json:"trailingStop,omitempty"`
}
