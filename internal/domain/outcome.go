package domain

// InstrumentConstraints holds the lot-size filter for a linear perpetual
// instrument. Fetched from the exchange on demand, never cached.
type InstrumentConstraints struct {
	MinQty  float64
	MaxQty  float64
	QtyStep float64
}

// OrderOutcome is the result of one market-order execution attempt,
// including the optional protective-stop sub-step. Created by the executor,
// consumed by the orchestrator and the notifier, then discarded.
type OrderOutcome struct {
	Success     bool
	OrderID     string
	OrderLinkID string
	FillPrice   float64 // 0 if the execution lookup failed or was skipped
	Warning     string  // non-fatal, e.g. protective stop not applied
	ErrorCode   int
	ErrorMsg    string
}

// UpdateOutcome is the result of a protective-stop modification on an
// already-open position.
type UpdateOutcome struct {
	Success      bool
	StopLoss     float64
	TakeProfit   float64
	TrailingStop float64
	Warning      string
	ErrorCode    int
	ErrorMsg     string
}
