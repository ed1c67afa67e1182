package domain

import "time"

// EventKind classifies a notification event.
type EventKind string

const (
	EventOrderSucceeded  EventKind = "order_succeeded"
	EventOrderFailed     EventKind = "order_failed"
	EventUpdateSucceeded EventKind = "update_succeeded"
	EventUpdateFailed    EventKind = "update_failed"
	EventValidationError EventKind = "validation_error"
	EventInternalError   EventKind = "internal_error"
)

// Event carries everything the notifier needs to render one chat message.
// Numeric fields use 0 as "absent".
type Event struct {
	Kind         EventKind
	Symbol       string
	Action       Action
	Quantity     float64
	EntryPrice   float64
	StopLoss     float64
	TakeProfit   float64
	TrailingStop float64
	OrderID      string
	Warning      string
	ErrorCode    int
	ErrorMsg     string
	Timestamp    time.Time
}
