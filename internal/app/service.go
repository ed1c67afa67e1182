package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tradebridge/config"
	"tradebridge/internal/domain"
	"tradebridge/internal/execution"
	"tradebridge/internal/ports"
	"tradebridge/internal/signal"
	"tradebridge/internal/sizing"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

// Response is the JSON body returned to the webhook caller.
type Response struct {
	Success      bool    `json:"success"`
	Symbol       string  `json:"symbol,omitempty"`
	Action       string  `json:"action,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
	OrderID      string  `json:"order_id,omitempty"`
	FillPrice    float64 `json:"fill_price,omitempty"`
	StopLoss     float64 `json:"stop_loss,omitempty"`
	TakeProfit   float64 `json:"take_profit,omitempty"`
	TrailingStop float64 `json:"trailing_stop,omitempty"`
	Warning      string  `json:"warning,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
	Error        string  `json:"error,omitempty"`
	ErrorCode    int     `json:"error_code,omitempty"`
}

// Result pairs the response body with the HTTP status it should be written
// with.
type Result struct {
	StatusCode int
	Response   Response
}

// Service orchestrates one inbound signal end to end: normalize, size if
// needed, execute or update, notify, respond. It holds no per-request
// state; every invocation is independent.
type Service struct {
	cfg      *config.Config
	logger   ports.Logger
	exchange ports.ExchangeClient
	notifier ports.Notifier
	parser   *signal.Parser
	sizer    *sizing.Sizer
	executor *execution.Executor
	updater  *execution.Updater
}

// NewService creates the orchestrator and its pipeline components.
func NewService(cfg *config.Config, logger ports.Logger, exchange ports.ExchangeClient, notifier ports.Notifier) (*Service, error) {
	if cfg == nil || logger == nil || exchange == nil || notifier == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if cfg.RiskPercent <= 0 || cfg.RiskPercent > 1 {
		return nil, fmt.Errorf("configuration RiskPercent must be in (0, 1]")
	}

	parser, err := signal.NewParser(logger)
	if err != nil {
		return nil, err
	}
	sizer, err := sizing.New(exchange, logger, cfg.QuoteAsset)
	if err != nil {
		return nil, err
	}
	executor, err := execution.New(execution.Config{
		Exchange:        exchange,
		Logger:          logger,
		StopSettleDelay: cfg.StopSettleDelay,
		FillLookupDelay: cfg.FillLookupDelay,
	})
	if err != nil {
		return nil, err
	}
	updater, err := execution.NewUpdater(exchange, logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		exchange: exchange,
		notifier: notifier,
		parser:   parser,
		sizer:    sizer,
		executor: executor,
		updater:  updater,
	}, nil
}

// request tracks per-invocation state, most importantly the
// already-notified flag that guarantees exactly one chat message per
// inbound call regardless of how many failure paths are hit.
type request struct {
	svc      *Service
	notified bool
}

// notifyOnce delivers at most one notification for the lifetime of the
// request. Delivery failures are logged and swallowed; they never affect
// the HTTP response.
func (r *request) notifyOnce(ctx context.Context, ev domain.Event) {
	if r.notified {
		return
	}
	r.notified = true
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if err := r.svc.notifier.Notify(ctx, ev); err != nil {
		r.svc.logger.Warn(ctx, "Notification delivery failed", map[string]interface{}{"kind": ev.Kind, "error": err.Error()})
	}
}

// HandleSignal processes one inbound webhook body start to finish and
// returns the structured result to write back. It never panics: unexpected
// failures map to an internal-error response and a single notification.
func (s *Service) HandleSignal(ctx context.Context, body []byte) (result Result) {
	req := &request{svc: s}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("unexpected panic: %v", rec)
			s.logger.Error(ctx, err, "Signal handling panicked")
			req.notifyOnce(ctx, domain.Event{
				Kind:     domain.EventInternalError,
				ErrorMsg: err.Error(),
			})
			result = Result{
				StatusCode: http.StatusInternalServerError,
				Response:   Response{Success: false, Error: "internal server error"},
			}
		}
	}()

	s.logger.Info(ctx, "Received webhook payload", map[string]interface{}{"bytes": len(body)})

	// Validated
	intent, err := s.parser.Parse(ctx, body)
	if err != nil {
		s.logger.Error(ctx, err, "Signal validation failed")
		req.notifyOnce(ctx, domain.Event{
			Kind:     domain.EventValidationError,
			ErrorMsg: err.Error(),
		})
		return Result{
			StatusCode: http.StatusBadRequest,
			Response:   Response{Success: false, Error: err.Error()},
		}
	}

	s.logger.Info(ctx, "Signal normalized", map[string]interface{}{
		"action": intent.Action, "symbol": intent.Symbol, "qty": intent.Quantity, "price": intent.EntryPrice,
	})

	if intent.Action == domain.ActionUpdate {
		return s.handleUpdate(ctx, req, intent)
	}
	return s.handleOrder(ctx, req, intent)
}

func (s *Service) handleOrder(ctx context.Context, req *request, intent *domain.TradeIntent) Result {
	// Sized (only when the signal did not carry a usable quantity)
	if !intent.HasQuantity() {
		quantity, err := s.sizer.Size(ctx, intent.Symbol, intent.EntryPrice, s.cfg.RiskPercent)
		if err != nil {
			s.logger.Error(ctx, err, "Position sizing failed", map[string]interface{}{"symbol": intent.Symbol})
			req.notifyOnce(ctx, domain.Event{
				Kind:     domain.EventOrderFailed,
				Symbol:   intent.Symbol,
				Action:   intent.Action,
				ErrorMsg: err.Error(),
			})
			return Result{
				StatusCode: statusForError(err),
				Response:   Response{Success: false, Error: err.Error()},
			}
		}
		intent.Quantity = quantity
	}

	// Executed
	outcome := s.executor.Execute(ctx, intent)
	if !outcome.Success {
		req.notifyOnce(ctx, domain.Event{
			Kind:      domain.EventOrderFailed,
			Symbol:    intent.Symbol,
			Action:    intent.Action,
			Quantity:  intent.Quantity,
			ErrorCode: outcome.ErrorCode,
			ErrorMsg:  outcome.ErrorMsg,
		})
		return Result{
			StatusCode: http.StatusInternalServerError,
			Response: Response{
				Success:   false,
				Error:     outcome.ErrorMsg,
				ErrorCode: outcome.ErrorCode,
			},
		}
	}

	// Fall back to the signal's entry price when the fill lookup came up empty.
	fillPrice := outcome.FillPrice
	if fillPrice == 0 {
		fillPrice = intent.EntryPrice
	}

	now := time.Now().UTC()

	// Notified
	req.notifyOnce(ctx, domain.Event{
		Kind:         domain.EventOrderSucceeded,
		Symbol:       intent.Symbol,
		Action:       intent.Action,
		Quantity:     intent.Quantity,
		EntryPrice:   fillPrice,
		StopLoss:     intent.StopLoss,
		TakeProfit:   intent.TakeProfit,
		TrailingStop: intent.TrailingStop,
		OrderID:      outcome.OrderID,
		Warning:      outcome.Warning,
		Timestamp:    now,
	})

	// Responded
	return Result{
		StatusCode: http.StatusOK,
		Response: Response{
			Success:      true,
			Symbol:       intent.Symbol,
			Action:       string(intent.Action),
			Quantity:     intent.Quantity,
			OrderID:      outcome.OrderID,
			FillPrice:    fillPrice,
			StopLoss:     intent.StopLoss,
			TakeProfit:   intent.TakeProfit,
			TrailingStop: intent.TrailingStop,
			Warning:      outcome.Warning,
			Timestamp:    now.Format(timestampLayout),
		},
	}
}

func (s *Service) handleUpdate(ctx context.Context, req *request, intent *domain.TradeIntent) Result {
	// Updated
	outcome := s.updater.UpdateStops(ctx, intent)
	if !outcome.Success {
		req.notifyOnce(ctx, domain.Event{
			Kind:      domain.EventUpdateFailed,
			Symbol:    intent.Symbol,
			Action:    intent.Action,
			ErrorCode: outcome.ErrorCode,
			ErrorMsg:  outcome.ErrorMsg,
		})
		return Result{
			StatusCode: http.StatusInternalServerError,
			Response: Response{
				Success:   false,
				Error:     outcome.ErrorMsg,
				ErrorCode: outcome.ErrorCode,
			},
		}
	}

	now := time.Now().UTC()

	req.notifyOnce(ctx, domain.Event{
		Kind:         domain.EventUpdateSucceeded,
		Symbol:       intent.Symbol,
		Action:       intent.Action,
		StopLoss:     outcome.StopLoss,
		TakeProfit:   outcome.TakeProfit,
		TrailingStop: outcome.TrailingStop,
		Warning:      outcome.Warning,
		Timestamp:    now,
	})

	return Result{
		StatusCode: http.StatusOK,
		Response: Response{
			Success:      true,
			Symbol:       intent.Symbol,
			Action:       string(intent.Action),
			StopLoss:     outcome.StopLoss,
			TakeProfit:   outcome.TakeProfit,
			TrailingStop: outcome.TrailingStop,
			Warning:      outcome.Warning,
			Timestamp:    now.Format(timestampLayout),
		},
	}
}

// statusForError maps pipeline errors onto HTTP statuses: validation
// failures are the caller's fault (400), everything else is ours (500).
func statusForError(err error) int {
	switch {
	case errors.Is(err, ports.ErrMalformedPayload),
		errors.Is(err, ports.ErrMissingField),
		errors.Is(err, ports.ErrInvalidAction),
		errors.Is(err, ports.ErrInvalidPrice),
		errors.Is(err, ports.ErrNoFieldsToUpdate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
