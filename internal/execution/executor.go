package execution

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/decision"
	"github.com/wonny/tradewind/pkg/logger"
)

// ErrMissingCredentials signals that broker API credentials are not
// configured. Execution aborts before any per-instrument work.
var ErrMissingCredentials = errors.New("broker credentials not configured")

// Outcome classifies what happened to one decision during execution
type Outcome string

const (
	OutcomeSubmitted  Outcome = "submitted"
	OutcomeNoPosition Outcome = "no_position" // sell with nothing to sell
	OutcomeHold       Outcome = "hold"
	OutcomeFailed     Outcome = "failed"
)

// Result is the execution outcome for one decision
type Result struct {
	InstrumentID string           `json:"instrument_id"`
	Action       contracts.Action `json:"action"`
	Outcome      Outcome          `json:"outcome"`
	OrderID      string           `json:"order_id,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Report is the full execution report for one ledger
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// SubmittedCount returns how many orders reached the broker
func (r *Report) SubmittedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeSubmitted {
			n++
		}
	}
	return n
}

// Executor turns the decision ledger into broker orders.
// Idempotence comes from the position-aware sell path and from acting
// only on the latest ledger: re-running a cycle re-reads fresh holdings
// before every sell.
// ⭐ SSOT: 주문 실행 루프는 여기서만
type Executor struct {
	broker         Broker
	ledger         *decision.Ledger
	quantity       int
	hasCredentials bool
	logger         *logger.Logger
}

// NewExecutor creates a trade executor. quantity is the fixed unit
// quantity submitted per order.
func NewExecutor(broker Broker, ledger *decision.Ledger, quantity int, hasCredentials bool, log *logger.Logger) *Executor {
	return &Executor{
		broker:         broker,
		ledger:         ledger,
		quantity:       quantity,
		hasCredentials: hasCredentials,
		logger:         log,
	}
}

// Execute processes every decision in the current ledger. Precondition
// failures (missing credentials, missing ledger) abort the whole run
// before any order is placed; per-instrument broker errors are logged
// and the loop continues.
func (e *Executor) Execute(ctx context.Context) (*Report, error) {
	if !e.hasCredentials {
		return nil, ErrMissingCredentials
	}

	decisions, err := e.ledger.Read()
	if err != nil {
		return nil, err
	}

	report := &Report{StartedAt: time.Now()}
	for _, d := range decisions {
		result := e.executeOne(ctx, d)
		report.Results = append(report.Results, result)
	}

	e.logger.WithFields(map[string]interface{}{
		"decisions": len(decisions),
		"submitted": report.SubmittedCount(),
	}).Info("Trade execution completed")
	return report, nil
}

func (e *Executor) executeOne(ctx context.Context, d contracts.Decision) Result {
	result := Result{InstrumentID: d.InstrumentID, Action: d.Action}

	switch d.Action {
	case contracts.ActionBuy:
		order := e.newOrder(d.InstrumentID, contracts.OrderSideBuy)
		ack, err := e.broker.SubmitMarketOrder(ctx, order)
		if err != nil {
			e.logger.WithError(err).WithField("instrument", d.InstrumentID).
				Error("Buy order failed")
			result.Outcome = OutcomeFailed
			result.Error = err.Error()
			return result
		}
		e.logger.WithFields(map[string]interface{}{
			"instrument": d.InstrumentID,
			"order_id":   ack.OrderID,
		}).Info("Executed buy")
		result.Outcome = OutcomeSubmitted
		result.OrderID = ack.OrderID

	case contracts.ActionSell:
		position, err := e.broker.GetOpenPosition(ctx, d.InstrumentID)
		if err != nil {
			if errors.Is(err, ErrNoPosition) {
				e.logger.WithField("instrument", d.InstrumentID).
					Info("Skipped sell (no position found)")
				result.Outcome = OutcomeNoPosition
				return result
			}
			e.logger.WithError(err).WithField("instrument", d.InstrumentID).
				Error("Position lookup failed")
			result.Outcome = OutcomeFailed
			result.Error = err.Error()
			return result
		}
		if position.Quantity <= 0 {
			e.logger.WithField("instrument", d.InstrumentID).
				Info("Skipped sell (no shares owned)")
			result.Outcome = OutcomeNoPosition
			return result
		}

		order := e.newOrder(d.InstrumentID, contracts.OrderSideSell)
		ack, err := e.broker.SubmitMarketOrder(ctx, order)
		if err != nil {
			e.logger.WithError(err).WithField("instrument", d.InstrumentID).
				Error("Sell order failed")
			result.Outcome = OutcomeFailed
			result.Error = err.Error()
			return result
		}
		e.logger.WithFields(map[string]interface{}{
			"instrument": d.InstrumentID,
			"order_id":   ack.OrderID,
		}).Info("Executed sell")
		result.Outcome = OutcomeSubmitted
		result.OrderID = ack.OrderID

	default: // Hold
		result.Outcome = OutcomeHold
	}

	return result
}

func (e *Executor) newOrder(instrumentID string, side contracts.OrderSide) contracts.Order {
	return contracts.Order{
		InstrumentID: instrumentID,
		Side:         side,
		Quantity:     e.quantity,
		TimeInForce:  contracts.TimeInForceDay,
		CreatedAt:    time.Now(),
	}
}
