package execution

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
)

// ErrNoPosition signals that the broker holds no open position for the
// requested instrument. Sell handling treats this as a skip, not a
// failure.
var ErrNoPosition = errors.New("no open position")

// Broker defines the brokerage operations trade execution needs.
// ⭐ SSOT: 증권사 연동 인터페이스는 여기서만 정의
type Broker interface {
	// SubmitMarketOrder submits a market order and returns the broker's
	// acknowledgement.
	SubmitMarketOrder(ctx context.Context, order contracts.Order) (*OrderResult, error)

	// GetOpenPosition returns the current position for an instrument,
	// or ErrNoPosition when none exists. Holdings are always fetched
	// fresh, never cached.
	GetOpenPosition(ctx context.Context, instrumentID string) (*Position, error)
}

// OrderResult is the broker's acknowledgement of a submitted order
type OrderResult struct {
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Position is a current holding
type Position struct {
	InstrumentID string  `json:"instrument_id"`
	Quantity     float64 `json:"quantity"`
}

// MockBroker implements Broker for tests
type MockBroker struct {
	Positions map[string]float64
	Submitted []contracts.Order

	// SubmitErr, when set for an instrument, fails its submission
	SubmitErr map[string]error
	// PositionErr, when set for an instrument, fails its lookup
	PositionErr map[string]error
}

// NewMockBroker creates an empty mock broker
func NewMockBroker() *MockBroker {
	return &MockBroker{
		Positions:   make(map[string]float64),
		SubmitErr:   make(map[string]error),
		PositionErr: make(map[string]error),
	}
}

// SubmitMarketOrder records the order
func (b *MockBroker) SubmitMarketOrder(ctx context.Context, order contracts.Order) (*OrderResult, error) {
	if err := b.SubmitErr[order.InstrumentID]; err != nil {
		return nil, err
	}
	b.Submitted = append(b.Submitted, order)
	return &OrderResult{
		OrderID:     "mock-" + order.InstrumentID,
		Status:      "accepted",
		SubmittedAt: time.Now(),
	}, nil
}

// GetOpenPosition returns the configured position
func (b *MockBroker) GetOpenPosition(ctx context.Context, instrumentID string) (*Position, error) {
	if err := b.PositionErr[instrumentID]; err != nil {
		return nil, err
	}
	qty, ok := b.Positions[instrumentID]
	if !ok {
		return nil, ErrNoPosition
	}
	return &Position{InstrumentID: instrumentID, Quantity: qty}, nil
}
