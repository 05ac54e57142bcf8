package contracts

import "time"

// Order represents a broker order derived from a Decision.
// Orders are created once and submitted; they are never mutated.
// ⭐ SSOT: 주문 정보 전달은 이 타입으로만
type Order struct {
	InstrumentID string      `json:"instrument_id"`
	Side         OrderSide   `json:"side"`
	Quantity     int         `json:"quantity"`
	TimeInForce  TimeInForce `json:"time_in_force"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OrderSide represents buy or sell
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TimeInForce represents how long an order stays active
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)
