package contracts

import "time"

// Action represents the fused trading decision for one instrument
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// Decision is one row of the decision ledger: the fusion of a quantitative
// return prediction and a qualitative sentiment score for one instrument.
// ⭐ SSOT: 의사결정 레코드는 여기서만 정의
type Decision struct {
	InstrumentID    string  `json:"instrument_id"`
	PredictedReturn float64 `json:"predicted_return"`
	SentimentScore  float64 `json:"sentiment_score"`
	DecisionScore   float64 `json:"decision_score"`
	Action          Action  `json:"action"`
}

// DecisionRun is one orchestration cycle's ledger plus its identity.
// Rows appear in the order instruments were processed.
type DecisionRun struct {
	RunID     string     `json:"run_id"`
	CreatedAt time.Time  `json:"created_at"`
	Decisions []Decision `json:"decisions"`
}

// IsActionable reports whether the decision requires a broker order
func (d *Decision) IsActionable() bool {
	return d.Action == ActionBuy || d.Action == ActionSell
}
