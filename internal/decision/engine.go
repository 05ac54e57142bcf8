package decision

import (
	"context"
	"fmt"
	"math"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/logger"
)

// Action thresholds over the fused decision score. The boundaries
// themselves hold: Buy requires strictly more than buyThreshold, Sell
// strictly less than sellThreshold.
const (
	buyThreshold  = 0.6
	sellThreshold = 0.4
)

// midpointScore is the normalized return used when min-max scaling
// degenerates: a batch of one instrument, or a batch where every
// prediction is identical, has no spread to scale against, so the
// return term pins to the fixed midpoint. This is a deliberate policy,
// not an edge-case accident.
const midpointScore = 0.5

// PredictFunc produces the predicted next-period return for one
// instrument. Implementations typically fetch recent data, compute the
// latest feature row, and apply the cached model.
type PredictFunc func(ctx context.Context, instrumentID string) (float64, error)

// Engine fuses quantitative predictions with sentiment scores into
// discrete trading decisions.
//
// Fusion policy (the normalized variant): predicted returns are min-max
// scaled across the batch into [0,1], sentiment is mapped from [-1,1]
// to [0,1] via (s+1)/2, and the decision score is the configured
// weighted sum of the two. The historical raw-percentage variant with
// >1/<0 thresholds is intentionally not supported.
// ⭐ SSOT: 매매 판단 로직은 여기서만
type Engine struct {
	quantWeight float64
	qualWeight  float64
	logger      *logger.Logger
}

// NewEngine creates a decision engine. The two weights must sum to 1.
func NewEngine(quantWeight, qualWeight float64, log *logger.Logger) (*Engine, error) {
	if math.Abs(quantWeight+qualWeight-1.0) > 1e-9 {
		return nil, fmt.Errorf("fusion weights must sum to 1, got %.4f", quantWeight+qualWeight)
	}
	return &Engine{
		quantWeight: quantWeight,
		qualWeight:  qualWeight,
		logger:      log,
	}, nil
}

// RunBatch produces one decision per surviving instrument, in input
// order. A prediction failure or a missing sentiment score skips that
// instrument and never aborts the batch.
func (e *Engine) RunBatch(ctx context.Context, instruments []string, predict PredictFunc, sentiments map[string]float64) []contracts.Decision {
	type candidate struct {
		id        string
		ret       float64
		sentiment float64
	}

	// First pass: gather predictions so the whole batch is known
	// before normalization.
	candidates := make([]candidate, 0, len(instruments))
	for _, id := range instruments {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).Warn("Decision batch canceled")
			break
		}

		ret, err := predict(ctx, id)
		if err != nil {
			e.logger.WithError(err).WithField("instrument", id).
				Error("Prediction failed, skipping instrument")
			continue
		}

		sentiment, ok := sentiments[id]
		if !ok {
			e.logger.WithField("instrument", id).
				Warn("No sentiment score, skipping instrument")
			continue
		}

		candidates = append(candidates, candidate{id: id, ret: ret, sentiment: sentiment})
	}

	if len(candidates) == 0 {
		return nil
	}

	returns := make([]float64, len(candidates))
	for i, c := range candidates {
		returns[i] = c.ret
	}
	normalized := normalizeReturns(returns)

	decisions := make([]contracts.Decision, 0, len(candidates))
	for i, c := range candidates {
		d := e.fuse(c.id, c.ret, normalized[i], c.sentiment)
		e.logger.WithFields(map[string]interface{}{
			"instrument":       d.InstrumentID,
			"predicted_return": d.PredictedReturn,
			"sentiment":        d.SentimentScore,
			"score":            d.DecisionScore,
			"action":           d.Action,
		}).Info("Decision made")
		decisions = append(decisions, d)
	}
	return decisions
}

// fuse computes the weighted decision score and maps it to an action
func (e *Engine) fuse(instrumentID string, predictedReturn, normalizedReturn, sentiment float64) contracts.Decision {
	normalizedSentiment := (sentiment + 1) / 2
	score := e.quantWeight*normalizedReturn + e.qualWeight*normalizedSentiment

	return contracts.Decision{
		InstrumentID:    instrumentID,
		PredictedReturn: predictedReturn,
		SentimentScore:  sentiment,
		DecisionScore:   score,
		Action:          actionFor(score),
	}
}

// actionFor maps a decision score to its action.
// score > 0.6 buys, score < 0.4 sells, both boundaries hold.
func actionFor(score float64) contracts.Action {
	switch {
	case score > buyThreshold:
		return contracts.ActionBuy
	case score < sellThreshold:
		return contracts.ActionSell
	default:
		return contracts.ActionHold
	}
}

// normalizeReturns min-max scales the batch's predicted returns into
// [0,1]. Zero spread degenerates every entry to the fixed midpoint.
func normalizeReturns(returns []float64) []float64 {
	out := make([]float64, len(returns))
	if len(returns) == 0 {
		return out
	}

	min, max := returns[0], returns[0]
	for _, r := range returns[1:] {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}

	if max == min {
		for i := range out {
			out[i] = midpointScore
		}
		return out
	}

	for i, r := range returns {
		out[i] = (r - min) / (max - min)
	}
	return out
}
