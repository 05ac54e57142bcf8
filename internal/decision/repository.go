package decision

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/tradewind/internal/contracts"
)

// Repository persists decision runs to Postgres. Unlike the ledger
// file, which always reflects only the latest cycle, the repository is
// append-only: every run's rows are kept, keyed by run id.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a decision repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun appends all decisions of one run
func (r *Repository) SaveRun(ctx context.Context, run contracts.DecisionRun) error {
	if len(run.Decisions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO trading.decisions
			(run_id, created_at, instrument_id, predicted_return, sentiment_score, decision_score, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, d := range run.Decisions {
		batch.Queue(query, run.RunID, run.CreatedAt,
			d.InstrumentID, d.PredictedReturn, d.SentimentScore, d.DecisionScore, string(d.Action))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range run.Decisions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}
	}
	return nil
}

// GetRun returns the decisions of one run in insertion order
func (r *Repository) GetRun(ctx context.Context, runID string) ([]contracts.Decision, error) {
	query := `
		SELECT instrument_id, predicted_return, sentiment_score, decision_score, action
		FROM trading.decisions
		WHERE run_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var decisions []contracts.Decision
	for rows.Next() {
		var d contracts.Decision
		var action string
		if err := rows.Scan(&d.InstrumentID, &d.PredictedReturn, &d.SentimentScore, &d.DecisionScore, &action); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Action = contracts.Action(action)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// LatestRunID returns the id of the most recent persisted run
func (r *Repository) LatestRunID(ctx context.Context) (string, error) {
	query := `
		SELECT run_id FROM trading.decisions
		ORDER BY created_at DESC
		LIMIT 1`

	var runID string
	if err := r.pool.QueryRow(ctx, query).Scan(&runID); err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return runID, nil
}
