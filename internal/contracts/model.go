package contracts

import "time"

// ModelMeta describes a persisted quantitative model artifact.
// A TrainedModel is immutable once written; retraining writes a
// superseding artifact instead of mutating the old one.
type ModelMeta struct {
	InstrumentID   string    `json:"instrument_id"`
	TrainedAt      time.Time `json:"trained_at"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	TrainRows      int       `json:"train_rows"`
	TestRows       int       `json:"test_rows"`
	FeatureColumns []string  `json:"feature_columns"`
}

// TrainMetrics holds held-out evaluation results for one training run
type TrainMetrics struct {
	RMSE           float64 `json:"rmse"`
	WithinOnePct   float64 `json:"within_1pct"` // fraction of |err| <= 0.01
	WithinFivePct  float64 `json:"within_5pct"` // fraction of |err| <= 0.05
}
