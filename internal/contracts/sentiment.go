package contracts

import "time"

// SentimentScore is the aggregated news sentiment for one instrument,
// normalized to [-1, 1]. Zero means no classifiable articles were found.
// A score is tied to the aggregation run that produced it; an instrument
// absent from the latest run is treated as having no (stale) sentiment.
type SentimentScore struct {
	InstrumentID string    `json:"instrument_id"`
	Score        float64   `json:"score"`
	ArticleCount int       `json:"article_count"`
	ScoredAt     time.Time `json:"scored_at"`
}

// Article is one news item fetched for an instrument
type Article struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	Published time.Time `json:"published"`
	Text      string    `json:"text,omitempty"`
}
