package sentiment

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/logger"
	"github.com/wonny/tradewind/pkg/redis"
)

// ErrScoresNotFound signals that no sentiment score file exists yet
var ErrScoresNotFound = errors.New("sentiment scores not found")

// scoreHeader is the fixed CSV header of the sentiment score file
var scoreHeader = []string{"instrument_id", "score", "article_count", "scored_at"}

// Store persists sentiment scores to CSV and mirrors them into the
// redis cache. The CSV is the source of truth; the cache is a
// best-effort read accelerator.
// ⭐ SSOT: 감성 점수 저장은 여기서만
type Store struct {
	path   string
	cache  *redis.Cache // nil when redis is disabled
	ttl    time.Duration
	logger *logger.Logger
}

// NewStore creates a sentiment score store. cache may be nil.
func NewStore(path string, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Path returns the score file location
func (s *Store) Path() string {
	return s.path
}

// Write replaces the score file with the given run's scores. The file
// is written to a temp path and renamed so readers never observe a
// partial run.
func (s *Store) Write(ctx context.Context, scores []contracts.SentimentScore) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create score dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sentiment-*.csv")
	if err != nil {
		return fmt.Errorf("create temp score file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(scoreHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write score header: %w", err)
	}
	for _, sc := range scores {
		record := []string{
			sc.InstrumentID,
			strconv.FormatFloat(sc.Score, 'f', -1, 64),
			strconv.Itoa(sc.ArticleCount),
			sc.ScoredAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write score row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp score file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace score file: %w", err)
	}

	if s.cache != nil {
		for _, sc := range scores {
			if err := s.cache.Set(ctx, redis.SentimentKey(sc.InstrumentID), sc, s.ttl); err != nil {
				s.logger.WithError(err).WithField("instrument", sc.InstrumentID).
					Warn("Failed to cache sentiment score")
			}
		}
	}

	s.logger.WithField("count", len(scores)).Info("Sentiment scores saved")
	return nil
}

// Read returns the latest run's scores keyed by instrument id
func (s *Store) Read() (map[string]float64, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScoresNotFound
		}
		return nil, fmt.Errorf("open score file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read score file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("score file is empty")
	}

	scores := make(map[string]float64, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, fmt.Errorf("score row %d: expected at least 2 columns, got %d", i+1, len(record))
		}
		score, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("score row %d: parse score: %w", i+1, err)
		}
		scores[record[0]] = score
	}

	return scores, nil
}

// GetCached returns one instrument's cached score, falling back to the
// score file on a miss
func (s *Store) GetCached(ctx context.Context, instrumentID string) (*contracts.SentimentScore, error) {
	if s.cache != nil {
		var cached contracts.SentimentScore
		found, err := s.cache.Get(ctx, redis.SentimentKey(instrumentID), &cached)
		if err == nil && found {
			return &cached, nil
		}
	}

	scores, err := s.Read()
	if err != nil {
		return nil, err
	}
	score, ok := scores[instrumentID]
	if !ok {
		return nil, fmt.Errorf("no sentiment score for %s", instrumentID)
	}
	return &contracts.SentimentScore{InstrumentID: instrumentID, Score: score}, nil
}
