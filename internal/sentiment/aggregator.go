package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/pkg/httputil"
	"github.com/wonny/tradewind/pkg/logger"
)

// NewsSource provides the headline feed for an instrument
type NewsSource interface {
	FetchNews(ctx context.Context, symbol string) ([]contracts.Article, error)
}

// Aggregator scores per-instrument news sentiment. Per-ticker failures
// score 0 and never abort the batch.
// ⭐ SSOT: 감성 집계 파이프라인은 여기서만
type Aggregator struct {
	news       NewsSource
	httpClient *httputil.Client
	classifier Classifier
	store      *Store
	workers    int
	logger     *logger.Logger
}

// NewAggregator creates a sentiment aggregator
func NewAggregator(news NewsSource, httpClient *httputil.Client, classifier Classifier, store *Store, workers int, log *logger.Logger) *Aggregator {
	if workers <= 0 {
		workers = 1
	}
	return &Aggregator{
		news:       news,
		httpClient: httpClient,
		classifier: classifier,
		store:      store,
		workers:    workers,
		logger:     log.WithField("module", "sentiment"),
	}
}

// Refresh scores every ticker and replaces the persisted score file.
// The returned map carries one entry per ticker, 0 for tickers whose
// news could not be fetched or classified.
func (a *Aggregator) Refresh(ctx context.Context, tickers []string) (map[string]float64, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers to score")
	}

	a.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": a.workers,
	}).Info("Starting sentiment refresh")

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan contracts.SentimentScore, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.scoreWorker(ctx, tickerCh, resultCh)
		}()
	}

	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	byTicker := make(map[string]contracts.SentimentScore, len(tickers))
	for score := range resultCh {
		byTicker[score.InstrumentID] = score
	}

	// Preserve the input ticker order in the persisted file
	scores := make([]contracts.SentimentScore, 0, len(tickers))
	result := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		score, ok := byTicker[t]
		if !ok {
			score = contracts.SentimentScore{InstrumentID: t, ScoredAt: time.Now()}
		}
		scores = append(scores, score)
		result[t] = score.Score
	}

	if err := a.store.Write(ctx, scores); err != nil {
		return nil, fmt.Errorf("persist sentiment scores: %w", err)
	}

	a.logger.WithField("scored", len(scores)).Info("Sentiment refresh completed")
	return result, nil
}

func (a *Aggregator) scoreWorker(ctx context.Context, tickerCh <-chan string, resultCh chan<- contracts.SentimentScore) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- contracts.SentimentScore{InstrumentID: ticker, ScoredAt: time.Now()}
			continue
		default:
		}

		score := a.scoreTicker(ctx, ticker)
		resultCh <- score
	}
}

// scoreTicker fetches and classifies one instrument's news. Any
// failure degrades to a neutral score.
func (a *Aggregator) scoreTicker(ctx context.Context, ticker string) contracts.SentimentScore {
	score := contracts.SentimentScore{InstrumentID: ticker, ScoredAt: time.Now()}

	articles, err := a.news.FetchNews(ctx, ticker)
	if err != nil {
		a.logger.WithError(err).WithField("ticker", ticker).
			Warn("Failed to fetch news, scoring neutral")
		return score
	}
	if len(articles) == 0 {
		a.logger.WithField("ticker", ticker).Debug("No news articles found")
		return score
	}

	var sum float64
	var classified int
	for _, article := range articles {
		text := a.articleText(ctx, article)
		if text == "" {
			continue
		}

		label, ok := a.classifier.Classify(text)
		if !ok {
			continue
		}
		classified++
		if label == LabelPositive {
			sum += 1
		} else {
			sum -= 1
		}
	}

	if classified > 0 {
		score.Score = sum / float64(classified)
	}
	score.ArticleCount = classified

	a.logger.WithFields(map[string]interface{}{
		"ticker":     ticker,
		"articles":   len(articles),
		"classified": classified,
		"score":      score.Score,
	}).Debug("Scored ticker sentiment")
	return score
}

// articleText returns the best available text for one article: the
// scraped page body, falling back to the feed headline and summary
func (a *Aggregator) articleText(ctx context.Context, article contracts.Article) string {
	if article.Link != "" {
		if text := a.fetchArticleBody(ctx, article.Link); text != "" {
			return text
		}
	}
	return article.Title + " " + article.Summary
}

func (a *Aggregator) fetchArticleBody(ctx context.Context, link string) string {
	resp, err := a.httpClient.Get(ctx, link)
	if err != nil {
		a.logger.WithError(err).WithField("link", link).Debug("Failed to fetch article page")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	text, err := extractText(resp.Body)
	if err != nil {
		a.logger.WithError(err).WithField("link", link).Debug("Failed to parse article page")
		return ""
	}
	return text
}
