package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/httputil"
	"github.com/wonny/tradewind/pkg/logger"
)

// Client handles communication with Yahoo Finance endpoints
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger

	chartBaseURL string
	newsBaseURL  string
}

// NewClient creates a new Yahoo Finance client. Outbound requests are
// paced by cfg.RatePerSec to stay under the unauthenticated quota.
func NewClient(cfg config.MarketDataConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}

	return &Client{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(perSec), 1),
		logger:       log,
		chartBaseURL: cfg.ChartBaseURL,
		newsBaseURL:  cfg.NewsBaseURL,
	}
}

// fetch performs a rate-limited GET and returns the response body
func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	return body, nil
}
