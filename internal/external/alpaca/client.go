package alpaca

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/tradewind/pkg/config"
	"github.com/wonny/tradewind/pkg/logger"
)

// Client handles communication with the Alpaca-compatible brokerage API
// ⭐ SSOT: 증권사 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	cfg        config.BrokerConfig
}

// NewClient creates a new brokerage API client
func NewClient(cfg config.BrokerConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
		cfg:        cfg,
	}
}

// request makes an authenticated request to the brokerage API
func (c *Client) request(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	url := fmt.Sprintf("%s%s", c.cfg.BaseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set required headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("APCA-API-KEY-ID", c.cfg.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", c.cfg.APISecret)

	return c.httpClient.Do(req)
}

// apiError represents an error payload from the brokerage API
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
