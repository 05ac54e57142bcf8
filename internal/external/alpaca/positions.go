package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/wonny/tradewind/internal/execution"
)

// positionResponse is the open position payload. Quantities arrive as
// strings.
type positionResponse struct {
	Symbol string `json:"symbol"`
	Qty    string `json:"qty"`
}

// GetOpenPosition returns the current position for an instrument, or
// execution.ErrNoPosition when the broker holds none. Implements
// execution.Broker. 보유 수량은 항상 새로 조회 (캐시 금지)
func (c *Client) GetOpenPosition(ctx context.Context, instrumentID string) (*execution.Position, error) {
	path := fmt.Sprintf("/v2/positions/%s", instrumentID)

	resp, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("position request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, execution.ErrNoPosition
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("position API error status %d: %s", resp.StatusCode, string(body))
	}

	var result positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode position response: %w", err)
	}

	qty, err := strconv.ParseFloat(result.Qty, 64)
	if err != nil {
		return nil, fmt.Errorf("parse position quantity %q: %w", result.Qty, err)
	}

	return &execution.Position{
		InstrumentID: instrumentID,
		Quantity:     qty,
	}, nil
}
