package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/tradewind/internal/contracts"
	"github.com/wonny/tradewind/internal/execution"
)

// orderRequest is the order submission payload
type orderRequest struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

// orderResponse is the order acknowledgement payload
type orderResponse struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmitMarketOrder submits a market order and returns the broker's
// acknowledgement. Implements execution.Broker.
func (c *Client) SubmitMarketOrder(ctx context.Context, order contracts.Order) (*execution.OrderResult, error) {
	body := orderRequest{
		Symbol:      order.InstrumentID,
		Qty:         strconv.Itoa(order.Quantity),
		Side:        string(order.Side),
		Type:        "market",
		TimeInForce: string(order.TimeInForce),
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order body: %w", err)
	}

	resp, err := c.request(ctx, http.MethodPost, "/v2/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)

		var apiErr apiError
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("order API error status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("order API error status %d: %s", resp.StatusCode, string(respBody))
	}

	var result orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   order.InstrumentID,
		"side":     order.Side,
		"quantity": order.Quantity,
		"order_id": result.ID,
		"status":   result.Status,
	}).Info("Order submitted")

	return &execution.OrderResult{
		OrderID:     result.ID,
		Status:      result.Status,
		SubmittedAt: result.SubmittedAt,
	}, nil
}
