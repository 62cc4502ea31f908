package krogerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"maiyer/pkg/logger"
)

// CartItem is a single line to add to the cart.
type CartItem struct {
	UPC      string `json:"upc"`
	Quantity int    `json:"quantity"`
}

type cartAddRequest struct {
	Items []CartItem `json:"items"`
}

// AddToCart adds items to the authenticated user's cart in one call.
// The API answers 200 or 204 on success.
func (c *Client) AddToCart(ctx context.Context, accessToken string, items []CartItem) error {
	endpoint := fmt.Sprintf("%s/v1/cart/add", c.baseURL)

	payload, err := json.Marshal(cartAddRequest{Items: items})
	if err != nil {
		return fmt.Errorf("kroger: failed to marshal cart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("kroger: failed to build cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kroger: cart call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &CartError{Status: resp.StatusCode, Body: string(body)}
	}

	c.logger.Info("added items to cart", logger.Field{Key: "count", Value: len(items)})
	return nil
}
