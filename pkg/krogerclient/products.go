package krogerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"maiyer/pkg/logger"
)

// Product is a catalog entry at a specific store.
type Product struct {
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Size        string   `json:"size"`
	Price       *float64 `json:"price,omitempty"`
	InStock     bool     `json:"in_stock"`
}

type krogerProductsResponse struct {
	Data []krogerProduct `json:"data"`
}

type krogerProduct struct {
	ProductID   string              `json:"productId"`
	Description string              `json:"description"`
	Brand       string              `json:"brand"`
	Items       []krogerProductItem `json:"items"`
}

type krogerProductItem struct {
	Size  string `json:"size"`
	Price struct {
		Regular *float64 `json:"regular"`
	} `json:"price"`
	Inventory struct {
		StockLevel string `json:"stockLevel"`
	} `json:"inventory"`
}

// SearchProducts searches the catalog by keyword at a specific store.
func (c *Client) SearchProducts(ctx context.Context, accessToken, term, locationID string, limit int) ([]Product, error) {
	endpoint := fmt.Sprintf("%s/v1/products", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("kroger: failed to build product request: %w", err)
	}

	q := url.Values{}
	q.Set("filter.term", term)
	q.Set("filter.locationId", locationID)
	q.Set("filter.limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kroger: product search call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ProductError{Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp krogerProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("kroger: failed to decode product response: %w", err)
	}

	products := make([]Product, 0, len(apiResp.Data))
	for _, item := range apiResp.Data {
		products = append(products, mapProduct(item))
	}

	c.logger.Debug("product search",
		logger.Field{Key: "term", Value: term},
		logger.Field{Key: "results", Value: len(products)},
	)
	return products, nil
}

func mapProduct(item krogerProduct) Product {
	var first krogerProductItem
	if len(item.Items) > 0 {
		first = item.Items[0]
	}
	return Product{
		ProductID:   item.ProductID,
		Name:        item.Description,
		Description: item.Description,
		Brand:       item.Brand,
		Size:        first.Size,
		Price:       first.Price.Regular,
		InStock:     first.Inventory.StockLevel != "TEMPORARILY_OUT_OF_STOCK",
	}
}
