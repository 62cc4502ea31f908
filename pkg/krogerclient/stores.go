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

// DefaultChain limits store lookups to Fred Meyer locations.
const DefaultChain = "FRED MEYER"

// Store is a retail location.
type Store struct {
	LocationID string `json:"location_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	ZipCode    string `json:"zip_code"`
}

type krogerLocationsResponse struct {
	Data []krogerLocation `json:"data"`
}

type krogerLocation struct {
	LocationID string `json:"locationId"`
	Name       string `json:"name"`
	Address    struct {
		AddressLine1 string `json:"addressLine1"`
		City         string `json:"city"`
		State        string `json:"state"`
		ZipCode      string `json:"zipCode"`
	} `json:"address"`
}

// FindStores finds stores of the given chain near a ZIP code.
func (c *Client) FindStores(ctx context.Context, accessToken, zipCode, chain string, limit int) ([]Store, error) {
	endpoint := fmt.Sprintf("%s/v1/locations", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("kroger: failed to build location request: %w", err)
	}

	q := url.Values{}
	q.Set("filter.zipCode.near", zipCode)
	q.Set("filter.chain", chain)
	q.Set("filter.limit", strconv.Itoa(limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kroger: store lookup call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StoreError{Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp krogerLocationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("kroger: failed to decode location response: %w", err)
	}

	stores := make([]Store, 0, len(apiResp.Data))
	for _, item := range apiResp.Data {
		stores = append(stores, Store{
			LocationID: item.LocationID,
			Name:       item.Name,
			Address:    fmt.Sprintf("%s, %s, %s", item.Address.AddressLine1, item.Address.City, item.Address.State),
			ZipCode:    item.Address.ZipCode,
		})
	}

	c.logger.Debug("store lookup",
		logger.Field{Key: "zip", Value: zipCode},
		logger.Field{Key: "results", Value: len(stores)},
	)
	return stores, nil
}
