package krogerclient

import (
	"fmt"
	"net/http"

	"maiyer/pkg/logger"
)

// DefaultBaseURL is the public Kroger API host.
const DefaultBaseURL = "https://api.kroger.com"

// Client wraps the Kroger catalog, locations and cart endpoints. All calls
// are one-shot request/response mappings authenticated with a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Client
}

func New(httpClient *http.Client, baseURL string, logger logger.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// ProductError is returned when a product search fails.
type ProductError struct {
	Status int
	Body   string
}

func (e *ProductError) Error() string {
	return fmt.Sprintf("product search failed: %d %s", e.Status, e.Body)
}

// StoreError is returned when a store lookup fails.
type StoreError struct {
	Status int
	Body   string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store lookup failed: %d %s", e.Status, e.Body)
}

// CartError is returned when a cart operation fails.
type CartError struct {
	Status int
	Body   string
}

func (e *CartError) Error() string {
	return fmt.Sprintf("failed to add items to cart: %d %s", e.Status, e.Body)
}
