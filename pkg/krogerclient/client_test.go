package krogerclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maiyer/pkg/logger"
)

func testLogger() logger.Client {
	return logger.NewWithWriter("production", io.Discard)
}

func TestSearchProducts_ParsesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "milk", q.Get("filter.term"))
		assert.Equal(t, "70100153", q.Get("filter.locationId"))
		assert.Equal(t, "5", q.Get("filter.limit"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"productId":   "0001111041700",
					"description": "Whole Milk",
					"brand":       "Kroger",
					"items": []map[string]any{
						{
							"size":      "1 gal",
							"price":     map[string]any{"regular": 3.49},
							"inventory": map[string]any{"stockLevel": "HIGH"},
						},
					},
				},
				{
					"productId":   "0001111042222",
					"description": "Oat Milk",
					"items": []map[string]any{
						{
							"inventory": map[string]any{"stockLevel": "TEMPORARILY_OUT_OF_STOCK"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	products, err := client.SearchProducts(context.Background(), "token-1", "milk", "70100153", 5)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "0001111041700", products[0].ProductID)
	assert.Equal(t, "Whole Milk", products[0].Name)
	assert.Equal(t, "Kroger", products[0].Brand)
	assert.Equal(t, "1 gal", products[0].Size)
	require.NotNil(t, products[0].Price)
	assert.InDelta(t, 3.49, *products[0].Price, 0.001)
	assert.True(t, products[0].InStock)

	assert.False(t, products[1].InStock)
	assert.Nil(t, products[1].Price)
}

func TestSearchProducts_Non200IsProductError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("insufficient scope"))
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	_, err := client.SearchProducts(context.Background(), "token", "milk", "123", 5)

	var prodErr *ProductError
	require.ErrorAs(t, err, &prodErr)
	assert.Equal(t, http.StatusForbidden, prodErr.Status)
	assert.Contains(t, prodErr.Error(), "insufficient scope")
}

func TestFindStores_ParsesLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/locations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "97201", q.Get("filter.zipCode.near"))
		assert.Equal(t, "FRED MEYER", q.Get("filter.chain"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"locationId": "70100153",
					"name":       "Fred Meyer - Burlingame",
					"address": map[string]any{
						"addressLine1": "7555 SW Barbur Blvd",
						"city":         "Portland",
						"state":        "OR",
						"zipCode":      "97219",
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	stores, err := client.FindStores(context.Background(), "token", "97201", DefaultChain, 5)
	require.NoError(t, err)
	require.Len(t, stores, 1)

	assert.Equal(t, "70100153", stores[0].LocationID)
	assert.Equal(t, "Fred Meyer - Burlingame", stores[0].Name)
	assert.Equal(t, "7555 SW Barbur Blvd, Portland, OR", stores[0].Address)
	assert.Equal(t, "97219", stores[0].ZipCode)
}

func TestFindStores_Non200IsStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("expired token"))
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	_, err := client.FindStores(context.Background(), "token", "97201", DefaultChain, 5)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, http.StatusUnauthorized, storeErr.Status)
}

func TestAddToCart_SucceedsOn204(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/cart/add", r.URL.Path)

		var payload struct {
			Items []CartItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Items, 1)
		assert.Equal(t, "0001111041700", payload.Items[0].UPC)
		assert.Equal(t, 2, payload.Items[0].Quantity)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	err := client.AddToCart(context.Background(), "token", []CartItem{{UPC: "0001111041700", Quantity: 2}})
	assert.NoError(t, err)
}

func TestAddToCart_401IsCartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad token"))
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	err := client.AddToCart(context.Background(), "token", []CartItem{{UPC: "123", Quantity: 1}})

	var cartErr *CartError
	require.ErrorAs(t, err, &cartErr)
	assert.Equal(t, http.StatusUnauthorized, cartErr.Status)
}
