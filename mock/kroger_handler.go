package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type krogerHandler struct {
	catalog   []gin.H
	locations []gin.H
}

func newKrogerHandler() *krogerHandler {
	price := func(v float64) gin.H { return gin.H{"regular": v} }
	return &krogerHandler{
		catalog: []gin.H{
			{
				"productId":   "0001111041700",
				"description": "Kroger 2% Reduced Fat Milk",
				"brand":       "Kroger",
				"items": []gin.H{{
					"size":      "1 gal",
					"price":     price(3.49),
					"inventory": gin.H{"stockLevel": "HIGH"},
				}},
			},
			{
				"productId":   "0001111060903",
				"description": "Kroger Large Eggs",
				"brand":       "Kroger",
				"items": []gin.H{{
					"size":      "12 ct",
					"price":     price(2.99),
					"inventory": gin.H{"stockLevel": "TEMPORARILY_OUT_OF_STOCK"},
				}},
			},
			{
				"productId":   "0007225003712",
				"description": "Dave's Killer Bread 21 Whole Grains",
				"brand":       "Dave's Killer Bread",
				"items": []gin.H{{
					"size":      "27 oz",
					"price":     price(6.49),
					"inventory": gin.H{"stockLevel": "LOW"},
				}},
			},
		},
		locations: []gin.H{
			{
				"locationId": "70100153",
				"name":       "Fred Meyer - Burlingame",
				"address": gin.H{
					"addressLine1": "7555 SW Barbur Blvd",
					"city":         "Portland",
					"state":        "OR",
					"zipCode":      "97219",
				},
			},
			{
				"locationId": "70100135",
				"name":       "Fred Meyer - Hawthorne",
				"address": gin.H{
					"addressLine1": "3805 SE Hawthorne Blvd",
					"city":         "Portland",
					"state":        "OR",
					"zipCode":      "97214",
				},
			},
		},
	}
}

func (h *krogerHandler) Token(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	switch grantType {
	case "client_credentials":
		c.JSON(http.StatusOK, gin.H{
			"access_token": "mock-client-token",
			"token_type":   "Bearer",
			"expires_in":   1800,
		})
	case "authorization_code", "refresh_token":
		c.JSON(http.StatusOK, gin.H{
			"access_token":  "mock-user-token",
			"refresh_token": "mock-refresh-token",
			"token_type":    "Bearer",
			"expires_in":    1800,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
	}
}

func (h *krogerHandler) SearchProducts(c *gin.Context) {
	if !bearerPresent(c) {
		return
	}
	term := strings.ToLower(c.Query("filter.term"))

	matches := make([]gin.H, 0)
	for _, product := range h.catalog {
		description := strings.ToLower(product["description"].(string))
		if term == "" || strings.Contains(description, term) {
			matches = append(matches, product)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": matches})
}

func (h *krogerHandler) FindLocations(c *gin.Context) {
	if !bearerPresent(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.locations})
}

func (h *krogerHandler) AddToCart(c *gin.Context) {
	if !bearerPresent(c) {
		return
	}
	var payload struct {
		Items []struct {
			UPC      string `json:"upc"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items required"})
		return
	}
	c.Status(http.StatusNoContent)
}

func bearerPresent(c *gin.Context) bool {
	if !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return false
	}
	return true
}
